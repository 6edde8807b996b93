package patch

import (
	"fmt"

	"ilpatch/internal/il"
)

// BuildJumpStub replaces the target's body with a thin forwarder: push the
// receiver (for instance targets) and every argument, call the plug method,
// return. This is the fast path for zero-parameter targets, where a full
// body transplant buys nothing.
func BuildJumpStub(target *il.MethodDecl, plugRef il.MemberRef) *il.Body {
	b := il.NewBody()
	nargs := 0
	if !target.IsStatic() {
		b.Append(il.OpLdarg, il.Operand{Kind: il.OperandLocal, Local: 0})
		nargs++
	}
	for i := range target.Sig.Params {
		slot := i
		if !target.IsStatic() {
			slot = i + 1
		}
		b.Append(il.OpLdarg, il.Operand{Kind: il.OperandLocal, Local: slot})
		nargs++
	}
	b.Append(il.OpCall, il.Operand{Kind: il.OperandMethod, Member: plugRef})
	b.Append(il.OpRet, il.Operand{})
	b.MaxStack = nargs
	if b.MaxStack == 0 {
		b.MaxStack = 1
	}
	if err := b.ComputeOffsets(); err != nil {
		panic(fmt.Sprintf("patch: stub for %s: %v", target.Ref(), err))
	}
	target.Body = b
	return b
}
