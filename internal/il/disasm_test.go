package il

import (
	"strings"
	"testing"
)

func TestDisasmMethod(t *testing.T) {
	owner := &TypeDecl{Name: "Kernel.Console"}
	m := method(owner, "Write", 0, []TypeRef{ref("string")}, Void)
	m.Body = NewBody()
	entry := m.Body.Append(OpLdarg, Operand{Kind: OperandLocal, Local: 1})
	m.Body.Append(OpCall, Operand{Kind: OperandMethod, Member: MemberRef{Type: "Kernel.Port", Name: "Out"}})
	m.Body.Append(OpBr, Operand{Kind: OperandTarget, Target: entry})
	m.Body.Append(OpRet, Operand{})
	if err := m.Body.ComputeOffsets(); err != nil {
		t.Fatalf("ComputeOffsets: %v", err)
	}

	out := DisasmMethod(m)
	for _, want := range []string{"Write", "ldarg 1", "call Kernel.Port::Out", "br @0000", "ret"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}

func TestDisasmExternMethod(t *testing.T) {
	owner := &TypeDecl{Name: "Kernel.Console"}
	m := method(owner, "Beep", MemberExtern, nil, Void)
	out := DisasmMethod(m)
	if !strings.Contains(out, "extern") {
		t.Errorf("extern marker missing:\n%s", out)
	}
}

func TestDisasmModule(t *testing.T) {
	owner := &TypeDecl{Name: "Kernel.Console", Flags: TypeStatic}
	method(owner, "Beep", MemberExtern|MemberStatic, nil, Void)
	mod := &Module{Name: "kernel", Types: []*TypeDecl{owner}}
	out := Disasm(mod)
	if !strings.Contains(out, "kernel") || !strings.Contains(out, "Kernel.Console") {
		t.Errorf("module disassembly incomplete:\n%s", out)
	}
}
