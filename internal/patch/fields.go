package patch

import (
	"strings"

	"ilpatch/internal/il"
	"ilpatch/internal/plug"
)

// RedirectMemberRefs rewrites every field and property access in the
// target module whose member has a storage plug: field reads and writes
// move to the plug's static storage, property accessor calls move to the
// plug's accessors. Method-body declarations are untouched; this is a pure
// operand rewrite over every body in the module.
func RedirectMemberRefs(target *il.Module, reg *plug.Registry) {
	for _, t := range target.Types {
		for _, m := range t.Methods {
			if m.Body == nil {
				continue
			}
			for _, ins := range m.Body.Instrs {
				redirectInstr(ins, reg)
			}
		}
	}
}

func redirectInstr(ins *il.Instruction, reg *plug.Registry) {
	switch ins.Operand.Kind {
	case il.OperandField:
		pm := reg.MemberFor(ins.Operand.Member.Type, ins.Operand.Member.Name)
		if pm == nil || pm.Field == nil {
			return
		}
		ins.Operand.Member = pm.Field.Ref()
		// Plug containers are static, so their storage is too.
		switch ins.Op {
		case il.OpLdfld:
			ins.Op = il.OpLdsfld
		case il.OpStfld:
			ins.Op = il.OpStsfld
		}
	case il.OperandMethod:
		name := ins.Operand.Member.Name
		var prop string
		switch {
		case strings.HasPrefix(name, "get_"):
			prop = strings.TrimPrefix(name, "get_")
		case strings.HasPrefix(name, "set_"):
			prop = strings.TrimPrefix(name, "set_")
		default:
			return
		}
		pm := reg.MemberFor(ins.Operand.Member.Type, prop)
		if pm == nil || pm.Prop == nil {
			return
		}
		accessor := name[:4] + pm.Prop.Name
		ins.Operand.Member = il.MemberRef{Type: pm.Plug.Type.Name, Name: accessor}
		// Accessor now lives on a static container; virtual dispatch no
		// longer applies.
		if ins.Op == il.OpCallvirt {
			ins.Op = il.OpCall
		}
	}
}
