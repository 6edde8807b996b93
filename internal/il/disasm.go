package il

import (
	"fmt"
	"strings"
)

// Disasm returns a human-readable listing of a whole module.
func Disasm(m *Module) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("; module %s (%d types)\n", m.Name, len(m.Types)))
	for _, t := range m.Types {
		sb.WriteString(disasmType(t))
	}
	return sb.String()
}

func disasmType(t *TypeDecl) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\ntype %s", t.Name))
	if t.IsStatic() {
		sb.WriteString(" [static]")
	}
	if t.Flags&TypeAbstract != 0 {
		sb.WriteString(" [abstract]")
	}
	if t.Base != NoName {
		sb.WriteString(" : " + string(t.Base))
	}
	sb.WriteString("\n")
	for _, f := range t.Fields {
		sb.WriteString(fmt.Sprintf("  field %s %s\n", f.Type.Name, f.Name))
	}
	for _, p := range t.Props {
		sb.WriteString(fmt.Sprintf("  prop  %s %s\n", p.Type.Name, p.Name))
	}
	for _, m := range t.Methods {
		sb.WriteString(DisasmMethod(m))
	}
	return sb.String()
}

// DisasmMethod returns a listing of a single method and its body.
func DisasmMethod(m *MethodDecl) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  method %s%s", m.Name, m.Sig))
	if m.IsStatic() {
		sb.WriteString(" [static]")
	}
	if m.IsExtern() {
		sb.WriteString(" [extern]")
	}
	sb.WriteString("\n")
	if m.Body == nil {
		return sb.String()
	}
	b := m.Body
	if len(b.Locals) > 0 {
		sb.WriteString(fmt.Sprintf("    ; locals: %d slots, init=%v\n", len(b.Locals), b.InitLocals))
	}
	for _, ins := range b.Instrs {
		sb.WriteString(fmt.Sprintf("    %04X: %s\n", ins.Offset, ins))
	}
	for _, h := range b.Handlers {
		sb.WriteString(fmt.Sprintf("    ; %s try [%s..%s] handler [%s..%s]",
			h.Kind, fmtBoundary(h.TryStart), fmtBoundary(h.TryEnd),
			fmtBoundary(h.HandlerStart), fmtBoundary(h.HandlerEnd)))
		if h.FilterStart != nil {
			sb.WriteString(fmt.Sprintf(" filter [%s]", fmtBoundary(h.FilterStart)))
		}
		if h.CatchType != NoName {
			sb.WriteString(" " + string(h.CatchType))
		}
		sb.WriteString("\n")
	}
	if b.Debug != nil && b.Debug.StateMachine != nil {
		sm := b.Debug.StateMachine
		sb.WriteString(fmt.Sprintf("    ; state machine: catch=%d yields=%v resumes=%v\n",
			sm.CatchHandler, sm.Yields, sm.Resumes))
	}
	return sb.String()
}

func fmtBoundary(ins *Instruction) string {
	if ins == nil {
		return "end"
	}
	return fmt.Sprintf("%04X", ins.Offset)
}
