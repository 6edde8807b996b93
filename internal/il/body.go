package il

import (
	"fmt"

	"fortio.org/safecast"
)

// OperandKind discriminates instruction operand payloads.
type OperandKind uint8

const (
	// OperandNone means the instruction carries no operand.
	OperandNone OperandKind = iota
	// OperandInt is an integer literal.
	OperandInt
	// OperandFloat is a float literal.
	OperandFloat
	// OperandString is a string literal.
	OperandString
	// OperandTarget is a reference to another instruction in the same body.
	OperandTarget
	// OperandTargets is a jump table of same-body instruction references.
	OperandTargets
	// OperandMethod is a method reference.
	OperandMethod
	// OperandField is a field reference.
	OperandField
	// OperandType is a type reference.
	OperandType
	// OperandLocal is an argument or local slot index.
	OperandLocal
)

// Operand is the tagged operand payload of an instruction. Only the fields
// selected by Kind are meaningful.
type Operand struct {
	Kind OperandKind

	Int     int64
	Float   float64
	Str     string
	Target  *Instruction
	Targets []*Instruction
	Member  MemberRef
	Type    QName
	Local   int
}

// Instruction is one opcode plus operand inside a method body. Offset is the
// byte position inside the body's encoded stream; it is recomputed by
// Body.ComputeOffsets after any mutation of the stream.
type Instruction struct {
	Offset  uint32
	Op      Opcode
	Operand Operand
}

func (i *Instruction) String() string {
	switch i.Operand.Kind {
	case OperandNone:
		return i.Op.String()
	case OperandInt:
		return fmt.Sprintf("%s %d", i.Op, i.Operand.Int)
	case OperandFloat:
		return fmt.Sprintf("%s %g", i.Op, i.Operand.Float)
	case OperandString:
		return fmt.Sprintf("%s %q", i.Op, i.Operand.Str)
	case OperandTarget:
		if i.Operand.Target == nil {
			return i.Op.String() + " <nil>"
		}
		return fmt.Sprintf("%s @%04X", i.Op, i.Operand.Target.Offset)
	case OperandTargets:
		return fmt.Sprintf("%s [%d targets]", i.Op, len(i.Operand.Targets))
	case OperandMethod, OperandField:
		return fmt.Sprintf("%s %s", i.Op, i.Operand.Member)
	case OperandType:
		return fmt.Sprintf("%s %s", i.Op, i.Operand.Type)
	case OperandLocal:
		return fmt.Sprintf("%s %d", i.Op, i.Operand.Local)
	}
	return i.Op.String()
}

// HandlerKind discriminates exception handler regions.
type HandlerKind uint8

const (
	// HandlerCatch handles exceptions of CatchType.
	HandlerCatch HandlerKind = iota
	// HandlerFilter runs a filter block before handling.
	HandlerFilter
	// HandlerFinally always runs on region exit.
	HandlerFinally
	// HandlerFault runs only on exceptional region exit.
	HandlerFault
)

func (k HandlerKind) String() string {
	switch k {
	case HandlerCatch:
		return "catch"
	case HandlerFilter:
		return "filter"
	case HandlerFinally:
		return "finally"
	case HandlerFault:
		return "fault"
	}
	return "handler?"
}

// ExceptionHandler is a protected region of a body. Boundary references are
// instructions of the same body; a nil TryEnd or HandlerEnd means the
// synthetic end-of-body marker. FilterStart is nil unless Kind is
// HandlerFilter.
type ExceptionHandler struct {
	Kind         HandlerKind
	TryStart     *Instruction
	TryEnd       *Instruction
	HandlerStart *Instruction
	HandlerEnd   *Instruction
	FilterStart  *Instruction
	CatchType    QName
}

// Local is one local variable slot of a body.
type Local struct {
	Index int
	Type  TypeRef
}

// EndOfMethod is the sentinel used in state-machine offset lists for "no
// concrete offset / end of method".
const EndOfMethod int64 = -1

// SeqPoint maps an instruction offset to a source location range.
type SeqPoint struct {
	Offset  uint32
	Doc     string
	Line    int
	Col     int
	EndLine int
	EndCol  int
}

// StateMachineInfo is the coroutine/state-machine debug descriptor of a
// body: a catch-handler offset marker plus yield and resume offset lists.
// Entries are concrete instruction offsets or the EndOfMethod sentinel.
type StateMachineInfo struct {
	CatchHandler int64
	Yields       []int64
	Resumes      []int64
}

// DebugInfo is the debug table of a body.
type DebugInfo struct {
	SeqPoints    []SeqPoint
	StateMachine *StateMachineInfo
}

// Body is a method body: instruction stream, exception handler regions,
// local slots and debug tables. A body is owned by exactly one method.
type Body struct {
	MaxStack   int
	InitLocals bool

	Instrs   []*Instruction
	Handlers []*ExceptionHandler
	Locals   []*Local
	Debug    *DebugInfo
}

// NewBody returns an empty body.
func NewBody() *Body {
	return &Body{}
}

// Append adds an instruction to the end of the stream and returns it.
func (b *Body) Append(op Opcode, operand Operand) *Instruction {
	ins := &Instruction{Op: op, Operand: operand}
	b.Instrs = append(b.Instrs, ins)
	return ins
}

// IndexOf returns the stream position of ins, or -1 when ins is not owned
// by this body.
func (b *Body) IndexOf(ins *Instruction) int {
	for i, cand := range b.Instrs {
		if cand == ins {
			return i
		}
	}
	return -1
}

// Owns reports whether ins belongs to this body.
func (b *Body) Owns(ins *Instruction) bool {
	return ins != nil && b.IndexOf(ins) >= 0
}

// InstrAtOffset returns the instruction whose Offset equals off, or nil.
func (b *Body) InstrAtOffset(off uint32) *Instruction {
	for _, ins := range b.Instrs {
		if ins.Offset == off {
			return ins
		}
	}
	return nil
}

// encodedSize returns the number of bytes the instruction occupies in the
// encoded stream: one opcode byte plus its operand.
func encodedSize(ins *Instruction) int {
	switch ins.Operand.Kind {
	case OperandNone:
		return 1
	case OperandInt, OperandFloat:
		return 1 + 8
	case OperandString, OperandMethod, OperandField, OperandType, OperandTarget:
		return 1 + 4
	case OperandLocal:
		return 1 + 2
	case OperandTargets:
		return 1 + 4 + 4*len(ins.Operand.Targets)
	}
	return 1
}

// ComputeOffsets renumbers every instruction's Offset from the encoded
// operand sizes. Call after any mutation of the stream.
func (b *Body) ComputeOffsets() error {
	pos := 0
	for _, ins := range b.Instrs {
		off, err := safecast.Conv[uint32](pos)
		if err != nil {
			return fmt.Errorf("body too large at %s: %w", ins, err)
		}
		ins.Offset = off
		pos += encodedSize(ins)
	}
	return nil
}
