// Package ilbin is the on-disk codec for il modules (.ilm files). The wire
// form is msgpack over a flat representation: instruction references are
// stream indices, rebuilt into pointers on decode. The schema carries a
// version for safe invalidation when the format changes.
package ilbin

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"ilpatch/internal/il"
)

// SchemaVersion is incremented whenever the wire format changes.
const SchemaVersion uint16 = 1

// ErrSchema indicates a module written with an incompatible schema version.
var ErrSchema = errors.New("unsupported module schema version")

// noInstr is the wire form of a nil instruction reference (absent filter,
// synthetic end-of-body marker).
const noInstr int32 = -1

type fileModule struct {
	Schema uint16
	Name   string
	Types  []fileType
}

type fileAttr struct {
	Name string
	Args map[string]string
}

type fileType struct {
	Name    string
	Flags   uint8
	Base    string
	Methods []fileMethod
	Fields  []fileField
	Props   []fileProp
	Attrs   []fileAttr
}

type fileMethod struct {
	Name    string
	Params  []string
	Return  string
	Flags   uint8
	HasBody bool
	Body    fileBody
	Attrs   []fileAttr
}

type fileField struct {
	Name  string
	Type  string
	Flags uint8
	Attrs []fileAttr
}

type fileProp struct {
	Name  string
	Type  string
	Flags uint8
	Attrs []fileAttr
}

type fileBody struct {
	MaxStack   int
	InitLocals bool
	Instrs     []fileInstr
	Handlers   []fileHandler
	Locals     []fileLocal
	HasDebug   bool
	Debug      fileDebug
}

type fileInstr struct {
	Op   uint8
	Kind uint8

	Int        int64
	Float      float64
	Str        string
	Target     int32
	Targets    []int32
	MemberType string
	MemberName string
	TypeName   string
	Local      int
}

type fileHandler struct {
	Kind         uint8
	TryStart     int32
	TryEnd       int32
	HandlerStart int32
	HandlerEnd   int32
	FilterStart  int32
	CatchType    string
}

type fileLocal struct {
	Index int
	Type  string
}

type fileSeqPoint struct {
	Offset  uint32
	Doc     string
	Line    int
	Col     int
	EndLine int
	EndCol  int
}

type fileStateMachine struct {
	CatchHandler int64
	Yields       []int64
	Resumes      []int64
}

type fileDebug struct {
	SeqPoints       []fileSeqPoint
	HasStateMachine bool
	StateMachine    fileStateMachine
}

func flattenAttrs(attrs []il.Attr) []fileAttr {
	out := make([]fileAttr, len(attrs))
	for i, a := range attrs {
		out[i] = fileAttr{Name: a.Name, Args: a.Args}
	}
	return out
}

func liftAttrs(attrs []fileAttr) []il.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]il.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = il.Attr{Name: a.Name, Args: a.Args}
	}
	return out
}

func flattenBody(b *il.Body) (fileBody, error) {
	fb := fileBody{
		MaxStack:   b.MaxStack,
		InitLocals: b.InitLocals,
	}
	index := make(map[*il.Instruction]int32, len(b.Instrs))
	for i, ins := range b.Instrs {
		idx, err := safecast.Conv[int32](i)
		if err != nil {
			return fb, fmt.Errorf("instruction stream too long: %w", err)
		}
		index[ins] = idx
	}
	ref := func(ins *il.Instruction) (int32, error) {
		if ins == nil {
			return noInstr, nil
		}
		idx, ok := index[ins]
		if !ok {
			return 0, fmt.Errorf("instruction reference outside body at %s", ins)
		}
		return idx, nil
	}
	for _, ins := range b.Instrs {
		fi := fileInstr{
			Op:     uint8(ins.Op),
			Kind:   uint8(ins.Operand.Kind),
			Target: noInstr,
		}
		switch ins.Operand.Kind {
		case il.OperandInt:
			fi.Int = ins.Operand.Int
		case il.OperandFloat:
			fi.Float = ins.Operand.Float
		case il.OperandString:
			fi.Str = ins.Operand.Str
		case il.OperandTarget:
			t, err := ref(ins.Operand.Target)
			if err != nil {
				return fb, err
			}
			fi.Target = t
		case il.OperandTargets:
			fi.Targets = make([]int32, len(ins.Operand.Targets))
			for i, t := range ins.Operand.Targets {
				idx, err := ref(t)
				if err != nil {
					return fb, err
				}
				fi.Targets[i] = idx
			}
		case il.OperandMethod, il.OperandField:
			fi.MemberType = string(ins.Operand.Member.Type)
			fi.MemberName = ins.Operand.Member.Name
		case il.OperandType:
			fi.TypeName = string(ins.Operand.Type)
		case il.OperandLocal:
			fi.Local = ins.Operand.Local
		}
		fb.Instrs = append(fb.Instrs, fi)
	}
	for _, h := range b.Handlers {
		fh := fileHandler{Kind: uint8(h.Kind), CatchType: string(h.CatchType)}
		var err error
		if fh.TryStart, err = ref(h.TryStart); err != nil {
			return fb, err
		}
		if fh.TryEnd, err = ref(h.TryEnd); err != nil {
			return fb, err
		}
		if fh.HandlerStart, err = ref(h.HandlerStart); err != nil {
			return fb, err
		}
		if fh.HandlerEnd, err = ref(h.HandlerEnd); err != nil {
			return fb, err
		}
		if fh.FilterStart, err = ref(h.FilterStart); err != nil {
			return fb, err
		}
		fb.Handlers = append(fb.Handlers, fh)
	}
	for _, l := range b.Locals {
		fb.Locals = append(fb.Locals, fileLocal{Index: l.Index, Type: string(l.Type.Name)})
	}
	if b.Debug != nil {
		fb.HasDebug = true
		for _, sp := range b.Debug.SeqPoints {
			fb.Debug.SeqPoints = append(fb.Debug.SeqPoints, fileSeqPoint(sp))
		}
		if sm := b.Debug.StateMachine; sm != nil {
			fb.Debug.HasStateMachine = true
			fb.Debug.StateMachine = fileStateMachine{
				CatchHandler: sm.CatchHandler,
				Yields:       sm.Yields,
				Resumes:      sm.Resumes,
			}
		}
	}
	return fb, nil
}

func liftBody(fb fileBody) (*il.Body, error) {
	b := il.NewBody()
	b.MaxStack = fb.MaxStack
	b.InitLocals = fb.InitLocals

	instrs := make([]*il.Instruction, len(fb.Instrs))
	for i := range fb.Instrs {
		instrs[i] = &il.Instruction{}
	}
	deref := func(idx int32) (*il.Instruction, error) {
		if idx == noInstr {
			return nil, nil
		}
		if idx < 0 || int(idx) >= len(instrs) {
			return nil, fmt.Errorf("instruction index %d out of range", idx)
		}
		return instrs[idx], nil
	}
	for i, fi := range fb.Instrs {
		ins := instrs[i]
		ins.Op = il.Opcode(fi.Op)
		ins.Operand.Kind = il.OperandKind(fi.Kind)
		switch ins.Operand.Kind {
		case il.OperandInt:
			ins.Operand.Int = fi.Int
		case il.OperandFloat:
			ins.Operand.Float = fi.Float
		case il.OperandString:
			ins.Operand.Str = fi.Str
		case il.OperandTarget:
			t, err := deref(fi.Target)
			if err != nil {
				return nil, err
			}
			if t == nil {
				return nil, fmt.Errorf("branch at stream index %d has no target", i)
			}
			ins.Operand.Target = t
		case il.OperandTargets:
			ins.Operand.Targets = make([]*il.Instruction, len(fi.Targets))
			for j, idx := range fi.Targets {
				t, err := deref(idx)
				if err != nil {
					return nil, err
				}
				if t == nil {
					return nil, fmt.Errorf("jump table at stream index %d has a hole", i)
				}
				ins.Operand.Targets[j] = t
			}
		case il.OperandMethod, il.OperandField:
			ins.Operand.Member = il.MemberRef{Type: il.QName(fi.MemberType), Name: fi.MemberName}
		case il.OperandType:
			ins.Operand.Type = il.QName(fi.TypeName)
		case il.OperandLocal:
			ins.Operand.Local = fi.Local
		}
	}
	b.Instrs = instrs

	for _, fh := range fb.Handlers {
		h := &il.ExceptionHandler{Kind: il.HandlerKind(fh.Kind), CatchType: il.QName(fh.CatchType)}
		var err error
		if h.TryStart, err = deref(fh.TryStart); err != nil {
			return nil, err
		}
		if h.TryEnd, err = deref(fh.TryEnd); err != nil {
			return nil, err
		}
		if h.HandlerStart, err = deref(fh.HandlerStart); err != nil {
			return nil, err
		}
		if h.HandlerEnd, err = deref(fh.HandlerEnd); err != nil {
			return nil, err
		}
		if h.FilterStart, err = deref(fh.FilterStart); err != nil {
			return nil, err
		}
		b.Handlers = append(b.Handlers, h)
	}
	for _, fl := range fb.Locals {
		b.Locals = append(b.Locals, &il.Local{Index: fl.Index, Type: il.TypeRef{Name: il.QName(fl.Type)}})
	}
	if err := b.ComputeOffsets(); err != nil {
		return nil, err
	}
	if fb.HasDebug {
		d := &il.DebugInfo{}
		for _, sp := range fb.Debug.SeqPoints {
			d.SeqPoints = append(d.SeqPoints, il.SeqPoint(sp))
		}
		if fb.Debug.HasStateMachine {
			d.StateMachine = &il.StateMachineInfo{
				CatchHandler: fb.Debug.StateMachine.CatchHandler,
				Yields:       fb.Debug.StateMachine.Yields,
				Resumes:      fb.Debug.StateMachine.Resumes,
			}
		}
		b.Debug = d
	}
	return b, nil
}

func sigOf(fm fileMethod) il.Signature {
	sig := il.Signature{Return: il.TypeRef{Name: il.QName(fm.Return)}}
	for _, p := range fm.Params {
		sig.Params = append(sig.Params, il.TypeRef{Name: il.QName(p)})
	}
	return sig
}
