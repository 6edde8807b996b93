package ilbin

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"ilpatch/internal/il"
	"ilpatch/internal/testkit"
)

func sampleModule(t *testing.T) *il.Module {
	t.Helper()
	console := &il.TypeDecl{
		Name:  "Kernel.Console",
		Flags: il.TypeSealed,
		Base:  "Kernel.Device",
		Attrs: []il.Attr{{Name: "plug", Args: map[string]string{"target": "Kernel.Console"}}},
	}

	write := &il.MethodDecl{
		Owner: console, Name: "Write",
		Sig:  il.Signature{Params: []il.TypeRef{{Name: "string"}}, Return: il.Void},
		Body: il.NewBody(),
	}
	b := write.Body
	entry := b.Append(il.OpLdarg, il.Operand{Kind: il.OperandLocal, Local: 1})
	br := b.Append(il.OpBrfalse, il.Operand{Kind: il.OperandTarget})
	b.Append(il.OpLdcR, il.Operand{Kind: il.OperandFloat, Float: 2.5})
	mid := b.Append(il.OpCall, il.Operand{
		Kind: il.OperandMethod, Member: il.MemberRef{Type: "Kernel.Port", Name: "Out"}})
	b.Append(il.OpSwitch, il.Operand{Kind: il.OperandTargets, Targets: []*il.Instruction{entry, mid}})
	b.Append(il.OpNewarr, il.Operand{Kind: il.OperandType, Type: "byte"})
	leave := b.Append(il.OpLeave, il.Operand{Kind: il.OperandTarget})
	fin := b.Append(il.OpEndFinally, il.Operand{})
	ret := b.Append(il.OpRet, il.Operand{})
	br.Operand.Target = ret
	leave.Operand.Target = ret

	b.Handlers = append(b.Handlers, &il.ExceptionHandler{
		Kind:         il.HandlerFinally,
		TryStart:     entry,
		TryEnd:       fin,
		HandlerStart: fin,
		HandlerEnd:   nil, // end-of-body marker survives the wire
	})
	b.Locals = append(b.Locals, &il.Local{Index: 0, Type: il.TypeRef{Name: "int"}})
	b.MaxStack = 3
	b.InitLocals = true
	if err := b.ComputeOffsets(); err != nil {
		t.Fatalf("ComputeOffsets: %v", err)
	}
	b.Debug = &il.DebugInfo{
		SeqPoints: []il.SeqPoint{{Offset: entry.Offset, Doc: "console.cs", Line: 3, Col: 1, EndLine: 3, EndCol: 8}},
		StateMachine: &il.StateMachineInfo{
			CatchHandler: int64(fin.Offset),
			Yields:       []int64{int64(mid.Offset), il.EndOfMethod},
			Resumes:      []int64{il.EndOfMethod},
		},
	}

	ext := &il.MethodDecl{
		Owner: console, Name: "Beep",
		Sig:   il.Signature{Return: il.Void},
		Flags: il.MemberExtern,
	}
	console.Methods = append(console.Methods, write, ext)
	console.Fields = append(console.Fields, &il.FieldDecl{
		Owner: console, Name: "Count", Type: il.TypeRef{Name: "int"}, Flags: il.MemberStatic})
	console.Props = append(console.Props, &il.PropertyDecl{
		Owner: console, Name: "Title", Type: il.TypeRef{Name: "string"}})

	return &il.Module{Name: "kernel", Types: []*il.TypeDecl{console}}
}

func TestRoundTrip(t *testing.T) {
	mod := sampleModule(t)

	var buf bytes.Buffer
	if err := Encode(&buf, mod); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Name != mod.Name || len(got.Types) != 1 {
		t.Fatalf("module shape lost: %q, %d types", got.Name, len(got.Types))
	}
	ct := got.Types[0]
	if ct.Name != "Kernel.Console" || ct.Base != "Kernel.Device" || ct.Flags != il.TypeSealed {
		t.Fatalf("type metadata lost: %+v", ct)
	}
	if a := il.FindAttr(ct.Attrs, "plug"); a == nil || a.Arg("target") != "Kernel.Console" {
		t.Fatal("type attrs lost")
	}

	write := ct.FindMethod("Write")
	if write == nil || write.Body == nil {
		t.Fatal("Write method or body lost")
	}
	if write.Owner != ct {
		t.Fatal("method owner not rebound on decode")
	}
	if err := testkit.CheckBodyInvariants(write.Body); err != nil {
		t.Fatalf("decoded body invariants: %v", err)
	}

	src := mod.Types[0].FindMethod("Write").Body
	if len(write.Body.Instrs) != len(src.Instrs) {
		t.Fatalf("instr count %d != %d", len(write.Body.Instrs), len(src.Instrs))
	}
	for i, ins := range src.Instrs {
		d := write.Body.Instrs[i]
		if d.Op != ins.Op || d.Offset != ins.Offset {
			t.Fatalf("instr %d: %s@%04X != %s@%04X", i, d.Op, d.Offset, ins.Op, ins.Offset)
		}
	}

	// The end-of-body handler boundary must come back as nil, not index 0.
	h := write.Body.Handlers[0]
	if h.Kind != il.HandlerFinally || h.HandlerEnd != nil {
		t.Fatalf("handler lost its shape: %+v", h)
	}

	sm := write.Body.Debug.StateMachine
	if sm == nil || sm.Yields[1] != il.EndOfMethod || sm.Resumes[0] != il.EndOfMethod {
		t.Fatal("state-machine sentinel lost")
	}

	beep := ct.FindMethod("Beep")
	if beep == nil || beep.Body != nil || !beep.IsExtern() {
		t.Fatal("extern method body invented or flag lost")
	}
	if ct.FindField("Count") == nil || ct.FindProp("Title") == nil {
		t.Fatal("field or property lost")
	}
}

func TestDecodeRejectsWrongSchema(t *testing.T) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(fileModule{Schema: SchemaVersion + 1, Name: "future"}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrSchema) {
		t.Fatalf("Decode err = %v, want ErrSchema", err)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "kernel.ilm")
	mod := sampleModule(t)

	if err := WriteFile(path, mod); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Name != mod.Name {
		t.Fatalf("module name = %q", got.Name)
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("output dir holds %d entries, want only the module", len(entries))
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.ilm")); err == nil {
		t.Fatal("reading a missing file should fail")
	}
}
