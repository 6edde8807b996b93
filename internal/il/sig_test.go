package il

import "testing"

func ref(name QName) TypeRef { return TypeRef{Name: name} }

func method(owner *TypeDecl, name string, flags MemberFlags, params []TypeRef, ret TypeRef) *MethodDecl {
	m := &MethodDecl{
		Owner: owner,
		Name:  name,
		Sig:   Signature{Params: params, Return: ret},
		Flags: flags,
	}
	owner.Methods = append(owner.Methods, m)
	return m
}

func TestSignatureEqual(t *testing.T) {
	a := Signature{Params: []TypeRef{ref("int"), ref("string")}, Return: Void}
	b := Signature{Params: []TypeRef{ref("int"), ref("string")}, Return: Void}
	if !a.Equal(b) {
		t.Error("identical signatures not equal")
	}
	c := Signature{Params: []TypeRef{ref("int")}, Return: Void}
	if a.Equal(c) {
		t.Error("different arity reported equal")
	}
	d := Signature{Params: []TypeRef{ref("int"), ref("string")}, Return: ref("int")}
	if a.Equal(d) {
		t.Error("different return reported equal")
	}
}

func TestCompatibleAsPlugInstanceTarget(t *testing.T) {
	target := &TypeDecl{Name: "Console"}
	container := &TypeDecl{Name: "ConsolePlug", Flags: TypeStatic}

	// Instance target: the plug's first parameter is the receiver slot.
	tm := method(target, "Write", 0, []TypeRef{ref("string")}, Void)
	pm := method(container, "Write", MemberStatic, []TypeRef{ref("Console"), ref("string")}, Void)
	if !CompatibleAsPlug(tm, pm) {
		t.Error("receiver-first static plug rejected for instance target")
	}

	// The receiver slot's declared shape is deliberately unchecked.
	opaque := method(container, "WriteOpaque", MemberStatic, []TypeRef{ref("uint"), ref("string")}, Void)
	if !CompatibleAsPlug(tm, opaque) {
		t.Error("opaque receiver shape rejected")
	}

	// Missing receiver slot.
	bare := method(container, "WriteBare", MemberStatic, []TypeRef{ref("string")}, Void)
	if CompatibleAsPlug(tm, bare) {
		t.Error("plug without receiver slot accepted for instance target")
	}

	// Trailing parameter mismatch.
	wrong := method(container, "WriteWrong", MemberStatic, []TypeRef{ref("Console"), ref("int")}, Void)
	if CompatibleAsPlug(tm, wrong) {
		t.Error("mismatched parameter accepted")
	}
}

func TestCompatibleAsPlugStaticTarget(t *testing.T) {
	target := &TypeDecl{Name: "Clock", Flags: TypeStatic}
	container := &TypeDecl{Name: "ClockPlug", Flags: TypeStatic}

	tm := method(target, "Now", MemberStatic, nil, ref("long"))
	pm := method(container, "Now", MemberStatic, nil, ref("long"))
	if !CompatibleAsPlug(tm, pm) {
		t.Error("structurally equal static plug rejected")
	}

	padded := method(container, "NowPadded", MemberStatic, []TypeRef{ref("Clock")}, ref("long"))
	if CompatibleAsPlug(tm, padded) {
		t.Error("static target must not take a receiver slot")
	}
}

func TestCompatibleAsPlugRejectsInstancePlug(t *testing.T) {
	target := &TypeDecl{Name: "Console"}
	container := &TypeDecl{Name: "ConsolePlug"}

	tm := method(target, "Beep", 0, nil, Void)
	pm := method(container, "Beep", 0, []TypeRef{ref("Console")}, Void)
	if CompatibleAsPlug(tm, pm) {
		t.Error("non-static plug method accepted")
	}
}

func TestQNameSplit(t *testing.T) {
	q := QName("Kernel.HAL.Console")
	if q.Simple() != "Console" {
		t.Errorf("Simple() = %q", q.Simple())
	}
	if q.Namespace() != "Kernel.HAL" {
		t.Errorf("Namespace() = %q", q.Namespace())
	}
	bare := QName("Console")
	if bare.Simple() != "Console" || bare.Namespace() != "" {
		t.Errorf("bare name split = %q / %q", bare.Simple(), bare.Namespace())
	}
}
