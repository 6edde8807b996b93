package validate

import (
	"testing"

	"ilpatch/internal/diag"
	"ilpatch/internal/il"
	"ilpatch/internal/plug"
)

func marked(name il.QName, flags il.TypeFlags, args map[string]string) *il.TypeDecl {
	return &il.TypeDecl{
		Name:  name,
		Flags: flags,
		Attrs: []il.Attr{{Name: plug.AttrPlug, Args: args}},
	}
}

func withMethod(t *il.TypeDecl, name string, flags il.MemberFlags, attrs ...il.Attr) *il.TypeDecl {
	t.Methods = append(t.Methods, &il.MethodDecl{Owner: t, Name: name, Flags: flags, Attrs: attrs})
	return t
}

func check(decls []*il.TypeDecl) *diag.Bag {
	bag := diag.NewBag(16)
	mod := &il.Module{Name: "src", Types: decls}
	Check(decls, plug.NewResolver(mod), diag.BagReporter{Bag: bag})
	return bag
}

func TestCheckCleanDeclarations(t *testing.T) {
	console := withMethod(&il.TypeDecl{Name: "Kernel.Console"}, "Write", il.MemberExtern)
	impl := withMethod(marked("plugs.ConsoleImpl", il.TypeStatic,
		map[string]string{"target": "Kernel.Console"}), "Write", il.MemberStatic)

	bag := check([]*il.TypeDecl{console, impl})
	if bag.Len() != 0 {
		t.Fatalf("clean declarations produced faults: %v", bag.Items())
	}
}

func TestCheckTypeNotFound(t *testing.T) {
	impl := marked("plugs.GhostImpl", il.TypeStatic, map[string]string{"target": "Kernel.Ghost"})
	bag := check([]*il.TypeDecl{impl})
	if len(bag.ByCode(diag.TypeNotFound)) != 1 {
		t.Fatalf("TypeNotFound faults = %d, want 1", len(bag.ByCode(diag.TypeNotFound)))
	}
}

func TestCheckOptionalTargetIsSilent(t *testing.T) {
	impl := marked("plugs.GhostImpl", il.TypeStatic,
		map[string]string{"target": "Kernel.Ghost", "optional": "true"})
	bag := check([]*il.TypeDecl{impl})
	if bag.Len() != 0 {
		t.Fatalf("optional plug produced faults: %v", bag.Items())
	}
}

func TestCheckClassNotStatic(t *testing.T) {
	console := &il.TypeDecl{Name: "Kernel.Console"}
	impl := marked("plugs.ConsoleImpl", 0, map[string]string{"target": "Kernel.Console"})
	bag := check([]*il.TypeDecl{console, impl})
	if len(bag.ByCode(diag.ClassNotStatic)) != 1 {
		t.Fatalf("ClassNotStatic faults = %d, want 1", len(bag.ByCode(diag.ClassNotStatic)))
	}
}

func TestCheckMethodNeedsPlug(t *testing.T) {
	console := withMethod(&il.TypeDecl{Name: "Kernel.Console"}, "Write", il.MemberExtern)
	withMethod(console, "Beep", il.MemberExtern)
	withMethod(console, "Local", 0)
	impl := withMethod(marked("plugs.ConsoleImpl", il.TypeStatic,
		map[string]string{"target": "Kernel.Console"}), "Write", il.MemberStatic)

	bag := check([]*il.TypeDecl{console, impl})
	faults := bag.ByCode(diag.MethodNeedsPlug)
	if len(faults) != 1 {
		t.Fatalf("MethodNeedsPlug faults = %d, want 1", len(faults))
	}
	if faults[0].Subject != "Kernel.Console::Beep" {
		t.Errorf("fault subject = %q, want the uncovered extern", faults[0].Subject)
	}
}

func TestCheckMemberOverrideCoversTarget(t *testing.T) {
	console := withMethod(&il.TypeDecl{Name: "Kernel.Console"}, "Write", il.MemberExtern)
	impl := withMethod(marked("plugs.ConsoleImpl", il.TypeStatic,
		map[string]string{"target": "Kernel.Console"}),
		"WriteImpl", il.MemberStatic,
		il.Attr{Name: plug.AttrPlugMember, Args: map[string]string{"target": "Write"}})

	bag := check([]*il.TypeDecl{console, impl})
	if bag.Len() != 0 {
		t.Fatalf("override coverage missed: %v", bag.Items())
	}
}

func TestCheckReplaceBaseCoversWholeType(t *testing.T) {
	console := withMethod(&il.TypeDecl{Name: "Kernel.Console"}, "Write", il.MemberExtern)
	impl := marked("plugs.ConsoleFull", 0,
		map[string]string{"target": "Kernel.Console", "replaceBase": "true"})

	bag := check([]*il.TypeDecl{console, impl})
	if bag.Len() != 0 {
		t.Fatalf("replace-base coverage missed: %v", bag.Items())
	}
}

func TestCheckMalformedMarker(t *testing.T) {
	impl := marked("plugs.Broken", il.TypeStatic, map[string]string{"optional": "true"})
	bag := check([]*il.TypeDecl{impl})
	if len(bag.ByCode(diag.MalformedPlugMarker)) != 1 {
		t.Fatal("missing MalformedPlugMarker fault")
	}
}
