package diag

import "testing"

func TestBagCap(t *testing.T) {
	b := NewBag(2)
	if !b.Add(New(SevError, TargetNotFound, "A", "one")) {
		t.Fatal("first add rejected")
	}
	if !b.Add(New(SevError, TargetNotFound, "B", "two")) {
		t.Fatal("second add rejected")
	}
	if b.Add(New(SevError, TargetNotFound, "C", "three")) {
		t.Fatal("add past the cap accepted")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBagLargeCap(t *testing.T) {
	// Caps past the uint16 range must survive intact.
	b := NewBag(1 << 17)
	if b.Cap() != 1<<17 {
		t.Fatalf("cap = %d, want %d", b.Cap(), 1<<17)
	}
	for i := 0; i < 200; i++ {
		if !b.Add(New(SevError, TargetNotFound, "A", "x")) {
			t.Fatalf("add %d rejected under a large cap", i)
		}
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevWarning, DuplicateSubstitution, "Z", "dup").InModule("mod-b"))
	b.Add(New(SevError, TargetNotFound, "A", "missing").InModule("mod-b"))
	b.Add(New(SevError, MissingRequiredPlug, "A", "incomplete").InModule("mod-a"))
	b.Add(New(SevWarning, ContainerNotStatic, "A", "not static").InModule("mod-b"))
	b.Sort()

	items := b.Items()
	// Module first, then subject, then severity descending, then code.
	if items[0].Module != "mod-a" {
		t.Fatalf("first item module = %q", items[0].Module)
	}
	if items[1].Subject != "A" || items[1].Severity != SevError {
		t.Fatalf("second item = %+v, want mod-b/A error first", items[1])
	}
	if items[2].Subject != "A" || items[2].Severity != SevWarning {
		t.Fatalf("third item = %+v", items[2])
	}
	if items[3].Subject != "Z" {
		t.Fatalf("fourth item = %+v", items[3])
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevError, TargetNotFound, "A", "missing"))
	b.Add(New(SevError, TargetNotFound, "A", "missing"))
	b.Add(New(SevError, TargetNotFound, "A", "different message"))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("len after dedup = %d, want 2", b.Len())
	}
}

func TestBagFatality(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevWarning, DuplicateSubstitution, "A", "dup"))
	if b.HasErrors() {
		t.Fatal("warning counted as error")
	}
	if b.HasFatal() {
		t.Fatal("warning-severity diagnostic counted as fatal")
	}
	b.Add(New(SevError, ScanInfo, "A", "info-coded error"))
	if !b.HasErrors() {
		t.Fatal("error not counted")
	}
	if b.HasFatal() {
		t.Fatal("non-fatal code counted as fatal")
	}
	b.Add(New(SevError, MissingRequiredPlug, "A", "incomplete"))
	if !b.HasFatal() {
		t.Fatal("fatal code not counted")
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(New(SevError, TargetNotFound, "A", "one"))
	other := NewBag(2)
	other.Add(New(SevError, TargetNotFound, "B", "two"))
	other.Add(New(SevError, TargetNotFound, "C", "three"))
	a.Merge(other)
	if a.Len() != 3 {
		t.Fatalf("len after merge = %d, want 3", a.Len())
	}
}

func TestCodeIdentifiers(t *testing.T) {
	cases := []struct {
		code  Code
		ident string
		id    string
	}{
		{TargetNotFound, "TargetNotFound", "SCAN1001"},
		{DuplicateSubstitution, "DuplicateSubstitution", "SCAN1003"},
		{MissingRequiredPlug, "MissingRequiredPlug", "PATCH2001"},
		{MethodNeedsPlug, "MethodNeedsPlug", "VAL3003"},
		{IOError, "IOError", "IO4000"},
	}
	for _, c := range cases {
		if c.code.Ident() != c.ident {
			t.Errorf("Ident(%d) = %q, want %q", c.code, c.code.Ident(), c.ident)
		}
		if c.code.ID() != c.id {
			t.Errorf("ID(%d) = %q, want %q", c.code, c.code.ID(), c.id)
		}
	}
}

func TestReporterHelpers(t *testing.T) {
	bag := NewBag(4)
	rep := BagReporter{Bag: bag}
	Errorf(rep, TargetNotFound, "Kernel.Ghost", "target %q not found", "Kernel.Ghost")
	Warnf(rep, DuplicateSubstitution, "Kernel.Console::Write", "duplicate")

	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Severity != SevError || items[0].Message != `target "Kernel.Ghost" not found` {
		t.Fatalf("Errorf produced %+v", items[0])
	}
	if items[1].Severity != SevWarning {
		t.Fatalf("Warnf produced %+v", items[1])
	}
}
