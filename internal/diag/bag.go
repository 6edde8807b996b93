package diag

import (
	"fmt"
	"sort"
)

// Bag accumulates diagnostics up to a limit.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates an empty bag capped at max items.
func NewBag(max int) *Bag {
	if max < 0 {
		max = 0
	}
	prealloc := max
	if prealloc > 128 {
		prealloc = 128
	}
	return &Bag{
		items: make([]Diagnostic, 0, prealloc),
		max:   max,
	}
}

// Add appends a diagnostic, honouring the limit.
// Returns false when the bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Cap returns the bag limit.
func (b *Bag) Cap() int {
	return b.max
}

// HasErrors reports whether the bag holds at least one SevError diagnostic.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasFatal reports whether the bag holds a diagnostic whose code is
// build-fatal.
func (b *Bag) HasFatal() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError && b.items[i].Code.Fatal() {
			return true
		}
	}
	return false
}

// Len returns the number of stored diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the stored diagnostics.
// Callers must not modify the returned slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// ByCode returns the stored diagnostics carrying the given code.
func (b *Bag) ByCode(code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Merge appends all diagnostics from another bag, growing the limit when
// needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	newTotal := len(b.items) + len(other.items)
	if newTotal > b.max {
		b.max = newTotal
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by module, subject, severity (desc) and code so
// that output is deterministic regardless of production order.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Module != dj.Module {
			return di.Module < dj.Module
		}
		if di.Subject != dj.Subject {
			return di.Subject < dj.Subject
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops exact repeats (same code + subject + message).
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%d:%s:%s", d.Code, d.Subject, d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}
