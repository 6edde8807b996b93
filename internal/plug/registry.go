package plug

import (
	"sort"

	"ilpatch/internal/diag"
	"ilpatch/internal/il"
)

// Registry maps target type identities to their substitutions: member-level
// entries keyed by (target type, target member name), and whole-type
// replacements for replace-base plugs.
type Registry struct {
	members map[il.QName]map[string]*Member
	types   map[il.QName]*Decl
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		members: make(map[il.QName]map[string]*Member),
		types:   make(map[il.QName]*Decl),
	}
}

// AddMember registers a member substitution. When the slot is already
// claimed the first registration wins and the existing member is returned
// with ok=false.
func (r *Registry) AddMember(m *Member) (prev *Member, ok bool) {
	byName := r.members[m.Plug.Target]
	if byName == nil {
		byName = make(map[string]*Member)
		r.members[m.Plug.Target] = byName
	}
	if existing, dup := byName[m.TargetName]; dup {
		return existing, false
	}
	byName[m.TargetName] = m
	return nil, true
}

// AddType registers a whole-type replacement. First registration wins.
func (r *Registry) AddType(d *Decl) (prev *Decl, ok bool) {
	if existing, dup := r.types[d.Target]; dup {
		return existing, false
	}
	r.types[d.Target] = d
	return nil, true
}

// MemberFor returns the substitution for (target, memberName), or nil.
func (r *Registry) MemberFor(target il.QName, memberName string) *Member {
	return r.members[target][memberName]
}

// TypeFor returns the whole-type replacement for target, or nil.
func (r *Registry) TypeFor(target il.QName) *Decl {
	return r.types[target]
}

// MembersFor returns the member substitutions for target in deterministic
// (name-sorted) order.
func (r *Registry) MembersFor(target il.QName) []*Member {
	byName := r.members[target]
	if len(byName) == 0 {
		return nil
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*Member, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out
}

// Targets returns every target type identity with at least one entry,
// sorted.
func (r *Registry) Targets() []il.QName {
	seen := make(map[il.QName]bool, len(r.members)+len(r.types))
	for q := range r.members {
		seen[q] = true
	}
	for q := range r.types {
		seen[q] = true
	}
	out := make([]il.QName, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the total number of registered substitutions.
func (r *Registry) Len() int {
	n := len(r.types)
	for _, byName := range r.members {
		n += len(byName)
	}
	return n
}

// Merge folds a partial registry into r, reporting DuplicateSubstitution
// for every collision. Entries already in r win, so merging partials in a
// fixed module order makes conflict outcomes deterministic regardless of
// how the partials were produced.
func (r *Registry) Merge(part *Registry, rep diag.Reporter) {
	for _, target := range part.Targets() {
		if d := part.types[target]; d != nil {
			if prev, ok := r.AddType(d); !ok {
				reportDuplicateType(rep, prev, d)
			}
		}
		for _, m := range part.MembersFor(target) {
			if prev, ok := r.AddMember(m); !ok {
				reportDuplicateMember(rep, prev, m)
			}
		}
	}
}

func reportDuplicateMember(rep diag.Reporter, kept, dropped *Member) {
	if rep == nil {
		return
	}
	d := diag.New(diag.SevError, diag.DuplicateSubstitution, dropped.String(),
		"two plug declarations claim the same target member").
		InModule(dropped.Plug.Module).
		WithNote(string(kept.Plug.Type.Name), "first registered here (wins), module "+kept.Plug.Module).
		WithNote(string(dropped.Plug.Type.Name), "conflicting declaration, module "+dropped.Plug.Module)
	rep.Report(d)
}

func reportDuplicateType(rep diag.Reporter, kept, dropped *Decl) {
	if rep == nil {
		return
	}
	d := diag.New(diag.SevError, diag.DuplicateSubstitution, string(dropped.Target),
		"two replace-base plugs claim the same target type").
		InModule(dropped.Module).
		WithNote(string(kept.Type.Name), "first registered here (wins), module "+kept.Module).
		WithNote(string(dropped.Type.Name), "conflicting declaration, module "+dropped.Module)
	rep.Report(d)
}
