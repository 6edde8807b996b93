package plug

import "ilpatch/internal/il"

// Resolver is the resolution context for target specifiers: the set of
// modules the eventual patch target belongs to, plus any base-library
// catalog modules.
type Resolver struct {
	modules []*il.Module
}

// NewResolver builds a resolver over the given modules.
func NewResolver(modules ...*il.Module) *Resolver {
	return &Resolver{modules: modules}
}

// AddModule appends a module to the resolution context.
func (r *Resolver) AddModule(m *il.Module) {
	if m != nil {
		r.modules = append(r.modules, m)
	}
}

// ResolveType returns the declaration for name, or nil. Modules are
// searched in registration order; the first hit wins.
func (r *Resolver) ResolveType(name il.QName) *il.TypeDecl {
	for _, m := range r.modules {
		if t := m.FindType(name); t != nil {
			return t
		}
	}
	return nil
}

// Resolve resolves a target spec to a type identity. ok is false when the
// context has no declaration for the spec.
func (r *Resolver) Resolve(spec TargetSpec) (il.QName, bool) {
	var name il.QName
	switch spec.Kind {
	case TargetByIdentity:
		name = spec.Identity
	case TargetByName:
		name = il.QName(spec.Name)
	}
	if t := r.ResolveType(name); t != nil {
		return t.Name, true
	}
	return il.NoName, false
}
