package plug

import (
	"errors"

	"ilpatch/internal/diag"
	"ilpatch/internal/il"
)

// Scan walks every type declaration of every replacement module, resolves
// plug markers against the resolver and returns the validated registry.
// Faults go to rep; Scan itself never fails and never mutates its inputs.
//
// Modules are scanned in the order given. Conflicting substitutions keep
// the first-scanned entry and report DuplicateSubstitution, so scanning the
// same set in the same order is fully deterministic.
func Scan(modules []*il.Module, res *Resolver, rep diag.Reporter) *Registry {
	reg := NewRegistry()
	for _, m := range modules {
		reg.Merge(ScanModule(m, res, rep), rep)
	}
	return reg
}

// ScanModule scans a single replacement module into a private registry.
// The result is meant to be merged into the run-wide registry; parallel
// callers scan into partials and merge under a single writer so duplicate
// detection stays deterministic regardless of scan order.
func ScanModule(m *il.Module, res *Resolver, rep diag.Reporter) *Registry {
	reg := NewRegistry()
	for _, t := range m.Types {
		d := parseDecl(t, m.Name, rep)
		if d == nil {
			continue
		}
		target, ok := res.Resolve(d.Spec)
		if !ok {
			if d.Optional {
				// Optional plugs with unresolvable targets are dropped
				// silently: no registry entry, no fault.
				continue
			}
			diag.Errorf(tagged(rep, m.Name), diag.TargetNotFound, string(t.Name),
				"plug target %q not found in resolution context", d.Spec)
			continue
		}
		d.Target = target

		if !d.Optional && !d.ReplaceBase && !t.IsStatic() {
			diag.Errorf(tagged(rep, m.Name), diag.ContainerNotStatic, string(t.Name),
				"plug container %s must be a static type", t.Name)
			continue
		}

		if d.ReplaceBase {
			if prev, ok := reg.AddType(d); !ok {
				reportDuplicateType(rep, prev, d)
			}
			continue
		}

		for _, member := range collectMembers(d) {
			if prev, ok := reg.AddMember(member); !ok {
				reportDuplicateMember(rep, prev, member)
			}
		}
	}
	return reg
}

// ErrNoTarget is returned by ParseMarker for a plug marker that names no
// target at all.
var ErrNoTarget = errors.New("plug marker names no target")

// ParseMarker interprets the plug marker on a type declaration. It returns
// (nil, nil) when the type carries no marker. The validator shares this
// with the scanner so that both apply identical interpretation rules.
func ParseMarker(t *il.TypeDecl) (*Decl, error) {
	attr := il.FindAttr(t.Attrs, AttrPlug)
	if attr == nil {
		return nil, nil
	}
	d := &Decl{
		Type:        t,
		Optional:    attr.BoolArg("optional"),
		ReplaceBase: attr.BoolArg("replaceBase"),
	}
	switch {
	case attr.Arg("target") != "":
		d.Spec = TargetSpec{Kind: TargetByIdentity, Identity: il.QName(attr.Arg("target"))}
	case attr.Arg("targetName") != "":
		d.Spec = TargetSpec{Kind: TargetByName, Name: attr.Arg("targetName")}
	default:
		return nil, ErrNoTarget
	}
	return d, nil
}

// parseDecl wraps ParseMarker with fault reporting for the scan phase.
func parseDecl(t *il.TypeDecl, module string, rep diag.Reporter) *Decl {
	d, err := ParseMarker(t)
	if err != nil {
		diag.Errorf(tagged(rep, module), diag.MalformedPlugMarker, string(t.Name),
			"plug marker on %s names no target", t.Name)
		return nil
	}
	if d != nil {
		d.Module = module
	}
	return d
}

// collectMembers builds the member substitution list of a member-level
// plug declaration. Constructors are only meaningful for replace-base
// plugs and are skipped here.
func collectMembers(d *Decl) []*Member {
	var out []*Member
	for _, m := range d.Type.Methods {
		if m.IsCtor() {
			continue
		}
		out = append(out, &Member{
			Plug:       d,
			Method:     m,
			TargetName: MemberTargetName(m.Attrs, m.Name),
		})
	}
	for _, f := range d.Type.Fields {
		out = append(out, &Member{
			Plug:       d,
			Field:      f,
			TargetName: MemberTargetName(f.Attrs, f.Name),
		})
	}
	for _, p := range d.Type.Props {
		out = append(out, &Member{
			Plug:       d,
			Prop:       p,
			TargetName: MemberTargetName(p.Attrs, p.Name),
		})
	}
	return out
}

// MemberTargetName resolves the target member name of a plug member: the
// explicit plug.member override when present, the declared name otherwise.
func MemberTargetName(attrs []il.Attr, declared string) string {
	if a := il.FindAttr(attrs, AttrPlugMember); a != nil && a.Arg("target") != "" {
		return a.Arg("target")
	}
	return declared
}

// tagged wraps a reporter so that emitted diagnostics carry the module
// name.
func tagged(rep diag.Reporter, module string) diag.Reporter {
	return moduleReporter{inner: rep, module: module}
}

type moduleReporter struct {
	inner  diag.Reporter
	module string
}

func (r moduleReporter) Report(d diag.Diagnostic) {
	if r.inner == nil {
		return
	}
	if d.Module == "" {
		d.Module = r.module
	}
	r.inner.Report(d)
}
