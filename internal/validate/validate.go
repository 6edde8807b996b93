// Package validate runs the scanner's resolution rules against source-level
// declarations, before a compiled target module exists. Its findings are a
// strict subset of what the patch orchestrator would detect: it reports
// early, it never changes patch behavior.
package validate

import (
	"ilpatch/internal/diag"
	"ilpatch/internal/il"
	"ilpatch/internal/plug"
)

// Check validates the given declarations against the resolution context.
// Bodies are not required; only declaration metadata is inspected.
//
// Diagnostics emitted, keyed by stable identifier:
//   - TypeNotFound: a plug's target string does not resolve (silent when the
//     plug is optional);
//   - ClassNotStatic: a non-optional, non-replace-base plug container is not
//     declared static;
//   - MethodNeedsPlug: an extern member with no matching plug among the
//     currently visible declarations.
func Check(decls []*il.TypeDecl, res *plug.Resolver, rep diag.Reporter) {
	covered := make(map[il.QName]map[string]bool)
	wholeType := make(map[il.QName]bool)
	plugged := make(map[*il.TypeDecl]bool)

	for _, t := range decls {
		d, err := plug.ParseMarker(t)
		if err != nil {
			diag.Errorf(rep, diag.MalformedPlugMarker, string(t.Name),
				"plug marker on %s names no target", t.Name)
			continue
		}
		if d == nil {
			continue
		}
		plugged[t] = true

		target, ok := res.Resolve(d.Spec)
		if !ok {
			if !d.Optional {
				diag.Errorf(rep, diag.TypeNotFound, string(t.Name),
					"plug target %q does not resolve to a known type", d.Spec)
			}
			continue
		}
		if !d.Optional && !d.ReplaceBase && !t.IsStatic() {
			diag.Errorf(rep, diag.ClassNotStatic, string(t.Name),
				"plug container %s must be declared static", t.Name)
		}
		if d.ReplaceBase {
			wholeType[target] = true
			continue
		}
		byName := covered[target]
		if byName == nil {
			byName = make(map[string]bool)
			covered[target] = byName
		}
		for _, m := range t.Methods {
			byName[plug.MemberTargetName(m.Attrs, m.Name)] = true
		}
		for _, f := range t.Fields {
			byName[plug.MemberTargetName(f.Attrs, f.Name)] = true
		}
		for _, p := range t.Props {
			byName[plug.MemberTargetName(p.Attrs, p.Name)] = true
		}
	}

	for _, t := range decls {
		if plugged[t] || wholeType[t.Name] {
			continue
		}
		for _, m := range t.Methods {
			if !m.IsExtern() {
				continue
			}
			if covered[t.Name][m.Name] {
				continue
			}
			diag.Errorf(rep, diag.MethodNeedsPlug, string(t.Name)+"::"+m.Name,
				"extern method %s::%s has no plug among visible declarations", t.Name, m.Name)
		}
	}
}
