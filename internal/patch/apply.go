package patch

import (
	"ilpatch/internal/diag"
	"ilpatch/internal/il"
	"ilpatch/internal/plug"
)

// Apply patches the target module in place using the registry. Every fault
// is reported through rep; Apply never aborts on a fault, so one run
// surfaces every problem at once. Fatality policy belongs to the caller.
func Apply(target *il.Module, reg *plug.Registry, rep diag.Reporter) {
	for _, t := range target.Types {
		if d := reg.TypeFor(t.Name); d != nil {
			spliceType(t, d, rep)
			continue
		}
		applyMembers(t, reg, rep)
	}
	RedirectMemberRefs(target, reg)
	checkCompleteness(target, rep)
}

// spliceType handles a replace-base plug: constructors and non-extern
// methods of the replacement type are swapped member-for-member by name.
func spliceType(t *il.TypeDecl, d *plug.Decl, rep diag.Reporter) {
	for _, rm := range d.Type.Methods {
		if rm.IsExtern() && !rm.IsCtor() {
			continue
		}
		if rm.Body == nil {
			continue
		}
		tm := t.FindMethod(rm.Name)
		if tm == nil {
			diag.Errorf(rep, diag.TargetMemberNotFound, string(t.Name)+"::"+rm.Name,
				"replace-base plug %s declares %s but the target type has no such member",
				d.Type.Name, rm.Name)
			continue
		}
		Transplant(rm.Body, tm)
		tm.Flags &^= il.MemberExtern
	}
}

// applyMembers patches individual members of one target type from the
// member map.
func applyMembers(t *il.TypeDecl, reg *plug.Registry, rep diag.Reporter) {
	for _, pm := range reg.MembersFor(t.Name) {
		if pm.Method == nil {
			// Field and property substitutions patch call/access sites,
			// not declarations; see RedirectMemberRefs.
			continue
		}
		tm := t.FindMethod(pm.TargetName)
		if tm == nil {
			diag.Errorf(rep, diag.TargetMemberNotFound, pm.String(),
				"plug %s targets %s::%s which does not exist",
				pm.Plug.Type.Name, t.Name, pm.TargetName)
			continue
		}
		if !il.CompatibleAsPlug(tm, pm.Method) {
			diag.Errorf(rep, diag.SignatureMismatch, pm.String(),
				"plug method %s%s is not compatible with target %s%s",
				pm.Method.Name, pm.Method.Sig, tm.Name, tm.Sig)
			continue
		}
		applyMethodPlug(tm, pm)
	}
}

// applyMethodPlug rewrites one matched target method. Zero-parameter
// targets take the jump-stub fast path; everything else gets the plug's
// body transplanted under the target's identity, because callers already
// hold references to the target method.
func applyMethodPlug(tm *il.MethodDecl, pm *plug.Member) {
	if len(tm.Sig.Params) == 0 || pm.Method.Body == nil {
		BuildJumpStub(tm, pm.Method.Ref())
	} else {
		Transplant(pm.Method.Body, tm)
	}
	tm.Flags &^= il.MemberExtern
}

// checkCompleteness reports every extern member left without a body after
// the pass. Such methods have no valid body to execute in the kernel
// environment, so the consumer treats these faults as build-fatal.
func checkCompleteness(target *il.Module, rep diag.Reporter) {
	for _, t := range target.Types {
		for _, m := range t.Methods {
			if m.IsExtern() && m.Body == nil {
				diag.Errorf(rep, diag.MissingRequiredPlug, string(t.Name)+"::"+m.Name,
					"extern method %s::%s has no plug and cannot execute", t.Name, m.Name)
			}
		}
	}
}
