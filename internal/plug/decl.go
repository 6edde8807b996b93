// Package plug discovers declaratively marked replacement types across
// replacement modules and builds the registry the patch orchestrator
// consumes. Scanning never mutates its input modules.
package plug

import "ilpatch/internal/il"

// Marker attr names the scanner interprets. Everything else on a
// declaration is opaque to this package.
const (
	// AttrPlug marks a replacement type. Args: "target" (direct type
	// identity), "targetName" (late-bound name string), "optional",
	// "replaceBase".
	AttrPlug = "plug"
	// AttrPlugMember overrides the target member name for one member.
	// Args: "target".
	AttrPlugMember = "plug.member"
)

// TargetSpecKind discriminates how a plug names its target.
type TargetSpecKind uint8

const (
	// TargetByIdentity is a direct type identity.
	TargetByIdentity TargetSpecKind = iota
	// TargetByName is a name string resolved lazily against the resolution
	// context. Never carried past the scanner boundary unresolved.
	TargetByName
)

// TargetSpec is the sum type of the two target forms.
type TargetSpec struct {
	Kind     TargetSpecKind
	Identity il.QName // TargetByIdentity
	Name     string   // TargetByName
}

func (s TargetSpec) String() string {
	if s.Kind == TargetByIdentity {
		return string(s.Identity)
	}
	return s.Name
}

// Decl is a validated plug type declaration with its resolved target.
type Decl struct {
	Type   *il.TypeDecl
	Module string // replacement module the declaration came from

	Spec        TargetSpec
	Optional    bool
	ReplaceBase bool

	// Target is the resolved target type identity. Set exactly once during
	// scan; declarations that fail to resolve never leave the scanner.
	Target il.QName
}

// Member is one member substitution inside a validated plug declaration.
// Exactly one of Method, Field, Prop is set.
type Member struct {
	Plug   *Decl
	Method *il.MethodDecl
	Field  *il.FieldDecl
	Prop   *il.PropertyDecl

	// TargetName is the resolved target member name: the explicit override
	// from the plug.member marker, or the declared name.
	TargetName string
}

// DeclaredName returns the name the member was declared with in the plug
// type.
func (m *Member) DeclaredName() string {
	switch {
	case m.Method != nil:
		return m.Method.Name
	case m.Field != nil:
		return m.Field.Name
	case m.Prop != nil:
		return m.Prop.Name
	}
	return ""
}

// String renders "Target::TargetName" for fault subjects.
func (m *Member) String() string {
	return string(m.Plug.Target) + "::" + m.TargetName
}
