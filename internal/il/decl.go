package il

// TypeFlags describes properties of a type declaration.
type TypeFlags uint8

const (
	// TypeStatic marks a static container: no instance state, not instantiable.
	TypeStatic TypeFlags = 1 << iota
	// TypeAbstract marks an abstract type.
	TypeAbstract
	// TypeSealed marks a type that cannot be extended.
	TypeSealed
)

// MemberFlags describes properties of a member declaration.
type MemberFlags uint8

const (
	// MemberStatic marks a static member.
	MemberStatic MemberFlags = 1 << iota
	// MemberExtern marks a member with native linkage and no body of its own.
	MemberExtern
	// MemberAbstract marks an abstract member.
	MemberAbstract
	// MemberCtor marks a constructor.
	MemberCtor
)

// Attr is a declarative marker attached to a type or member declaration.
// The il package does not interpret attrs; the plug scanner does.
type Attr struct {
	Name string
	Args map[string]string
}

// Arg returns the named argument, or "" when absent.
func (a Attr) Arg(key string) string {
	if a.Args == nil {
		return ""
	}
	return a.Args[key]
}

// BoolArg reports whether the named argument is the literal "true".
func (a Attr) BoolArg(key string) bool {
	return a.Arg(key) == "true"
}

// FindAttr returns the first attr with the given name, or nil.
func FindAttr(attrs []Attr, name string) *Attr {
	for i := range attrs {
		if attrs[i].Name == name {
			return &attrs[i]
		}
	}
	return nil
}

// Module is a container of type declarations. It is the unit of input and
// output for the patch orchestrator; it transitively owns every method,
// field and property declaration.
type Module struct {
	Name  string
	Types []*TypeDecl
}

// FindType returns the declaration with the given qualified name, or nil.
func (m *Module) FindType(name QName) *TypeDecl {
	for _, t := range m.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TypeDecl is a type declaration inside a module.
type TypeDecl struct {
	Name  QName
	Flags TypeFlags
	Base  QName // NoName when the type has no base

	Methods []*MethodDecl
	Fields  []*FieldDecl
	Props   []*PropertyDecl
	Attrs   []Attr
}

// IsStatic reports whether the type is a static container.
func (t *TypeDecl) IsStatic() bool { return t.Flags&TypeStatic != 0 }

// FindMethod returns the first method with the given name, or nil.
func (t *TypeDecl) FindMethod(name string) *MethodDecl {
	for _, m := range t.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// FindField returns the field with the given name, or nil.
func (t *TypeDecl) FindField(name string) *FieldDecl {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FindProp returns the property with the given name, or nil.
func (t *TypeDecl) FindProp(name string) *PropertyDecl {
	for _, p := range t.Props {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// MethodDecl is a method declaration. Body is nil for extern and abstract
// members.
type MethodDecl struct {
	Owner *TypeDecl
	Name  string
	Sig   Signature
	Flags MemberFlags
	Body  *Body
	Attrs []Attr
}

// IsStatic reports whether the method is static.
func (m *MethodDecl) IsStatic() bool { return m.Flags&MemberStatic != 0 }

// IsExtern reports whether the method has native linkage (no body).
func (m *MethodDecl) IsExtern() bool { return m.Flags&MemberExtern != 0 }

// IsCtor reports whether the method is a constructor.
func (m *MethodDecl) IsCtor() bool { return m.Flags&MemberCtor != 0 }

// Ref returns the member reference identifying this method.
func (m *MethodDecl) Ref() MemberRef {
	return MemberRef{Type: m.Owner.Name, Name: m.Name}
}

// FieldDecl is a field declaration.
type FieldDecl struct {
	Owner *TypeDecl
	Name  string
	Type  TypeRef
	Flags MemberFlags
	Attrs []Attr
}

// Ref returns the member reference identifying this field.
func (f *FieldDecl) Ref() MemberRef {
	return MemberRef{Type: f.Owner.Name, Name: f.Name}
}

// PropertyDecl is a property declaration. Reads and writes go through the
// get_/set_ accessor methods on the owning type.
type PropertyDecl struct {
	Owner *TypeDecl
	Name  string
	Type  TypeRef
	Flags MemberFlags
	Attrs []Attr
}

// Getter returns the conventional accessor method name for reads.
func (p *PropertyDecl) Getter() string { return "get_" + p.Name }

// Setter returns the conventional accessor method name for writes.
func (p *PropertyDecl) Setter() string { return "set_" + p.Name }
