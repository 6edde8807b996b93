package il

import "strings"

// TypeRef names a value-type shape. It is identity-only: two refs are the
// same shape iff their names are equal.
type TypeRef struct {
	Name QName
}

// Void is the return shape of a method that produces no value.
var Void = TypeRef{Name: "void"}

// IsVoid reports whether the ref is the void shape.
func (r TypeRef) IsVoid() bool { return r.Name == Void.Name }

// Signature is the parameter/return shape of a method. The receiver of an
// instance method is not part of Params.
type Signature struct {
	Params []TypeRef
	Return TypeRef
}

func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(string(p.Name))
	}
	sb.WriteString(") -> ")
	sb.WriteString(string(s.Return.Name))
	return sb.String()
}

// Equal reports structural equality of two signatures.
func (s Signature) Equal(o Signature) bool {
	if s.Return != o.Return || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i] != o.Params[i] {
			return false
		}
	}
	return true
}

// CompatibleAsPlug reports whether plug can stand in for target under the
// instance-to-static convention: a static plug method matches an instance
// target method when its first parameter stands in for the receiver and the
// remaining parameters and the return shape match positionally. Static
// targets match plain structural equality.
func CompatibleAsPlug(target, plug *MethodDecl) bool {
	if !plug.IsStatic() {
		return false
	}
	if target.IsStatic() {
		return target.Sig.Equal(plug.Sig)
	}
	if len(plug.Sig.Params) != len(target.Sig.Params)+1 {
		return false
	}
	if plug.Sig.Return != target.Sig.Return {
		return false
	}
	// First plug parameter is the receiver slot; its declared shape is not
	// checked against the owner so that plugs may take an opaque handle.
	for i, p := range target.Sig.Params {
		if plug.Sig.Params[i+1] != p {
			return false
		}
	}
	return true
}
