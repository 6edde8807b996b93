package il

import "strings"

// QName is a fully qualified type name (namespace + simple name).
// Type identity across modules is QName equality, never structural equality.
type QName string

// NoName is the zero QName.
const NoName QName = ""

// Simple returns the segment after the last dot.
func (q QName) Simple() string {
	s := string(q)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Namespace returns everything before the last dot, or "" for a bare name.
func (q QName) Namespace() string {
	s := string(q)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return ""
}

func (q QName) String() string { return string(q) }

// MemberRef identifies a member of a type by owner and simple name.
type MemberRef struct {
	Type QName
	Name string
}

func (r MemberRef) String() string {
	return string(r.Type) + "::" + r.Name
}
