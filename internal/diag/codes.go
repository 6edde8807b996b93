package diag

import "fmt"

// Code is a stable numeric diagnostic identifier. The numeric value is
// grouped by phase; the string identifier is part of the tool's external
// contract (IDE integrations key off it) and must never change.
type Code uint16

const (
	// UnknownCode is the zero value fallback.
	UnknownCode Code = 0

	// Scan-phase faults (1000-1999)

	ScanInfo Code = 1000
	// TargetNotFound: a named target type could not be resolved and the
	// owning plug is not optional.
	TargetNotFound Code = 1001
	// ContainerNotStatic: a non-optional, non-replace-base plug type is not
	// declared as a static container.
	ContainerNotStatic Code = 1002
	// DuplicateSubstitution: two plug declarations claim the same target
	// member. First-registered wins but the build must not silently proceed.
	DuplicateSubstitution Code = 1003
	// MalformedPlugMarker: a plug marker is present but its arguments are
	// unusable (e.g. no target at all).
	MalformedPlugMarker Code = 1004

	// Patch-phase faults (2000-2999)

	PatchInfo Code = 2000
	// MissingRequiredPlug: an extern/native-linkage target member has no
	// substitution after a full patch pass.
	MissingRequiredPlug Code = 2001
	// TargetMemberNotFound: a plug member resolved to a member name that
	// does not exist on the target type.
	TargetMemberNotFound Code = 2002
	// SignatureMismatch: the plug member's signature is not structurally
	// compatible with the target under the instance-to-static convention.
	SignatureMismatch Code = 2003

	// Validator diagnostics (3000-3999)

	ValidateInfo Code = 3000
	// TypeNotFound: validator counterpart of TargetNotFound.
	TypeNotFound Code = 3001
	// ClassNotStatic: validator counterpart of ContainerNotStatic.
	ClassNotStatic Code = 3002
	// MethodNeedsPlug: an extern member with no matching plug among the
	// currently visible declarations.
	MethodNeedsPlug Code = 3003

	// IO and project faults (4000-4999)

	IOError       Code = 4000
	ManifestError Code = 4001
)

var codeIdent = map[Code]string{
	UnknownCode:           "Unknown",
	ScanInfo:              "ScanInfo",
	TargetNotFound:        "TargetNotFound",
	ContainerNotStatic:    "ContainerNotStatic",
	DuplicateSubstitution: "DuplicateSubstitution",
	MalformedPlugMarker:   "MalformedPlugMarker",
	PatchInfo:             "PatchInfo",
	MissingRequiredPlug:   "MissingRequiredPlug",
	TargetMemberNotFound:  "TargetMemberNotFound",
	SignatureMismatch:     "SignatureMismatch",
	ValidateInfo:          "ValidateInfo",
	TypeNotFound:          "TypeNotFound",
	ClassNotStatic:        "ClassNotStatic",
	MethodNeedsPlug:       "MethodNeedsPlug",
	IOError:               "IOError",
	ManifestError:         "ManifestError",
}

// Ident returns the stable string identifier of the code.
func (c Code) Ident() string {
	if id, ok := codeIdent[c]; ok {
		return id
	}
	return "Unknown"
}

// ID returns the compact phase-prefixed numeric form.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCAN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PATCH%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("VAL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) String() string {
	return fmt.Sprintf("[%s] %s", c.ID(), c.Ident())
}

// Fatal reports whether a fault of this code must fail the build. Optional
// plug resolution failures never reach a reporter, so every scan/patch code
// here is fatal by contract; validator and info codes follow severity.
func (c Code) Fatal() bool {
	switch c {
	case TargetNotFound, ContainerNotStatic, DuplicateSubstitution,
		MalformedPlugMarker, MissingRequiredPlug, TargetMemberNotFound,
		SignatureMismatch, TypeNotFound, ClassNotStatic, MethodNeedsPlug,
		IOError, ManifestError:
		return true
	}
	return false
}
