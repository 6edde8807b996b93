// Package diagfmt renders diagnostics for humans (pretty), machines (json)
// and IDE integrations (sarif). It never filters or reorders: callers sort
// and dedup the bag first.
package diagfmt

// PrettyOpts controls human-readable output.
type PrettyOpts struct {
	// Color enables ANSI styling.
	Color bool
	// ShowNotes includes secondary notes under each diagnostic.
	ShowNotes bool
}

// SarifRunMeta describes the tool block of a SARIF run.
type SarifRunMeta struct {
	ToolName    string
	ToolVersion string
}
