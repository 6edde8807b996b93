package diagfmt

import (
	"encoding/json"
	"io"

	"ilpatch/internal/diag"
)

// NoteJSON is secondary context in JSON form.
type NoteJSON struct {
	Message string `json:"message"`
	Subject string `json:"subject,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON form. Code is the stable string
// identifier; ID is the phase-prefixed numeric form.
type DiagnosticJSON struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	ID       string     `json:"id"`
	Message  string     `json:"message"`
	Module   string     `json:"module,omitempty"`
	Subject  string     `json:"subject,omitempty"`
	Notes    []NoteJSON `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root JSON structure.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
}

// JSON writes the bag as a single indented JSON document.
func JSON(w io.Writer, bag *diag.Bag) error {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, bag.Len())}
	for _, d := range bag.Items() {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.Ident(),
			ID:       d.Code.ID(),
			Message:  d.Message,
			Module:   d.Module,
			Subject:  d.Subject,
		}
		for _, n := range d.Notes {
			dj.Notes = append(dj.Notes, NoteJSON{Message: n.Msg, Subject: n.Subject})
		}
		out.Diagnostics = append(out.Diagnostics, dj)
		switch d.Severity {
		case diag.SevError:
			out.Errors++
		case diag.SevWarning:
			out.Warnings++
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
