package diag

// Note is secondary context attached to a diagnostic.
type Note struct {
	Subject string
	Msg     string
}

// Diagnostic is one fault or finding. Subject is the qualified name of the
// type or member the finding is about; Module names the module that subject
// was seen in (may be empty for module-less findings).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Module   string
	Subject  string
	Notes    []Note
}

// New constructs a diagnostic without notes.
func New(sev Severity, code Code, subject, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Subject:  subject,
		Message:  msg,
	}
}

// WithNote returns a copy with one more note attached.
func (d Diagnostic) WithNote(subject, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Subject: subject, Msg: msg})
	return d
}

// InModule returns a copy tagged with the module name.
func (d Diagnostic) InModule(module string) Diagnostic {
	d.Module = module
	return d
}
