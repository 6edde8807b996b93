package diag

import "fmt"

// Reporter is the minimal contract by which phases emit faults.
// Implementations: BagReporter (stores into a Bag), NopReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter stores every reported diagnostic into Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// Errorf is a convenience for emitting a SevError diagnostic.
func Errorf(r Reporter, code Code, subject, format string, args ...any) {
	report(r, SevError, code, subject, format, args...)
}

// Warnf is a convenience for emitting a SevWarning diagnostic.
func Warnf(r Reporter, code Code, subject, format string, args ...any) {
	report(r, SevWarning, code, subject, format, args...)
}

// Infof is a convenience for emitting a SevInfo diagnostic.
func Infof(r Reporter, code Code, subject, format string, args ...any) {
	report(r, SevInfo, code, subject, format, args...)
}

func report(r Reporter, sev Severity, code Code, subject, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(New(sev, code, subject, fmt.Sprintf(format, args...)))
}
