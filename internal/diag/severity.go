package diag

// Severity ranks how serious a fault is for the patch run.
type Severity uint8

const (
	// SevInfo marks advisory faults that never affect the run outcome.
	SevInfo Severity = iota
	// SevWarning marks suspect plug declarations that still patch.
	SevWarning
	// SevError marks genuine faults; whether one fails the build depends
	// on its Code (see Code.Fatal).
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
