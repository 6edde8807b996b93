// Package diag defines the fault model shared by the scanner, the patch
// orchestrator and the build-time validator.
//
// Diagnostic is the central record: a Severity, a stable Code, a message and
// the qualified name of the subject the fault is about. Producers emit
// through a Reporter so that storage and formatting stay decoupled; Bag
// aggregates diagnostics and supports sorting, deduplication and merging.
//
// Scanner and orchestrator faults are accumulated, never thrown: a single
// run reports every problem at once, and fatality policy belongs to the CLI
// wrapper. Rendering lives in internal/diagfmt.
package diag
