// Package pipeline defines the progress event vocabulary shared by the
// driver and the UI layers.
package pipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageRead is the module reading stage.
	StageRead Stage = "read"
	// StageScan is the plug scanning stage.
	StageScan Stage = "scan"
	// StagePatch is the patching stage.
	StagePatch Stage = "patch"
	// StageWrite is the output writing stage.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a module (or for the overall pipeline when
// Module is empty).
type Event struct {
	Module  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel. Sends never block: when the
// receiver lags or has gone away, the event is dropped so the pipeline
// cannot stall behind its display.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	select {
	case s.Ch <- evt:
	default:
	}
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
