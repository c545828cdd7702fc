package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageStart EventType = "stage_start"
	EventStageEnd   EventType = "stage_end"
	EventRunEnd     EventType = "run_end"
)

// Pipeline stages reported in StageEvent.Stage.
const (
	StageLoad   = "load"
	StageBuild  = "build"
	StageExport = "export"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// StageEvent marks the start or end of a pipeline stage.
type StageEvent struct {
	EventBase
	Stage    string        `json:"stage"`
	Source   string        `json:"source,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// RunEvent closes a run. Result is "ok", "skipped" or "error".
type RunEvent struct {
	EventBase
	Result   string        `json:"result"`
	Duration time.Duration `json:"duration"`
	Stats    GraphStats    `json:"stats"`
	Objects  int           `json:"objects"`
}

// LifecycleHooks defines callbacks for pipeline observability.
type LifecycleHooks struct {
	OnStageStart func(context.Context, *StageEvent)
	OnStageEnd   func(context.Context, *StageEvent)
	OnRunEnd     func(context.Context, *RunEvent)
}
