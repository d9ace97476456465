package domain

// Event is the tagged union of lifecycle events emitted by the orchestrator.
// For a single task the events are totally ordered: at most one
// MetadataExtracted, zero or more Progress, StatusChanged on every
// transition, and exactly one terminal event (Completed, Failed, or a
// StatusChanged carrying StatusCancelled).
type Event interface {
	EventTaskID() string
}

// MetadataExtracted is emitted once extraction succeeds, before transfer.
// Info carries a snapshot of the populated record.
type MetadataExtracted struct {
	TaskID string
	Info   *VideoInfo
}

// Progress is emitted while downloading. Percent is in [0,100] and
// non-decreasing for a given task; Speed is in bytes per second.
type Progress struct {
	TaskID  string
	Percent float64
	Speed   float64
}

// StatusChanged is emitted on every lifecycle transition.
type StatusChanged struct {
	TaskID string
	Status VideoStatus
}

// Completed is emitted exactly once on success with the full final record.
type Completed struct {
	TaskID string
	Info   *VideoInfo
}

// Failed is emitted exactly once on unrecoverable error.
type Failed struct {
	TaskID  string
	Message string
}

func (e MetadataExtracted) EventTaskID() string { return e.TaskID }
func (e Progress) EventTaskID() string          { return e.TaskID }
func (e StatusChanged) EventTaskID() string     { return e.TaskID }
func (e Completed) EventTaskID() string         { return e.TaskID }
func (e Failed) EventTaskID() string            { return e.TaskID }
