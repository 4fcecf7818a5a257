package jobs

import "time"

// Status represents the lifecycle of a generation job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusGenerating,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether a job in this status will not progress further.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Job is a generation job persisted in SQLite.
type Job struct {
	ID              int64
	OwnerID         int64
	Topic           string
	Title           string
	Status          Status
	Stage           string
	Progress        float64
	Message         string
	ScriptJSON      string
	OutputPath      string
	OutputURL       string
	ErrorMessage    string
	ErrorCode       string
	Recoverable     bool
	ChunkCount      int
	ChunksCompleted int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
