package model

// TaskStatus represents the status of an acquisition task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued but not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusStarting means the task is in the process of starting
	TaskStatusStarting TaskStatus = "Starting"

	// TaskStatusDownloading means the workflow is running
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusStopping means the task is in the process of stopping
	TaskStatusStopping TaskStatus = "Stopping"

	// TaskStatusStopped means the task was stopped by user
	TaskStatusStopped TaskStatus = "Stopped"

	// TaskStatusCompleted means the task finished successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusError means the task failed with an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is in an active state
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusStarting || ts == TaskStatusDownloading || ts == TaskStatusStopping
}

// IsFinished returns true if the task is in a finished state (completed, stopped, or error)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusStopped || ts == TaskStatusError
}

// Stage is the position of a single acquisition run in its state machine:
// Idle → Validating → ResolvingMetadata → Selecting → Transferring →
// (Transcoding) → Done, with Failed reachable from every non-idle stage.
type Stage string

const (
	StageIdle        Stage = "Idle"
	StageValidating  Stage = "Validating"
	StageResolving   Stage = "ResolvingMetadata"
	StageSelecting   Stage = "Selecting"
	StageTransfer    Stage = "Transferring"
	StageTranscoding Stage = "Transcoding"
	StageDone        Stage = "Done"
	StageFailed      Stage = "Failed"
)

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition can happen from s.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}
