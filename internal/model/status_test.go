package model

import "testing"

func TestTaskStatusLifecycle(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		active   bool
		finished bool
	}{
		{TaskStatusPending, false, false},
		{TaskStatusStarting, true, false},
		{TaskStatusDownloading, true, false},
		{TaskStatusStopping, true, false},
		{TaskStatusStopped, false, true},
		{TaskStatusCompleted, false, true},
		{TaskStatusError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
			if got := tt.status.IsFinished(); got != tt.finished {
				t.Errorf("IsFinished() = %v, want %v", got, tt.finished)
			}
			if tt.active && tt.finished {
				t.Error("a status cannot be active and finished at once")
			}
		})
	}
}

func TestStageTerminal(t *testing.T) {
	terminal := map[Stage]bool{
		StageIdle:        false,
		StageValidating:  false,
		StageResolving:   false,
		StageSelecting:   false,
		StageTransfer:    false,
		StageTranscoding: false,
		StageDone:        true,
		StageFailed:      true,
	}

	for stage, want := range terminal {
		if got := stage.IsTerminal(); got != want {
			t.Errorf("Stage(%s).IsTerminal() = %v, want %v", stage, got, want)
		}
	}
}
