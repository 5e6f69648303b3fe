package model

import (
	"path/filepath"
	"strings"
	"time"
)

// DownloadTask represents a single acquisition task
type DownloadTask struct {
	ID         string
	Identifier string // video ID or URL as entered by the user
	AudioOnly  bool
	Status     TaskStatus
	Stage      Stage
	Progress   float64   // 0.0 to 1.0
	Percent    int       // 0 to 100
	LastError  string    // last error message if any
	ErrorKind  string    // error taxonomy kind, empty on success
	OutputPath string    // path to the final file
	StartedAt  time.Time // when the task was queued
	FinishedAt time.Time // when the task finished
}

// Mode returns "audio" or "video"
func (dt *DownloadTask) Mode() string {
	if dt.AudioOnly {
		return "audio"
	}
	return "video"
}

// GetDisplayTitle returns the output file name or the identifier, in that order
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.OutputPath != "" {
		name := filepath.Base(dt.OutputPath)
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		return name
	}
	return dt.Identifier
}

// Snapshot returns a copy that can be handed to another goroutine
func (dt *DownloadTask) Snapshot() DownloadTask {
	return *dt
}
