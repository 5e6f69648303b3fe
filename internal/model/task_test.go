package model

import (
	"path/filepath"
	"testing"
)

func TestDownloadTask_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		identifier string
		outputPath string
		expected   string
	}{
		{"dQw4w9WgXcQ", "", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", filepath.Join("out", "Sample Song.mp3"), "Sample Song"},
		{"abc", filepath.Join("out", "v1.2 release.mp4"), "v1.2 release"},
		{"abc", filepath.Join("out", ".hidden"), ".hidden"},
	}

	for _, test := range tests {
		task := &DownloadTask{Identifier: test.identifier, OutputPath: test.outputPath}
		if got := task.GetDisplayTitle(); got != test.expected {
			t.Errorf("GetDisplayTitle() with identifier=%q output=%q = %q, expected %q",
				test.identifier, test.outputPath, got, test.expected)
		}
	}
}

func TestDownloadTask_Mode(t *testing.T) {
	if got := (&DownloadTask{AudioOnly: true}).Mode(); got != "audio" {
		t.Errorf("expected audio, got %s", got)
	}
	if got := (&DownloadTask{}).Mode(); got != "video" {
		t.Errorf("expected video, got %s", got)
	}
}

func TestDownloadTask_Snapshot(t *testing.T) {
	task := &DownloadTask{ID: "task-1", Percent: 40}
	snap := task.Snapshot()
	task.Percent = 80

	if snap.Percent != 40 {
		t.Errorf("snapshot should not follow later updates, got %d", snap.Percent)
	}
}
