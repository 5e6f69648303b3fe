package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir", "nested")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if info, err := os.Stat(testDir); err != nil || !info.IsDir() {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestCreateDirectoryIfNotExists_Errors(t *testing.T) {
	if err := CreateDirectoryIfNotExists(""); err == nil {
		t.Error("expected error for empty path")
	}

	filePath := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := CreateDirectoryIfNotExists(filePath); err == nil {
		t.Error("expected error when path is a regular file")
	}
}

func TestGetDefaultOutputDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("USERPROFILE", "/home/tester")

	dir := GetDefaultOutputDir()

	if filepath.Base(dir) != OutputDirName {
		t.Errorf("expected directory to end with %q, got: %s", OutputDirName, dir)
	}
	if filepath.Base(filepath.Dir(dir)) != DocumentsDirName {
		t.Errorf("expected parent %q, got: %s", DocumentsDirName, dir)
	}
}

func TestOpenFileInManager_NonExistentFile(t *testing.T) {
	nonExistentFile := filepath.Join(t.TempDir(), "nonexistent.txt")

	err := OpenFileInManager(nonExistentFile)
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
	if !strings.Contains(err.Error(), "file does not exist:") {
		t.Errorf("Error message should contain 'file does not exist:', got: %v", err)
	}
}

func stubCommands(t *testing.T, fail map[string]bool, onPath map[string]bool) *[][]string {
	t.Helper()
	var calls [][]string

	savedRunner, savedLookPath := commandRunner, lookPath
	commandRunner = func(name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		if fail[name] {
			return errors.New(name + " failed")
		}
		return nil
	}
	lookPath = func(file string) (string, error) {
		if onPath[file] {
			return "/usr/bin/" + file, nil
		}
		return "", errors.New("not found")
	}
	t.Cleanup(func() {
		commandRunner, lookPath = savedRunner, savedLookPath
	})
	return &calls
}

func TestOpenInManager(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		fail     map[string]bool
		onPath   map[string]bool
		expected []string
		wantErr  bool
	}{
		{
			name:     "macOS reveals in Finder",
			goos:     OSDarwin,
			expected: []string{OpenCommand, MacOSSelectFlag, "/out/song.mp3"},
		},
		{
			name:     "windows selects in Explorer",
			goos:     OSWindows,
			expected: []string{ExplorerCommand, WindowsSelectParam + "/out/song.mp3"},
		},
		{
			name:     "linux opens parent with xdg-open",
			goos:     OSLinux,
			expected: []string{XDGOpenCommand, "/out"},
		},
		{
			name:     "linux falls back to file manager",
			goos:     OSLinux,
			fail:     map[string]bool{XDGOpenCommand: true},
			onPath:   map[string]bool{"thunar": true},
			expected: []string{"thunar", "/out"},
		},
		{
			name:    "linux without any file manager",
			goos:    OSLinux,
			fail:    map[string]bool{XDGOpenCommand: true},
			wantErr: true,
		},
		{
			name:    "unsupported system",
			goos:    "plan9",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := stubCommands(t, tt.fail, tt.onPath)

			err := openInManager(tt.goos, "/out/song.mp3")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			last := (*calls)[len(*calls)-1]
			if strings.Join(last, " ") != strings.Join(tt.expected, " ") {
				t.Errorf("expected command %v, got %v", tt.expected, last)
			}
		})
	}
}
