package platform

import (
	"fmt"
	"strings"
)

// DefaultFFmpegBinary is looked up on PATH when no explicit path is configured
const DefaultFFmpegBinary = "ffmpeg"

// ValidateFFmpeg checks that the ffmpeg executable can be found and returns
// its resolved path
func ValidateFFmpeg(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultFFmpegBinary
	}

	resolved, err := lookPath(path)
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found (%s): %w", path, err)
	}
	return resolved, nil
}
