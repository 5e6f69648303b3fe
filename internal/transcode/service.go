package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
)

// FFmpeg constants for audio conversion
const (
	FFmpegCommand  = "ffmpeg"
	FFmpegLogLevel = "error"

	// Audio codec settings
	MP3Codec      = "libmp3lame"
	MP3Quality    = "2"
	AACCodec      = "aac"
	AACBitrate    = "192k"
	VorbisCodec   = "libvorbis"
	VorbisQuality = "5"
	OpusCodec     = "libopus"
	OpusBitrate   = "160k"
	FLACCodec     = "flac"
	WAVCodec      = "pcm_s16le"

	// StderrTailSize bounds how much ffmpeg output is kept for error messages
	StderrTailSize = 2048
)

// codecProfile describes how one output format is encoded
type codecProfile struct {
	codec   string
	quality []string
}

var profiles = map[string]codecProfile{
	"mp3":  {codec: MP3Codec, quality: []string{"-q:a", MP3Quality}},
	"m4a":  {codec: AACCodec, quality: []string{"-b:a", AACBitrate}},
	"ogg":  {codec: VorbisCodec, quality: []string{"-q:a", VorbisQuality}},
	"opus": {codec: OpusCodec, quality: []string{"-b:a", OpusBitrate}},
	"flac": {codec: FLACCodec},
	"wav":  {codec: WAVCodec},
}

// ErrUnsupportedFormat is returned for output formats without a codec profile
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Service runs ffmpeg conversions
type Service struct {
	ffmpegPath string

	mu      sync.Mutex
	running map[string]struct{}
}

// NewService creates a new transcoding service. An empty path resolves
// ffmpeg from PATH.
func NewService(ffmpegPath string) *Service {
	if strings.TrimSpace(ffmpegPath) == "" {
		ffmpegPath = FFmpegCommand
	}
	return &Service{
		ffmpegPath: ffmpegPath,
		running:    make(map[string]struct{}),
	}
}

// FFmpegPath returns the executable the service runs
func (s *Service) FFmpegPath() string {
	return s.ffmpegPath
}

// SupportedFormats implements Converter
func (s *Service) SupportedFormats() []string {
	return SupportedFormats()
}

// SupportedFormats lists the output formats in alphabetical order
func SupportedFormats() []string {
	formats := make([]string, 0, len(profiles))
	for f := range profiles {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// IsSupportedFormat reports whether format has a codec profile
func IsSupportedFormat(format string) bool {
	_, ok := profiles[normalizeFormat(format)]
	return ok
}

// Transcode converts inputPath into outputPath. The partial output is
// removed when ffmpeg fails or ctx is canceled.
func (s *Service) Transcode(ctx context.Context, inputPath, outputPath, format string) error {
	args, err := BuildFFmpegArgs(inputPath, outputPath, format)
	if err != nil {
		return err
	}

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file does not exist: %s", inputPath)
	}

	// One conversion per output file at a time
	s.mu.Lock()
	if _, busy := s.running[outputPath]; busy {
		s.mu.Unlock()
		return fmt.Errorf("conversion already in progress for file: %s", outputPath)
	}
	s.running[outputPath] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.running, outputPath)
		s.mu.Unlock()
	}()

	stderr := &tailBuffer{limit: StderrTailSize}
	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	cmd.Stderr = stderr

	log.Printf("transcoding %s -> %s (%s)", inputPath, outputPath, format)
	if err := cmd.Run(); err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("failed to remove partial output %s: %v", outputPath, rmErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
		}
		if tail := strings.TrimSpace(stderr.String()); tail != "" {
			return fmt.Errorf("ffmpeg failed: %w: %s", err, tail)
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ffmpeg reported success but produced no output: %w", err)
	}
	return nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func BuildFFmpegArgs(inputPath, outputPath, format string) ([]string, error) {
	profile, ok := profiles[normalizeFormat(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	args := []string{
		"-y",           // Overwrite output file
		"-hide_banner", // No build banner on stderr
		"-loglevel", FFmpegLogLevel,
		"-i", inputPath,
		"-vn", // Drop any video
		"-c:a", profile.codec,
	}
	args = append(args, profile.quality...)
	return append(args, outputPath), nil
}

func normalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	limit int
	buf   bytes.Buffer
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if over := t.buf.Len() - t.limit; over > 0 {
		t.buf.Next(over)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}
