package config

import (
	"strings"

	"fyne.io/fyne/v2"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/platform"
	"github.com/ytget/yt-grabber/internal/transcode"
)

// Settings keys for Fyne preferences
const (
	KeyOutputDir        = "output_directory"
	KeyAudioFormat      = "audio_format"
	KeyMaxParallel      = "max_parallel_downloads"
	KeyLanguage         = "app_language"
	KeyFFmpegPath       = "ffmpeg_path"
	KeyResolveTimeout   = "resolve_timeout_seconds"
	KeyTransferTimeout  = "transfer_timeout_seconds"
	KeyTranscodeTimeout = "transcode_timeout_seconds"
	KeyRetries          = "retries"
	KeyAutoReveal       = "auto_reveal_on_complete"
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetOutputDirectory returns the configured output directory
func (s *Settings) GetOutputDirectory() string {
	dir := s.app.Preferences().String(KeyOutputDir)
	if dir == "" {
		dir = platform.GetDefaultOutputDir()
		s.SetOutputDirectory(dir)
	}
	return dir
}

// SetOutputDirectory sets the output directory
func (s *Settings) SetOutputDirectory(dir string) {
	s.app.Preferences().SetString(KeyOutputDir, strings.TrimSpace(dir))
}

// GetAudioFormat returns the target format of the audio path
func (s *Settings) GetAudioFormat() string {
	format := s.app.Preferences().String(KeyAudioFormat)
	if !transcode.IsSupportedFormat(format) {
		return DefaultAudioFormat
	}
	return format
}

// SetAudioFormat stores format; unsupported values reset to the default
func (s *Settings) SetAudioFormat(format string) {
	format = strings.ToLower(strings.TrimSpace(format))
	if !transcode.IsSupportedFormat(format) {
		format = DefaultAudioFormat
	}
	s.app.Preferences().SetString(KeyAudioFormat, format)
}

// GetAudioFormatOptions returns the selectable audio formats
func (s *Settings) GetAudioFormatOptions() []string {
	return transcode.SupportedFormats()
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads
func (s *Settings) GetMaxParallelDownloads() int {
	value := s.app.Preferences().Int(KeyMaxParallel)
	if value <= 0 {
		s.SetMaxParallelDownloads(DefaultMaxParallel)
		return DefaultMaxParallel
	}
	return clampParallel(value)
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	s.app.Preferences().SetInt(KeyMaxParallel, clampParallel(count))
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		LanguageSystem:  "System Default",
		LanguageEnglish: "English",
		LanguageRussian: "Русский",
	}
}

// GetFFmpegPath returns the configured ffmpeg executable, empty for PATH lookup
func (s *Settings) GetFFmpegPath() string {
	return s.app.Preferences().String(KeyFFmpegPath)
}

// SetFFmpegPath sets the ffmpeg executable
func (s *Settings) SetFFmpegPath(path string) {
	s.app.Preferences().SetString(KeyFFmpegPath, strings.TrimSpace(path))
}

// GetResolveTimeout returns the metadata resolution timeout in seconds, 0 disables it
func (s *Settings) GetResolveTimeout() int {
	return s.nonNegative(KeyResolveTimeout, DefaultResolveTimeoutSec)
}

// SetResolveTimeout sets the metadata resolution timeout in seconds
func (s *Settings) SetResolveTimeout(sec int) {
	s.app.Preferences().SetInt(KeyResolveTimeout, max(sec, 0))
}

// GetTransferTimeout returns the transfer timeout in seconds, 0 disables it
func (s *Settings) GetTransferTimeout() int {
	return s.nonNegative(KeyTransferTimeout, DefaultTransferTimeoutSec)
}

// SetTransferTimeout sets the transfer timeout in seconds
func (s *Settings) SetTransferTimeout(sec int) {
	s.app.Preferences().SetInt(KeyTransferTimeout, max(sec, 0))
}

// GetTranscodeTimeout returns the transcode timeout in seconds, 0 disables it
func (s *Settings) GetTranscodeTimeout() int {
	return s.nonNegative(KeyTranscodeTimeout, DefaultTranscodeTimeoutSec)
}

// SetTranscodeTimeout sets the transcode timeout in seconds
func (s *Settings) SetTranscodeTimeout(sec int) {
	s.app.Preferences().SetInt(KeyTranscodeTimeout, max(sec, 0))
}

// GetRetries returns how many times a failed resolution or transfer is retried
func (s *Settings) GetRetries() int {
	return min(s.nonNegative(KeyRetries, DefaultRetries), MaxRetries)
}

// SetRetries sets the retry count
func (s *Settings) SetRetries(n int) {
	s.app.Preferences().SetInt(KeyRetries, min(max(n, 0), MaxRetries))
}

// GetAutoRevealOnComplete returns whether to reveal finished files automatically
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoReveal, DefaultAutoReveal)
}

// SetAutoRevealOnComplete sets whether to reveal finished files automatically
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoReveal, autoReveal)
}

// WorkflowConfig builds the acquisition settings from the stored preferences
func (s *Settings) WorkflowConfig() acquire.Config {
	return acquire.Config{
		OutputDir:        s.GetOutputDirectory(),
		AudioFormat:      s.GetAudioFormat(),
		ResolveTimeout:   seconds(s.GetResolveTimeout()),
		TransferTimeout:  seconds(s.GetTransferTimeout()),
		TranscodeTimeout: seconds(s.GetTranscodeTimeout()),
		Retries:          s.GetRetries(),
		RetryDelay:       DefaultRetryDelay,
	}
}

// nonNegative reads an int preference; unset or negative values yield fallback
func (s *Settings) nonNegative(key string, fallback int) int {
	value := s.app.Preferences().IntWithFallback(key, fallback)
	if value < 0 {
		return fallback
	}
	return value
}
