package config

import (
	"time"

	"github.com/ytget/yt-grabber/internal/acquire"
)

// Default values shared by the GUI preferences and the CLI config file
const (
	DefaultAudioFormat         = acquire.DefaultAudioFormat
	DefaultMaxParallel         = 1
	MinMaxParallel             = 1
	MaxMaxParallel             = 10
	DefaultLanguage            = "system"
	DefaultResolveTimeoutSec   = 60
	DefaultTransferTimeoutSec  = 30 * 60
	DefaultTranscodeTimeoutSec = 10 * 60
	DefaultRetries             = acquire.DefaultRetries
	DefaultRetryDelay          = acquire.DefaultRetryDelay
	DefaultAutoReveal          = false
	MaxRetries                 = 5
)

// Supported UI languages
const (
	LanguageSystem  = "system"
	LanguageEnglish = "en"
	LanguageRussian = "ru"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func clampParallel(count int) int {
	return min(max(count, MinMaxParallel), MaxMaxParallel)
}
