package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/platform"
	"github.com/ytget/yt-grabber/internal/transcode"
)

// EnvPrefix prefixes every environment override, e.g. YTGRAB_OUTPUT_DIR
const EnvPrefix = "YTGRAB"

// DefaultEnvFile is read by LoadEnvFile when no path is given
const DefaultEnvFile = ".env"

// FileConfig is the headless configuration read from file and environment
type FileConfig struct {
	OutputDir   string        `mapstructure:"output_dir" yaml:"output_dir"`
	AudioFormat string        `mapstructure:"audio_format" yaml:"audio_format"`
	FFmpegPath  string        `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path"`
	MaxParallel int           `mapstructure:"max_parallel" yaml:"max_parallel"`
	Retries     int           `mapstructure:"retries" yaml:"retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	Timeouts    TimeoutConfig `mapstructure:"timeouts" yaml:"timeouts"`
}

// TimeoutConfig holds per-phase deadlines; zero disables a deadline
type TimeoutConfig struct {
	Resolve   time.Duration `mapstructure:"resolve" yaml:"resolve"`
	Transfer  time.Duration `mapstructure:"transfer" yaml:"transfer"`
	Transcode time.Duration `mapstructure:"transcode" yaml:"transcode"`
}

// Load reads the config file at path when it exists, applies YTGRAB_*
// environment overrides and validates the result. An empty path uses
// defaults and environment only.
func Load(path string) (*FileConfig, error) {
	v := viper.New()

	v.SetDefault("output_dir", platform.GetDefaultOutputDir())
	v.SetDefault("audio_format", DefaultAudioFormat)
	v.SetDefault("ffmpeg_path", "")
	v.SetDefault("max_parallel", DefaultMaxParallel)
	v.SetDefault("retries", DefaultRetries)
	v.SetDefault("retry_delay", DefaultRetryDelay)
	v.SetDefault("timeouts.resolve", seconds(DefaultResolveTimeoutSec))
	v.SetDefault("timeouts.transfer", seconds(DefaultTransferTimeoutSec))
	v.SetDefault("timeouts.transcode", seconds(DefaultTranscodeTimeoutSec))

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFile exports the variables of a dotenv file. Variables already set
// in the environment win. A missing file is an error only when path is not
// the default ".env".
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if path == DefaultEnvFile && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("env file not found: %s", path)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (c *FileConfig) validate() error {
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}

	c.AudioFormat = strings.ToLower(strings.TrimSpace(c.AudioFormat))
	if !transcode.IsSupportedFormat(c.AudioFormat) {
		return fmt.Errorf("audio_format %q is not one of %s", c.AudioFormat, strings.Join(transcode.SupportedFormats(), ", "))
	}

	if c.Retries < 0 || c.Retries > MaxRetries {
		return fmt.Errorf("retries must be between 0 and %d, got %d", MaxRetries, c.Retries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must not be negative, got %s", c.RetryDelay)
	}
	if c.Timeouts.Resolve < 0 || c.Timeouts.Transfer < 0 || c.Timeouts.Transcode < 0 {
		return errors.New("timeouts must not be negative")
	}

	if c.MaxParallel <= 0 {
		c.MaxParallel = DefaultMaxParallel
	}
	c.MaxParallel = clampParallel(c.MaxParallel)
	return nil
}

// WorkflowConfig builds the acquisition settings
func (c *FileConfig) WorkflowConfig() acquire.Config {
	return acquire.Config{
		OutputDir:        c.OutputDir,
		AudioFormat:      c.AudioFormat,
		ResolveTimeout:   c.Timeouts.Resolve,
		TransferTimeout:  c.Timeouts.Transfer,
		TranscodeTimeout: c.Timeouts.Transcode,
		Retries:          c.Retries,
		RetryDelay:       c.RetryDelay,
	}
}
