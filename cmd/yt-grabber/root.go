package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytget/yt-grabber/internal/acquire"
	"github.com/ytget/yt-grabber/internal/config"
	"github.com/ytget/yt-grabber/internal/download"
	"github.com/ytget/yt-grabber/internal/model"
	"github.com/ytget/yt-grabber/internal/platform"
	"github.com/ytget/yt-grabber/internal/transcode"
)

type options struct {
	configPath  string
	envFile     string
	outputDir   string
	audioFormat string
	audioOnly   bool
	parallel    int
	plain       bool
	metricsAddr string
}

type playlistExpander interface {
	ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error)
}

// Swapped in tests
var (
	newRunner = func(cfg *config.FileConfig) download.Runner {
		yt := platform.NewYouTubeClient(nil)
		return acquire.New(cfg.WorkflowConfig(), yt, yt, transcode.NewService(cfg.FFmpegPath))
	}
	newExpander = func() playlistExpander {
		return platform.NewPlaylistParser()
	}
)

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "yt-grabber",
		Short:        "Downloads YouTube videos or their audio track",
		Version:      version,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a yaml config file.")
	flags.StringVarP(&opts.outputDir, "out", "o", "", "The output directory, overrides the config.")
	flags.StringVarP(&opts.audioFormat, "format", "f", "", "Target audio format for --audio ("+fmt.Sprint(transcode.SupportedFormats())+").")
	flags.BoolVarP(&opts.audioOnly, "audio", "a", false, "Download the audio track only and convert it.")
	flags.IntVarP(&opts.parallel, "parallel", "p", 0, "Parallel downloads, overrides the config.")
	flags.StringVar(&opts.envFile, "env-file", "", "Dotenv file with YTGRAB_* variables (default .env when present).")
	flags.BoolVar(&opts.plain, "plain", false, "Print progress lines instead of progress bars.")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090.")

	rootCmd.AddCommand(newGetCmd(opts), newPlaylistCmd(opts))
	return rootCmd
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "get <id|url>...",
		Short:   "Downloads one or more videos",
		Example: `yt-grabber get --audio dQw4w9WgXcQ,https://www.youtube.com/watch?v=XbNghLqsVwU`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []string
			for _, arg := range args {
				ids = append(ids, download.SplitIdentifiers(arg)...)
			}
			return execute(cmd.Context(), opts, cmd.OutOrStdout(), func(context.Context) ([]string, error) {
				return ids, nil
			})
		},
	}
}

func newPlaylistCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "playlist <url>",
		Short:   "Downloads every video of a playlist",
		Example: `yt-grabber playlist --audio "https://www.youtube.com/playlist?list=PL..."`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), opts, cmd.OutOrStdout(), func(ctx context.Context) ([]string, error) {
				playlist, err := newExpander().ParsePlaylist(ctx, args[0])
				if err != nil {
					return nil, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "playlist %q: %d videos\n", playlist.Title, len(playlist.Entries))
				return playlist.VideoIDs(), nil
			})
		},
	}
}

// loadConfig reads the config and applies the command line overrides
func loadConfig(opts *options) (*config.FileConfig, error) {
	if err := config.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if opts.audioFormat != "" {
		if !transcode.IsSupportedFormat(opts.audioFormat) {
			return nil, fmt.Errorf("%w: %s", transcode.ErrUnsupportedFormat, opts.audioFormat)
		}
		cfg.AudioFormat = opts.audioFormat
	}
	if opts.parallel > 0 {
		cfg.MaxParallel = opts.parallel
	}
	return cfg, nil
}

func execute(parent context.Context, opts *options, out io.Writer, identifiers func(context.Context) ([]string, error)) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := platform.CreateDirectoryIfNotExists(cfg.OutputDir); err != nil {
		return err
	}
	if opts.audioOnly {
		if _, err := platform.ValidateFFmpeg(cfg.FFmpegPath); err != nil {
			return err
		}
	}

	ids, err := identifiers(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: no identifiers given", acquire.ErrInvalidInput)
	}

	svc := download.NewService(newRunner(cfg), cfg.MaxParallel)
	if opts.metricsAddr != "" {
		_, shutdown, err := serveMetrics(opts.metricsAddr, svc)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	view := newView(ctx, out, opts.plain)
	return run(ctx, svc, ids, opts.audioOnly, view)
}

// run queues ids, prints progress until every task finished and reports
// failures as one joined error
func run(ctx context.Context, svc *download.Service, ids []string, audioOnly bool, view progressView) error {
	svc.SetUpdateCallback(view.update)

	var errs []error
	for _, id := range ids {
		if _, err := svc.AddTask(id, audioOnly); err != nil {
			errs = append(errs, err)
		}
	}

	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		view.note("interrupted, stopping downloads")
		svc.StopAll()
		<-done
	}
	view.finish()

	for _, task := range svc.GetAllTasks() {
		switch task.Status {
		case model.TaskStatusError:
			errs = append(errs, fmt.Errorf("%s: %s", task.Identifier, task.LastError))
		case model.TaskStatusStopped:
			errs = append(errs, fmt.Errorf("%s: stopped", task.Identifier))
		}
	}
	return errors.Join(errs...)
}
