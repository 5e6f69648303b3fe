package acquire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ytget/yt-grabber/internal/model"
)

// Workflow defaults: mp3 output, one retry after two seconds.
const (
	DefaultAudioFormat = "mp3"
	DefaultRetries     = 1
	DefaultRetryDelay  = 2 * time.Second

	// PartialSuffix marks files a run is still writing
	PartialSuffix = ".part"
)

// Metadata is what a Resolver knows about one media item
type Metadata struct {
	VideoID  string
	Title    string
	Audio    []model.StreamDescriptor
	Combined []model.StreamDescriptor
}

// Resolver looks up the available streams of a media item
type Resolver interface {
	ResolveMetadata(ctx context.Context, identifier string) (*Metadata, error)
}

// Transferer writes the bytes of one stream to dest. onProgress receives
// fractions in [0,1] as bytes arrive.
type Transferer interface {
	Transfer(ctx context.Context, stream model.StreamDescriptor, dest string, onProgress func(float64)) error
}

// Transcoder converts src into dst using the target audio format
type Transcoder interface {
	Transcode(ctx context.Context, src, dst, format string) error
}

// Config holds workflow settings. Zero timeouts disable the deadline.
type Config struct {
	OutputDir        string
	AudioFormat      string
	ResolveTimeout   time.Duration
	TransferTimeout  time.Duration
	TranscodeTimeout time.Duration
	Retries          int
	RetryDelay       time.Duration
}

// Request describes one acquisition run
type Request struct {
	Identifier string
	AudioOnly  bool
	OnProgress func(fraction float64)
	OnStage    func(stage model.Stage)
}

// Workflow runs acquisitions against its collaborators. It is safe for
// concurrent use; runs that target the same destination file are refused.
type Workflow struct {
	resolver   Resolver
	transferer Transferer

	mu         sync.RWMutex
	cfg        Config
	transcoder Transcoder

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New creates a workflow. A nil transcoder disables the audio-only path.
func New(cfg Config, resolver Resolver, transferer Transferer, transcoder Transcoder) *Workflow {
	return &Workflow{
		cfg:        normalizeConfig(cfg),
		resolver:   resolver,
		transferer: transferer,
		transcoder: transcoder,
		inflight:   make(map[string]struct{}),
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.AudioFormat == "" {
		cfg.AudioFormat = DefaultAudioFormat
	}
	cfg.AudioFormat = strings.TrimPrefix(strings.ToLower(cfg.AudioFormat), ".")
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return cfg
}

// Config returns the effective configuration
func (w *Workflow) Config() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Reconfigure replaces the configuration and transcoder. Runs already in
// progress keep the settings they started with.
func (w *Workflow) Reconfigure(cfg Config, transcoder Transcoder) {
	w.mu.Lock()
	w.cfg = normalizeConfig(cfg)
	w.transcoder = transcoder
	w.mu.Unlock()
}

// Acquire downloads the best stream for identifier and returns the final path:
// the transcoded audio file when audioOnly is set, the transferred file otherwise.
func (w *Workflow) Acquire(ctx context.Context, identifier string, audioOnly bool, onProgress func(float64)) (string, error) {
	return w.Run(ctx, Request{Identifier: identifier, AudioOnly: audioOnly, OnProgress: onProgress})
}

// Run is Acquire with stage reporting
func (w *Workflow) Run(ctx context.Context, req Request) (string, error) {
	stage := func(s model.Stage) {
		if req.OnStage != nil {
			req.OnStage(s)
		}
	}
	w.mu.RLock()
	cfg, transcoder := w.cfg, w.transcoder
	w.mu.RUnlock()

	fail := func(err *Error) (string, error) {
		stage(model.StageFailed)
		log.Printf("acquire %q failed: %v", req.Identifier, err)
		return "", err
	}

	stage(model.StageValidating)
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return fail(newError(KindInvalidInput, req.Identifier, errors.New("identifier is empty")))
	}
	if req.AudioOnly && transcoder == nil {
		return fail(newError(KindInvalidInput, identifier, errors.New("audio mode requires a transcoder")))
	}

	stage(model.StageResolving)
	meta, err := w.resolve(ctx, cfg, identifier)
	if err != nil {
		return fail(newError(KindResolution, identifier, err))
	}

	stage(model.StageSelecting)
	var (
		stream model.StreamDescriptor
		ok     bool
	)
	if req.AudioOnly {
		stream, ok = SelectAudio(meta.Audio)
	} else {
		stream, ok = SelectCombined(meta.Combined)
	}
	if !ok {
		return fail(newError(KindNoStreams, identifier, fmt.Errorf("no %s streams for %q", modeName(req.AudioOnly), meta.Title)))
	}
	log.Printf("acquire %q: selected %s", identifier, stream)

	dest := filepath.Join(cfg.OutputDir, BuildFileName(meta.Title, stream.Container))
	release, err := w.claim(dest)
	if err != nil {
		return fail(newError(KindTransfer, identifier, err))
	}
	defer release()

	final := dest
	if req.AudioOnly {
		final = SiblingPath(dest, cfg.AudioFormat)
	}
	if final != dest {
		releaseFinal, err := w.claim(final)
		if err != nil {
			return fail(newError(KindTransfer, identifier, err))
		}
		defer releaseFinal()
	}

	// Collaborators write to staging files; existing outputs are only
	// replaced by a complete result of this run.
	stage(model.StageTransfer)
	guard := newProgressGuard(req.OnProgress)
	staged := partialPath(dest)
	if err := w.transfer(ctx, cfg, stream, staged, guard); err != nil {
		removePartial(staged)
		return fail(newError(KindTransfer, identifier, err))
	}
	if err := promote(staged, dest); err != nil {
		return fail(newError(KindTransfer, identifier, err))
	}
	guard.complete()

	// Combined streams are kept as transferred; so is audio already in the target format
	if final == dest {
		stage(model.StageDone)
		return dest, nil
	}

	stage(model.StageTranscoding)
	stagedFinal := partialPath(final)
	if err := transcodeWith(ctx, cfg, transcoder, dest, stagedFinal); err != nil {
		// The intermediate stays for a later attempt
		removePartial(stagedFinal)
		return fail(newError(KindTranscode, identifier, err))
	}
	if err := promote(stagedFinal, final); err != nil {
		return fail(newError(KindTranscode, identifier, err))
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		log.Printf("acquire %q: failed to remove intermediate %s: %v", identifier, dest, err)
	}

	stage(model.StageDone)
	return final, nil
}

func (w *Workflow) resolve(ctx context.Context, cfg Config, identifier string) (*Metadata, error) {
	var meta *Metadata
	err := withRetry(ctx, cfg, "resolve "+identifier, func() error {
		attemptCtx, cancel := withOptionalTimeout(ctx, cfg.ResolveTimeout)
		defer cancel()

		m, err := w.resolver.ResolveMetadata(attemptCtx, identifier)
		if err != nil {
			return err
		}
		if m == nil {
			return Permanent(errors.New("resolver returned no metadata"))
		}
		meta = m
		return nil
	})
	return meta, err
}

func (w *Workflow) transfer(ctx context.Context, cfg Config, stream model.StreamDescriptor, dest string, guard *progressGuard) error {
	return withRetry(ctx, cfg, "transfer "+dest, func() error {
		attemptCtx, cancel := withOptionalTimeout(ctx, cfg.TransferTimeout)
		defer cancel()
		return w.transferer.Transfer(attemptCtx, stream, dest, guard.report)
	})
}

func transcodeWith(ctx context.Context, cfg Config, transcoder Transcoder, src, dst string) error {
	transcodeCtx, cancel := withOptionalTimeout(ctx, cfg.TranscodeTimeout)
	defer cancel()

	return transcoder.Transcode(transcodeCtx, src, dst, cfg.AudioFormat)
}

// withRetry runs fn up to Retries+1 times. Permanent errors and a done parent
// context stop it early.
func withRetry(ctx context.Context, cfg Config, what string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(cfg.RetryDelay):
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			}
			log.Printf("retrying %s, attempt %d", what, attempt+1)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if IsPermanent(err) || ctx.Err() != nil {
			return err
		}
		log.Printf("%s attempt %d failed: %v", what, attempt+1, err)
	}
	return lastErr
}

func (w *Workflow) claim(path string) (func(), error) {
	key := filepath.Clean(path)

	w.inflightMu.Lock()
	defer w.inflightMu.Unlock()

	if _, busy := w.inflight[key]; busy {
		return nil, fmt.Errorf("%w: %s", ErrDestinationBusy, path)
	}
	w.inflight[key] = struct{}{}
	return func() {
		w.inflightMu.Lock()
		delete(w.inflight, key)
		w.inflightMu.Unlock()
	}, nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// partialPath is the staging name for path. The extension stays last so
// ffmpeg still picks the output muxer from it.
func partialPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + PartialSuffix + ext
}

// promote moves a completed staging file over its final name
func promote(staged, final string) error {
	if err := os.Rename(staged, final); err != nil {
		removePartial(staged)
		return fmt.Errorf("failed to move %s into place: %w", staged, err)
	}
	return nil
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to remove partial file %s: %v", path, err)
	}
}

func modeName(audioOnly bool) string {
	if audioOnly {
		return "audio"
	}
	return "combined"
}
