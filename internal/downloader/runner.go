package downloader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotweb/internal/shared"
	"golang.org/x/time/rate"
)

// Run is the record of one download, handed to a [Recorder].
type Run struct {
	ID          string
	Request     Request
	Stats       Stats
	ExitCode    int
	ListingPath string
	Err         *Error
	StartedAt   time.Time
	CompletedAt time.Time
}

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Status reports the lifecycle state of the run.
func (r Run) Status() string {
	switch {
	case r.CompletedAt.IsZero():
		return StatusRunning
	case r.Err != nil:
		return StatusFailed
	default:
		return StatusCompleted
	}
}

// Recorder persists download runs. Implementations must be safe for concurrent use.
type Recorder interface {
	RecordStart(ctx context.Context, run Run) error
	RecordFinish(ctx context.Context, run Run) error
}

// RunnerOpts configures a [Runner].
type RunnerOpts struct {
	Builder   Builder
	MusicDir  string
	LineDelay time.Duration // 0 disables throttling
	Logger    *log.Logger
	Recorder  Recorder // optional
}

// Runner starts the downloader and relays its output as [Event] values.
type Runner struct {
	builder   Builder
	musicDir  string
	lineDelay time.Duration
	logger    *log.Logger
	recorder  Recorder
}

// NewRunner creates a Runner from opts.
func NewRunner(opts RunnerOpts) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Runner{
		builder:   opts.Builder,
		musicDir:  opts.MusicDir,
		lineDelay: opts.LineDelay,
		logger:    logger,
		recorder:  opts.Recorder,
	}
}

// NewRunnerFromConfig builds a Runner from the downloader section of the config.
func NewRunnerFromConfig(cfg shared.DownloaderConfig, logger *log.Logger, rec Recorder) *Runner {
	b := NewBuilder(cfg.Path)
	if cfg.Format != "" {
		b.Format = cfg.Format
	}
	if cfg.Bitrate != "" {
		b.Bitrate = cfg.Bitrate
	}
	if cfg.Lyrics != "" {
		b.Lyrics = cfg.Lyrics
	}
	return NewRunner(RunnerOpts{
		Builder:   b,
		MusicDir:  cfg.MusicDir,
		LineDelay: cfg.LineDelay(),
		Logger:    logger,
		Recorder:  rec,
	})
}

// emitter sends events until the consumer goes away.
type emitter struct {
	ctx context.Context
	out chan<- Event
}

func (e emitter) send(ev Event) bool {
	select {
	case e.out <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

// Stream runs one download and returns its events.
//
// The channel carries zero or more status/output events followed by exactly one
// terminal event, then is closed. Cancelling ctx kills the tool and stops the
// stream; the consumer must either drain the channel or cancel ctx.
func (r *Runner) Stream(ctx context.Context, req Request) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		r.run(ctx, req, emitter{ctx: ctx, out: out})
	}()
	return out
}

func (r *Runner) run(ctx context.Context, req Request, e emitter) {
	if err := req.Validate(); err != nil {
		e.send(errorEvent(AsError(err)))
		return
	}

	run := Run{ID: shared.GenerateID(), Request: req, ExitCode: -1, StartedAt: time.Now()}
	logger := r.logger.With("run", run.ID, "mode", req.Mode)
	logger.Info("download started", "url", req.URL)
	r.recordStart(ctx, logger, run)

	err := r.execute(ctx, req, e, logger, &run)
	run.CompletedAt = time.Now()

	if err != nil {
		run.Err = AsError(err)
		logger.Warn("download failed", "kind", KindOf(err), "err", run.Err)
		e.send(errorEvent(run.Err))
	} else {
		logger.Info("download completed", "stats", run.Stats, "listing", run.ListingPath)
		e.send(completeEvent())
	}

	r.recordFinish(ctx, logger, run)
}

func (r *Runner) execute(ctx context.Context, req Request, e emitter, logger *log.Logger, run *Run) error {
	if err := os.MkdirAll(r.musicDir, 0755); err != nil {
		return internalError(fmt.Errorf("failed to create music directory: %w", err))
	}

	playlistsRoot := filepath.Join(r.musicDir, PlaylistsDir)
	var before Snapshot
	if req.Mode == ModePlaylist {
		snap, err := TakeSnapshot(playlistsRoot)
		if err != nil {
			return internalError(err)
		}
		before = snap
	}

	args := r.builder.Build(req)
	e.send(startingEvent())
	e.send(commandEvent(args))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.musicDir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return internalError(fmt.Errorf("failed to open output pipe: %w", err))
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return notFoundError(r.builder.ToolPath, err)
		}
		return internalError(fmt.Errorf("failed to start downloader: %w", err))
	}

	// Grandchildren of the tool may hold the pipe open after it is killed.
	stop := context.AfterFunc(ctx, func() { stdout.Close() })
	defer stop()

	readErr := r.relay(ctx, stdout, e, run)
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return internalError(fmt.Errorf("download cancelled: %w", ctxErr))
	}
	if readErr != nil {
		return internalError(fmt.Errorf("failed to read downloader output: %w", readErr))
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			run.ExitCode = exitErr.ExitCode()
			return exitError(run.ExitCode, waitErr)
		}
		return internalError(waitErr)
	}
	run.ExitCode = 0

	if req.Mode == ModePlaylist {
		path, err := Finalize(playlistsRoot, before, r.builder.ListingExt())
		if err != nil {
			logger.Warn("listing generation failed", "err", err)
			e.send(listingFailedEvent(finalizerError(err)))
		} else {
			run.ListingPath = path
			e.send(listingEvent(path))
		}
	}

	return nil
}

// relay forwards each output line with the running counters, pacing the stream
// by lineDelay.
func (r *Runner) relay(ctx context.Context, rd io.Reader, e emitter, run *Run) error {
	var limiter *rate.Limiter
	if r.lineDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(r.lineDelay), 1)
	}

	var counter Counter
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	sc.Split(scanLines)
	for sc.Scan() {
		line := sc.Text()
		run.Stats = counter.Observe(line)
		if !e.send(lineEvent(line, run.Stats)) {
			return nil
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}
	}
	return sc.Err()
}

func (r *Runner) recordStart(ctx context.Context, logger *log.Logger, run Run) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordStart(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to record download start", "err", err)
	}
}

func (r *Runner) recordFinish(ctx context.Context, logger *log.Logger, run Run) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.RecordFinish(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to record download result", "err", err)
	}
}
