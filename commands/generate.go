package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/symfony-cli/console"

	"github.com/dkarlovi/podcastfy/internal/artifact"
	"github.com/dkarlovi/podcastfy/internal/conversation"
	"github.com/dkarlovi/podcastfy/internal/fallback"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/generation"
	"github.com/dkarlovi/podcastfy/internal/history"
	"github.com/dkarlovi/podcastfy/internal/media"
	"github.com/dkarlovi/podcastfy/internal/pipeline"
	"github.com/dkarlovi/podcastfy/internal/settings"
	"github.com/dkarlovi/podcastfy/internal/venv"
)

var generateCmd = &console.Command{
	Name:  "generate",
	Usage: "Generate a podcast MP3 from one or more URLs",
	Description: `Prepares the Python environment, renders the conversation config and runs
podcastfy. A broken MP3 is re-synthesized from the transcript. On success the
final MP3 path is the only thing written to stdout.`,
	Flags: []console.Flag{
		&console.StringSliceFlag{Name: "url", Usage: "Source URL (repeatable)"},
		&console.BoolFlag{Name: "longform", Usage: "Ask for a long-form podcast"},
		outFlag,
		&console.StringFlag{Name: "config", Usage: "Pass-through podcastfy config file (overrides PODCASTFY_CONFIG)"},
	},
	Action: func(c *console.Context) error {
		s, logger, err := loadEnv(os.Stderr)
		if err != nil {
			return exit(err)
		}
		if cfg := c.String("config"); cfg != "" {
			s.ConfigFile = cfg
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := generateOptions{URLs: c.StringSlice("url"), Longform: c.Bool("longform"), Out: c.String("out")}
		return exit(runGenerate(ctx, s, logger, opts, stdout(c), os.Stderr))
	},
}

type generateOptions struct {
	URLs     []string
	Longform bool
	Out      string
}

// stages lets tests replace the components that shell out.
type stages struct {
	preparer  pipeline.Preparer
	generator pipeline.Generator
	validator pipeline.Validator
	synth     fallback.Synthesizer
}

func defaultStages(s settings.Settings, logger *slog.Logger, stderr io.Writer) (stages, error) {
	synth, err := fallback.New(s, logger, stderr)
	if err != nil {
		return stages{}, faults.Wrap(faults.ErrConfiguration, "", "fallback", "", err)
	}
	return stages{
		preparer:  venv.NewPreparer(s, logger, stderr),
		generator: generation.NewInvoker(s.VenvPython(), logger, stderr),
		validator: media.NewValidator(newProber(s), logger),
		synth:     synth,
	}, nil
}

var buildStages = defaultStages

func runGenerate(ctx context.Context, s settings.Settings, logger *slog.Logger, opts generateOptions, stdout, stderr io.Writer) error {
	if err := pipeline.CheckInputs(s, opts.URLs); err != nil {
		return err
	}
	layout, err := layoutFor(opts.Out, s)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	st, err := buildStages(s, logger, stderr)
	if err != nil {
		return err
	}
	p := pipeline.New(s, st.preparer, st.generator, st.validator, st.synth, logger)
	if err := p.Prepare(ctx, opts.URLs); err != nil {
		return err
	}

	if err := layout.Ensure(); err != nil {
		return faults.Wrap(faults.ErrConfiguration, "", "out", "", err)
	}
	lock := flock.New(layout.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return faults.Wrap(faults.ErrPrerequisite, "", "lock", "", err)
	}
	if !locked {
		return faults.Wrap(faults.ErrPrerequisite, "", "lock", "another podcastfy run is using "+layout.Root, nil)
	}
	defer func() { _ = lock.Unlock() }()

	logger.Info("starting podcast run", "out", layout.Root, "urls", len(opts.URLs), "longform", opts.Longform)
	ledger := openLedger(ctx, s, layout, logger)
	defer ledger.Close()
	run := history.Run{
		ID:        runID,
		StartedAt: time.Now(),
		URLs:      opts.URLs,
		Longform:  opts.Longform,
		Language:  conversation.ParseMode(s.Language).String(),
	}
	ledger.start(ctx, run)

	outcome, runErr := p.Produce(ctx, pipeline.Options{URLs: opts.URLs, Longform: opts.Longform, Layout: layout})

	run.FinishedAt = time.Now()
	run.Output = outcome.Path
	run.Fallback = outcome.Fallback
	run.Status = history.StatusSucceeded
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = faults.Message(runErr)
	}
	ledger.finish(context.WithoutCancel(ctx), run)

	if runErr != nil {
		return runErr
	}
	logger.Info("podcast ready", "path", outcome.Path, "fallback", outcome.Fallback)
	_, err = fmt.Fprintln(stdout, outcome.Path)
	return err
}

// ledger records runs when history is enabled. Ledger failures are logged
// and never fail the run.
type ledger struct {
	store   *history.Store
	started bool
	logger  *slog.Logger
}

func openLedger(ctx context.Context, s settings.Settings, layout artifact.Layout, logger *slog.Logger) *ledger {
	l := &ledger{logger: logger}
	if !s.History {
		return l
	}
	store, err := history.Open(ctx, layout.HistoryPath())
	if err != nil {
		logger.Warn("run history unavailable", "path", layout.HistoryPath(), "error", err)
		return l
	}
	l.store = store
	return l
}

func (l *ledger) start(ctx context.Context, run history.Run) {
	if l.store == nil {
		return
	}
	if err := l.store.Start(ctx, run); err != nil {
		l.logger.Warn("record run start", "error", err)
		return
	}
	l.started = true
}

func (l *ledger) finish(ctx context.Context, run history.Run) {
	if !l.started {
		return
	}
	if err := l.store.Finish(ctx, run); err != nil {
		l.logger.Warn("record run outcome", "error", err)
	}
}

func (l *ledger) Close() {
	if l.store == nil {
		return
	}
	if err := l.store.Close(); err != nil {
		l.logger.Warn("close run history", "error", err)
	}
}
