package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/symfony-cli/console"

	"github.com/dkarlovi/podcastfy/internal/fallback"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/media"
	"github.com/dkarlovi/podcastfy/internal/pipeline"
)

var synthesizeCmd = &console.Command{
	Name:  "synthesize",
	Usage: "Synthesize an MP3 from an existing transcript with the fallback backend",
	Flags: []console.Flag{
		&console.StringFlag{Name: "transcript", Usage: "Transcript with <Person1>/<Person2> turns"},
		&console.StringFlag{Name: "output", Usage: "MP3 file to write"},
	},
	Action: func(c *console.Context) error {
		s, logger, err := loadEnv(os.Stderr)
		if err != nil {
			return exit(err)
		}
		synth, err := fallback.New(s, logger, os.Stderr)
		if err != nil {
			return exit(faults.Wrap(faults.ErrConfiguration, "", "fallback", "", err))
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		validator := media.NewValidator(newProber(s), logger)
		return exit(runSynthesize(ctx, synth, validator, c.String("transcript"), c.String("output"), stdout(c)))
	},
}

func runSynthesize(ctx context.Context, synth fallback.Synthesizer, validator pipeline.Validator, transcriptPath, output string, stdout io.Writer) error {
	if transcriptPath == "" || output == "" {
		return faults.Wrap(faults.ErrConfiguration, "", "", "Provide both --transcript and --output", nil)
	}
	if _, err := os.Stat(transcriptPath); err != nil {
		return faults.Wrap(faults.ErrMissingArtifact, "", "transcript", "", err)
	}
	output, err := filepath.Abs(output)
	if err != nil {
		return faults.Wrap(faults.ErrConfiguration, "", "output", "", err)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return faults.Wrap(faults.ErrConfiguration, "", "output", "", err)
	}

	if err := synth.Synthesize(ctx, fallback.Request{Transcript: transcriptPath, Output: output}); err != nil {
		return err
	}
	report := validator.Validate(ctx, output)
	if !report.Valid {
		return faults.Wrap(faults.ErrValidation, "", "", "Synthesized MP3 invalid: "+output+" ("+report.Reason+")", nil)
	}
	_, err = fmt.Fprintln(stdout, output)
	return err
}
