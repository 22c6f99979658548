package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/symfony-cli/console"

	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/media"
	"github.com/dkarlovi/podcastfy/internal/pipeline"
)

var validateCmd = &console.Command{
	Name:  "validate",
	Usage: "Check that an MP3 is large enough and has a playable duration",
	Args: console.ArgDefinition{
		{Name: "file", Description: "MP3 file to check"},
	},
	Action: func(c *console.Context) error {
		s, logger, err := loadEnv(os.Stderr)
		if err != nil {
			return exit(err)
		}
		validator := media.NewValidator(newProber(s), logger)
		return exit(runValidate(context.Background(), validator, c.Args().Get("file"), stdout(c)))
	},
}

func runValidate(ctx context.Context, validator pipeline.Validator, path string, stdout io.Writer) error {
	if path == "" {
		return faults.Wrap(faults.ErrConfiguration, "", "", "Provide the MP3 file to validate", nil)
	}
	report := validator.Validate(ctx, path)
	if !report.Valid {
		return faults.Wrap(faults.ErrValidation, "", "", "MP3 invalid: "+path+" ("+report.Reason+")", nil)
	}
	duration := time.Duration(report.Duration * float64(time.Second)).Round(time.Millisecond)
	_, err := fmt.Fprintf(stdout, "%s: ok, %s, %s\n", path, humanize.Bytes(uint64(report.Size)), duration)
	return err
}
