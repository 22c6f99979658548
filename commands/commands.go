package commands

import (
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/symfony-cli/console"

	"github.com/dkarlovi/podcastfy/internal/artifact"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/logging"
	"github.com/dkarlovi/podcastfy/internal/media"
	"github.com/dkarlovi/podcastfy/internal/settings"
)

// All returns every command of the podcastfy application.
func All() []*console.Command {
	return []*console.Command{
		generateCmd,
		validateCmd,
		synthesizeCmd,
		configRenderCmd,
		doctorCmd,
		historyCmd,
	}
}

var outFlag = &console.StringFlag{
	Name:  "out",
	Usage: "Output directory (default: <install dir>/output)",
}

// loadEnv parses the environment and builds the stderr logger every command
// shares.
func loadEnv(stderr io.Writer) (settings.Settings, *slog.Logger, error) {
	s, err := settings.Load()
	if err != nil {
		return settings.Settings{}, nil, faults.Wrap(faults.ErrConfiguration, "", "settings", "", err)
	}
	logger, err := logging.New(logging.Options{Level: s.LogLevel, Format: s.LogFormat, Writer: stderr})
	if err != nil {
		return settings.Settings{}, nil, faults.Wrap(faults.ErrConfiguration, "", "settings", "", err)
	}
	return s, logger, nil
}

// stdout is where a command prints its result. Logs and child output stay
// on stderr.
func stdout(c *console.Context) io.Writer {
	return c.App.Writer
}

// exit turns err into the console exit error carrying its message and code.
func exit(err error) error {
	if err == nil {
		return nil
	}
	return console.Exit(faults.Message(err), faults.ExitCode(err))
}

func layoutFor(out string, s settings.Settings) (artifact.Layout, error) {
	if out == "" {
		out = s.DefaultOutputDir()
	}
	layout, err := artifact.NewLayout(out)
	if err != nil {
		return artifact.Layout{}, faults.Wrap(faults.ErrConfiguration, "", "out", "", err)
	}
	return layout, nil
}

func newProber(s settings.Settings) media.Prober {
	if s.Probe == settings.ProbeDecoder {
		return media.Decoder{}
	}
	return media.FFprobe{Binary: s.FFprobe}
}

// renderTable draws a rounded go-pretty table. rightAligned lists 1-based
// column numbers to align right.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(tableRow(headers))
	for _, row := range rows {
		tw.AppendRow(tableRow(row))
	}

	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, number := range rightAligned {
		configs = append(configs, table.ColumnConfig{Number: number, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func tableRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}
