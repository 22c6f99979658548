package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/symfony-cli/console"

	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/history"
	"github.com/dkarlovi/podcastfy/internal/settings"
)

var historyCmd = &console.Command{
	Name:  "history",
	Usage: "List recent generate runs recorded in the output directory",
	Flags: []console.Flag{
		outFlag,
		&console.IntFlag{Name: "limit", DefaultValue: 20, Usage: "Number of runs to show"},
	},
	Action: func(c *console.Context) error {
		s, _, err := loadEnv(os.Stderr)
		if err != nil {
			return exit(err)
		}
		return exit(runHistory(context.Background(), s, c.String("out"), c.Int("limit"), stdout(c)))
	},
}

func runHistory(ctx context.Context, s settings.Settings, out string, limit int, stdout io.Writer) error {
	layout, err := layoutFor(out, s)
	if err != nil {
		return err
	}
	if _, err := os.Stat(layout.HistoryPath()); err != nil {
		_, err = fmt.Fprintf(stdout, "No runs recorded under %s\n", layout.Root)
		return err
	}

	store, err := history.Open(ctx, layout.HistoryPath())
	if err != nil {
		return faults.Wrap(faults.ErrConfiguration, "", "history", "", err)
	}
	defer store.Close()
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return faults.Wrap(faults.ErrConfiguration, "", "history", "", err)
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.Time(run.StartedAt),
			string(run.Status),
			runDuration(run),
			strconv.FormatBool(run.Fallback),
			sources(run.URLs),
			resultColumn(run),
		})
	}
	table := renderTable(
		[]string{"Run", "Started", "Status", "Took", "Fallback", "URLs", "Result"},
		rows,
		4,
	)
	_, err = fmt.Fprintln(stdout, table)
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run history.Run) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}

func sources(urls []string) string {
	switch len(urls) {
	case 0:
		return ""
	case 1:
		return urls[0]
	default:
		return fmt.Sprintf("%s (+%d)", urls[0], len(urls)-1)
	}
}

func resultColumn(run history.Run) string {
	if run.Error != "" {
		return run.Error
	}
	return run.Output
}
