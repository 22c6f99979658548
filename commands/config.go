package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/symfony-cli/console"

	"github.com/dkarlovi/podcastfy/internal/conversation"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/settings"
)

var configRenderCmd = &console.Command{
	Category: "config",
	Name:     "render",
	Usage:    "Write the conversation config a generate run would use, without running it",
	Flags:    []console.Flag{outFlag},
	Action: func(c *console.Context) error {
		s, _, err := loadEnv(os.Stderr)
		if err != nil {
			return exit(err)
		}
		return exit(runConfigRender(s, c.String("out"), stdout(c)))
	},
}

func runConfigRender(s settings.Settings, out string, stdout io.Writer) error {
	layout, err := layoutFor(out, s)
	if err != nil {
		return err
	}
	doc := conversation.Build(conversation.Options{
		Mode:          conversation.ParseMode(s.Language),
		VoiceQuestion: s.VoiceQuestion,
		VoiceAnswer:   s.VoiceAnswer,
	}, layout)
	path, err := conversation.Write(doc, layout)
	if err != nil {
		return faults.Wrap(faults.ErrConfiguration, "", "conversation config", "", err)
	}
	_, err = fmt.Fprintln(stdout, path)
	return err
}
