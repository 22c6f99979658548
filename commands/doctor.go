package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/symfony-cli/console"

	"github.com/dkarlovi/podcastfy/internal/deps"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/settings"
)

var doctorCmd = &console.Command{
	Name:  "doctor",
	Usage: "Report which external tools and credentials a generate run needs",
	Action: func(c *console.Context) error {
		s, _, err := loadEnv(os.Stderr)
		if err != nil {
			return exit(err)
		}
		return exit(runDoctor(s, stdout(c)))
	},
}

func requirements(s settings.Settings) []deps.Requirement {
	return []deps.Requirement{
		deps.FFmpeg,
		{Name: "ffprobe", Command: s.FFprobe, Description: "MP3 duration probe", Optional: s.Probe != settings.ProbeFFprobe},
		{Name: "python", Command: s.Python, Description: "creates the virtualenv"},
		{Name: "venv python", Command: s.VenvPython(), Description: "created on the first generate run", Optional: true},
		{Name: "edge-tts", Command: s.EdgeTTS(), Description: "fallback synthesizer, installed with podcastfy", Optional: true},
	}
}

// credentials reports the environment variables a run reads secrets from.
func credentials(s settings.Settings) []deps.Status {
	statuses := []deps.Status{
		envStatus(s.APIKeyLabel, "LLM API key", s.APIKey),
	}
	if s.Fallback == settings.FallbackElevenLabs {
		statuses = append(statuses, envStatus("ELEVENLABS_API_KEY", "ElevenLabs fallback key", s.ElevenLabs.APIKey))
	}
	return statuses
}

func envStatus(name, description, value string) deps.Status {
	st := deps.Status{Requirement: deps.Requirement{Name: name, Description: description}}
	if strings.TrimSpace(value) == "" {
		st.Detail = "environment variable not set"
		return st
	}
	st.Available = true
	return st
}

func runDoctor(s settings.Settings, stdout io.Writer) error {
	statuses := append(deps.CheckBinaries(requirements(s)), credentials(s)...)

	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		state, detail := "ok", st.Description
		if !st.Available {
			state, detail = "missing", st.Detail
			if st.Optional {
				state = "optional"
			}
		}
		command := st.Resolved
		if command == "" {
			command = st.Command
		}
		rows = append(rows, []string{st.Name, command, state, detail})
	}
	if _, err := fmt.Fprintln(stdout, renderTable([]string{"Dependency", "Command", "Status", "Detail"}, rows)); err != nil {
		return err
	}
	if missing := deps.Missing(statuses); len(missing) > 0 {
		return faults.Wrap(faults.ErrPrerequisite, "", "", "missing: "+strings.Join(missing, ", "), nil)
	}
	return nil
}
