package fallback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dkarlovi/podcastfy/internal/conversation"
	"github.com/dkarlovi/podcastfy/internal/deps"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/process"
	"github.com/dkarlovi/podcastfy/internal/settings"
	"github.com/dkarlovi/podcastfy/internal/transcript"
)

// Edge synthesises with the edge-tts client installed in the virtualenv.
type Edge struct {
	binary string
	voice  string
	logger *slog.Logger
	output io.Writer
}

// NewEdge returns an edge-tts synthesizer. An empty voice leaves the choice
// to edge-tts.
func NewEdge(binary, voice string, logger *slog.Logger, output io.Writer) *Edge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Edge{binary: binary, voice: voice, logger: logger, output: output}
}

// edgeVoice picks a single voice for the whole transcript. Bilingual
// transcripts mix languages, so no voice is forced for them.
func edgeVoice(s settings.Settings) string {
	mode := conversation.ParseMode(s.Language)
	if mode == conversation.ModeBilingual {
		return ""
	}
	return conversation.ResolveVoices(conversation.Options{
		Mode:          mode,
		VoiceQuestion: s.VoiceQuestion,
		VoiceAnswer:   s.VoiceAnswer,
	}).Question
}

// Synthesize strips speaker tags from the transcript and runs edge-tts on
// the result.
func (e *Edge) Synthesize(ctx context.Context, req Request) error {
	if status := deps.Check(deps.Requirement{Name: "edge-tts", Command: e.binary}); !status.Available {
		return faults.Wrap(faults.ErrPrerequisite, stage, "edge-tts", "edge-tts not found in venv; expected at: "+e.binary, nil)
	}

	turns, err := transcript.ReadFile(req.Transcript)
	if err != nil {
		return faults.Wrap(faults.ErrMissingArtifact, stage, "transcript", "read transcript", err)
	}
	if len(turns) == 0 {
		return faults.Wrap(faults.ErrValidation, stage, "transcript", req.Transcript+" is empty", nil)
	}

	textPath, err := writePlainText(req, turns)
	if err != nil {
		return faults.Wrap(faults.ErrConfiguration, stage, "transcript", "write plain text", err)
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return faults.Wrap(faults.ErrConfiguration, stage, "output", "create output directory", err)
	}

	args := []string{"-f", textPath, "--write-media", req.Output}
	if e.voice != "" {
		args = append(args, "--voice", e.voice)
	}
	e.logger.Info("synthesizing with edge-tts", "transcript", req.Transcript, "output", req.Output, "voice", e.voice)
	if err := process.Run(ctx, e.logger, process.Command{Name: e.binary, Args: args, Stdout: e.output, Stderr: e.output}); err != nil {
		return faults.Wrap(faults.ErrSubprocess, stage, "edge-tts", "synthesis failed", err)
	}
	return nil
}

func writePlainText(req Request, turns []transcript.Turn) (string, error) {
	dir := req.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(req.Transcript)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	path := filepath.Join(dir, fmt.Sprintf("%s.plain.txt", stem))
	if err := os.WriteFile(path, []byte(transcript.PlainText(turns)), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
