// Package fallback re-synthesises podcast audio straight from a transcript
// when the generation library produced a broken MP3.
package fallback

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dkarlovi/podcastfy/internal/settings"
)

const stage = "fallback"

// Request names the transcript to read and the MP3 to write.
type Request struct {
	Transcript string
	Output     string
	// TempDir receives intermediate files; the system temp dir when empty.
	TempDir string
}

// Synthesizer turns a transcript into an MP3 file.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) error
}

// New returns the synthesizer selected by s.Fallback.
func New(s settings.Settings, logger *slog.Logger, output io.Writer) (Synthesizer, error) {
	switch s.Fallback {
	case settings.FallbackEdge, "":
		return NewEdge(s.EdgeTTS(), edgeVoice(s), logger, output), nil
	case settings.FallbackElevenLabs:
		return NewElevenLabs(s.ElevenLabs, logger), nil
	default:
		return nil, fmt.Errorf("unknown fallback %q", s.Fallback)
	}
}
