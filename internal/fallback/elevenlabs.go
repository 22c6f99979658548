package fallback

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haguro/elevenlabs-go"

	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/media"
	"github.com/dkarlovi/podcastfy/internal/settings"
	"github.com/dkarlovi/podcastfy/internal/transcript"
)

// speakFunc synthesises one utterance and returns MP3 bytes with the id of
// the request that produced them.
type speakFunc func(ctx context.Context, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, string, error)

// maxStitched is how many previous request ids ElevenLabs accepts for
// prosody continuity.
const maxStitched = 3

// ElevenLabs synthesises each transcript turn with the speaker's voice and
// concatenates the MP3 segments. A WebVTT captions file is written next to
// the output when every segment could be measured.
type ElevenLabs struct {
	cfg    settings.ElevenLabs
	logger *slog.Logger
	speak  speakFunc
}

// NewElevenLabs returns an ElevenLabs synthesizer.
func NewElevenLabs(cfg settings.ElevenLabs, logger *slog.Logger) *ElevenLabs {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &ElevenLabs{cfg: cfg, logger: logger}
	e.speak = e.speakWithClient
	return e
}

func (e *ElevenLabs) speakWithClient(ctx context.Context, voiceID string, req elevenlabs.TextToSpeechRequest) ([]byte, string, error) {
	client := elevenlabs.NewClient(ctx, e.cfg.APIKey, 30*time.Second)
	return client.TextToSpeechWithRequestID(voiceID, req)
}

// Synthesize implements Synthesizer.
func (e *ElevenLabs) Synthesize(ctx context.Context, req Request) error {
	if strings.TrimSpace(e.cfg.APIKey) == "" {
		return faults.Wrap(faults.ErrPrerequisite, stage, "elevenlabs", "ELEVENLABS_API_KEY is not set", nil)
	}
	if e.cfg.VoiceQuestion == "" || e.cfg.VoiceAnswer == "" {
		return faults.Wrap(faults.ErrPrerequisite, stage, "elevenlabs", "PODCASTFY_ELEVENLABS_VOICE_Q and PODCASTFY_ELEVENLABS_VOICE_A must both be set", nil)
	}

	turns, err := transcript.ReadFile(req.Transcript)
	if err != nil {
		return faults.Wrap(faults.ErrMissingArtifact, stage, "transcript", "read transcript", err)
	}
	if len(turns) == 0 {
		return faults.Wrap(faults.ErrValidation, stage, "transcript", req.Transcript+" is empty", nil)
	}

	var (
		audio    bytes.Buffer
		cues     = make([]Cue, 0, len(turns))
		offset   time.Duration
		measured = true
		previous []string
	)
	for i, turn := range turns {
		voice := e.cfg.VoiceQuestion
		if turn.Speaker == transcript.Person2 {
			voice = e.cfg.VoiceAnswer
		}
		req := elevenlabs.TextToSpeechRequest{
			Text:    turn.Text,
			ModelID: e.cfg.Model,
			VoiceSettings: &elevenlabs.VoiceSettings{
				SpeakerBoost: true,
			},
			PreviousRequestIds: append([]string(nil), previous...),
		}
		if i+1 < len(turns) {
			req.NextText = turns[i+1].Text
		}
		e.logger.Debug("speaking turn", "index", i, "speaker", turn.Speaker, "voice", voice)
		segment, id, err := e.speak(ctx, voice, req)
		if err != nil {
			return faults.Wrap(faults.ErrSubprocess, stage, "elevenlabs", "text to speech", err)
		}
		audio.Write(segment)
		if id != "" {
			previous = append(previous, id)
			if len(previous) > maxStitched {
				previous = previous[len(previous)-maxStitched:]
			}
		}

		if !measured {
			continue
		}
		length, err := media.MeasureMP3(bytes.NewReader(segment))
		if err != nil {
			e.logger.Warn("cannot measure segment; skipping captions", "index", i, "error", err)
			measured = false
			continue
		}
		cues = append(cues, Cue{Speaker: string(turn.Speaker), Text: turn.Text, Start: offset, End: offset + length})
		offset += length
	}

	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return faults.Wrap(faults.ErrConfiguration, stage, "output", "create output directory", err)
	}
	if err := os.WriteFile(req.Output, audio.Bytes(), 0o644); err != nil {
		return faults.Wrap(faults.ErrConfiguration, stage, "output", "write mp3", err)
	}
	e.logger.Info("wrote elevenlabs audio", "output", req.Output, "turns", len(turns))

	if measured {
		captions := CaptionsPath(req.Output)
		if err := WriteCaptions(captions, cues); err != nil {
			e.logger.Warn("write captions failed", "path", captions, "error", err)
		}
	}
	return nil
}
