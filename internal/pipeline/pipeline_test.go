package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarlovi/podcastfy/internal/artifact"
	"github.com/dkarlovi/podcastfy/internal/conversation"
	"github.com/dkarlovi/podcastfy/internal/fallback"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/generation"
	"github.com/dkarlovi/podcastfy/internal/media"
	"github.com/dkarlovi/podcastfy/internal/process"
	"github.com/dkarlovi/podcastfy/internal/settings"
)

type fakePreparer struct {
	err   error
	calls int
}

func (f *fakePreparer) Prepare(context.Context) error {
	f.calls++
	return f.err
}

// fakeGenerator drops the configured files into the layout like podcastfy would.
type fakeGenerator struct {
	layout     artifact.Layout
	mp3Size    int
	transcript string
	err        error
	got        generation.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req generation.Request) (generation.Result, error) {
	f.got = req
	if f.err != nil {
		return generation.Result{}, f.err
	}
	var result generation.Result
	if f.mp3Size > 0 {
		result.AudioFile = filepath.Join(f.layout.AudioDir(), "podcast_1.mp3")
		if err := os.WriteFile(result.AudioFile, make([]byte, f.mp3Size), 0o644); err != nil {
			return generation.Result{}, err
		}
	}
	if f.transcript != "" {
		path := filepath.Join(f.layout.TranscriptsDir(), "transcript_1.txt")
		if err := os.WriteFile(path, []byte(f.transcript), 0o644); err != nil {
			return generation.Result{}, err
		}
	}
	return result, nil
}

// sizeValidator stands in for media.Validator using only the size rule.
type sizeValidator struct {
	checked []string
}

func (v *sizeValidator) Validate(_ context.Context, path string) media.Report {
	v.checked = append(v.checked, path)
	report := media.Report{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		report.Reason = "file does not exist"
		return report
	}
	report.Size = info.Size()
	report.Valid = info.Size() >= media.MinSizeBytes
	if !report.Valid {
		report.Reason = "too small"
	}
	return report
}

type fakeSynth struct {
	size int
	err  error
	got  *fallback.Request
}

func (f *fakeSynth) Synthesize(_ context.Context, req fallback.Request) error {
	f.got = &req
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(req.Output, make([]byte, f.size), 0o644)
}

type harness struct {
	layout    artifact.Layout
	settings  settings.Settings
	preparer  *fakePreparer
	generator *fakeGenerator
	validator *sizeValidator
	synth     *fakeSynth
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	layout := artifact.Layout{Root: filepath.Join(t.TempDir(), "output")}
	return &harness{
		layout: layout,
		settings: settings.Settings{
			APIKeyLabel: "GEMINI_API_KEY",
			APIKey:      "key",
			LLMModel:    "gemini-1.5-flash",
			Language:    "bilingual",
			Home:        t.TempDir(),
		},
		preparer:  &fakePreparer{},
		generator: &fakeGenerator{layout: layout},
		validator: &sizeValidator{},
		synth:     &fakeSynth{},
	}
}

func (h *harness) run() (Outcome, error) {
	p := New(h.settings, h.preparer, h.generator, h.validator, h.synth, nil)
	return p.Run(context.Background(), Options{URLs: []string{"https://example.com/a"}, Longform: true, Layout: h.layout})
}

func TestRunValidPrimary(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 20_000
	h.generator.transcript = "<Person1>Hi</Person1>"

	outcome, err := h.run()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(h.layout.AudioDir(), "podcast_1.mp3"), outcome.Path)
	assert.False(t, outcome.Fallback)
	assert.Nil(t, h.synth.got)

	assert.Equal(t, []string{"https://example.com/a"}, h.generator.got.URLs)
	assert.True(t, h.generator.got.Longform)
	assert.Equal(t, h.layout.ConfigPath(), h.generator.got.ConversationConfig)
	assert.Empty(t, h.generator.got.Config)

	doc, err := conversation.Load(h.layout.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "zh-CN-YunxiNeural", doc.TextToSpeech.Edge.DefaultVoices.Answer)
}

func TestRunValidPrimaryWithoutTranscript(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 20_000

	outcome, err := h.run()

	require.NoError(t, err)
	assert.Empty(t, outcome.Transcript)
	assert.False(t, outcome.Fallback)
}

func TestRunFallbackSucceeds(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 261
	h.generator.transcript = "<Person1>Hi</Person1>"
	h.synth.size = 50_000

	outcome, err := h.run()

	require.NoError(t, err)
	fixed := filepath.Join(h.layout.AudioDir(), "podcast_1_fixed.mp3")
	assert.Equal(t, fixed, outcome.Path)
	assert.True(t, outcome.Fallback)
	assert.False(t, outcome.Primary.Valid)
	assert.True(t, outcome.Final.Valid)
	require.NotNil(t, h.synth.got)
	assert.Equal(t, filepath.Join(h.layout.TranscriptsDir(), "transcript_1.txt"), h.synth.got.Transcript)
	assert.Equal(t, h.layout.TempDir(), h.synth.got.TempDir)
	assert.Len(t, h.validator.checked, 2)
}

func TestRunFallbackStillInvalid(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 261
	h.generator.transcript = "<Person1>Hi</Person1>"
	h.synth.size = 100

	_, err := h.run()

	require.Error(t, err)
	assert.ErrorIs(t, err, faults.ErrValidation)
	assert.Contains(t, err.Error(), "Fallback MP3 still invalid")
	assert.Len(t, h.validator.checked, 2)
}

func TestRunFallbackWithoutTranscript(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 261

	_, err := h.run()

	assert.ErrorIs(t, err, faults.ErrMissingArtifact)
	assert.ErrorContains(t, err, "no transcript found under")
	assert.Nil(t, h.synth.got)
}

func TestRunFallbackSynthesisFails(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 261
	h.generator.transcript = "<Person1>Hi</Person1>"
	h.synth.err = faults.Wrap(faults.ErrPrerequisite, "fallback", "edge-tts", "edge-tts not found in venv", nil)

	_, err := h.run()

	assert.ErrorIs(t, err, faults.ErrPrerequisite)
	assert.Len(t, h.validator.checked, 1)
}

func TestRunNoMP3(t *testing.T) {
	h := newHarness(t)

	_, err := h.run()

	assert.ErrorIs(t, err, faults.ErrMissingArtifact)
	assert.ErrorContains(t, err, "No MP3 produced under")
}

func TestRunPicksNewestMP3(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 20_000
	require.NoError(t, h.layout.Ensure())
	stale := filepath.Join(h.layout.AudioDir(), "zz_stale.mp3")
	require.NoError(t, os.WriteFile(stale, make([]byte, 20_000), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	outcome, err := h.run()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(h.layout.AudioDir(), "podcast_1.mp3"), outcome.Path)
}

func TestRunGenerationFailurePropagatesExitCode(t *testing.T) {
	h := newHarness(t)
	h.generator.err = faults.Wrap(faults.ErrSubprocess, "generate", "podcastfy", "generation failed", &process.ExitError{Name: "python", Code: 3})

	_, err := h.run()

	require.Error(t, err)
	assert.Equal(t, 3, faults.ExitCode(err))
}

func TestRunPrepareFailureStopsEarly(t *testing.T) {
	h := newHarness(t)
	h.preparer.err = errors.New("no ffmpeg")

	_, err := h.run()

	require.Error(t, err)
	assert.NoDirExists(t, h.layout.Root)
}

func TestPrepareThenProduce(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 20_000
	p := New(h.settings, h.preparer, h.generator, h.validator, h.synth, nil)

	require.NoError(t, p.Prepare(context.Background(), []string{"https://example.com/a"}))
	assert.Equal(t, 1, h.preparer.calls)
	assert.NoDirExists(t, h.layout.Root)

	outcome, err := p.Produce(context.Background(), Options{URLs: []string{"https://example.com/a"}, Layout: h.layout})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(h.layout.AudioDir(), "podcast_1.mp3"), outcome.Path)
	assert.Equal(t, 1, h.preparer.calls)
}

func TestRunFindsArtifactsUnderGlobLikeRoot(t *testing.T) {
	h := newHarness(t)
	h.layout = artifact.Layout{Root: filepath.Join(t.TempDir(), "shows[*]?")}
	h.generator.layout = h.layout
	h.generator.mp3Size = 261
	h.generator.transcript = "<Person1>Hi</Person1>"
	h.synth.size = 50_000

	outcome, err := h.run()

	require.NoError(t, err)
	assert.True(t, outcome.Fallback)
	assert.Equal(t, filepath.Join(h.layout.TranscriptsDir(), "transcript_1.txt"), outcome.Transcript)
}

func TestRunPassesSecondaryConfig(t *testing.T) {
	h := newHarness(t)
	h.generator.mp3Size = 20_000
	cfg := filepath.Join(h.settings.Home, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("website_extractor:\n  timeout: 60\n"), 0o644))

	_, err := h.run()

	require.NoError(t, err)
	assert.Equal(t, cfg, h.generator.got.Config)
}

func TestRunRejectsMalformedSecondaryConfig(t *testing.T) {
	h := newHarness(t)
	cfg := filepath.Join(h.settings.Home, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("a: [broken\n"), 0o644))

	_, err := h.run()

	assert.ErrorIs(t, err, faults.ErrConfiguration)
}

func TestCheckInputs(t *testing.T) {
	s := settings.Settings{APIKeyLabel: "GEMINI_API_KEY", APIKey: "k"}

	err := CheckInputs(s, nil)
	assert.ErrorIs(t, err, faults.ErrConfiguration)
	assert.Equal(t, "Provide at least one --url", faults.Message(err))

	s.APIKey = ""
	err = CheckInputs(s, []string{"https://a"})
	assert.ErrorIs(t, err, faults.ErrPrerequisite)
	assert.Equal(t, "Missing GEMINI_API_KEY environment variable", faults.Message(err))

	s.APIKey = "k"
	assert.NoError(t, CheckInputs(s, []string{"https://a"}))
}

func TestRunWithoutURLsTouchesNothing(t *testing.T) {
	h := newHarness(t)
	p := New(h.settings, h.preparer, h.generator, h.validator, h.synth, nil)

	_, err := p.Run(context.Background(), Options{Layout: h.layout})

	require.Error(t, err)
	assert.Zero(t, h.preparer.calls)
	assert.NoDirExists(t, h.layout.Root)
}
