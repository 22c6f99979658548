// Package pipeline drives one podcast run through its stages:
//
//	PREPARE → CONFIGURE → GENERATE → VALIDATE → SUCCESS
//	                                         ↘ FALLBACK_SYNTH → VALIDATE2 → SUCCESS | FATAL
//
// No stage is revisited and every failure ends the run.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dkarlovi/podcastfy/internal/artifact"
	"github.com/dkarlovi/podcastfy/internal/conversation"
	"github.com/dkarlovi/podcastfy/internal/fallback"
	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/generation"
	"github.com/dkarlovi/podcastfy/internal/media"
	"github.com/dkarlovi/podcastfy/internal/settings"
)

// Stage names a state of the run.
type Stage string

const (
	StagePrepare   Stage = "prepare"
	StageConfigure Stage = "configure"
	StageGenerate  Stage = "generate"
	StageValidate  Stage = "validate"
	StageFallback  Stage = "fallback"
	StageValidate2 Stage = "validate2"
)

// Preparer readies the runtime environment.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Generator runs the generation library.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (generation.Result, error)
}

// Validator checks a produced MP3.
type Validator interface {
	Validate(ctx context.Context, path string) media.Report
}

// Options are the per-invocation inputs.
type Options struct {
	URLs     []string
	Longform bool
	Layout   artifact.Layout
}

// Outcome describes a successful run.
type Outcome struct {
	Path       string
	Transcript string
	Fallback   bool
	Primary    media.Report
	Final      media.Report
}

// Pipeline wires the stage implementations together.
type Pipeline struct {
	settings  settings.Settings
	preparer  Preparer
	generator Generator
	validator Validator
	synth     fallback.Synthesizer
	logger    *slog.Logger
}

// New returns a Pipeline.
func New(s settings.Settings, preparer Preparer, generator Generator, validator Validator, synth fallback.Synthesizer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		settings:  s,
		preparer:  preparer,
		generator: generator,
		validator: validator,
		synth:     synth,
		logger:    logger,
	}
}

// CheckInputs validates the arguments that must be right before anything
// touches the filesystem.
func CheckInputs(s settings.Settings, urls []string) error {
	if len(urls) == 0 {
		return faults.Wrap(faults.ErrConfiguration, "", "", "Provide at least one --url", nil)
	}
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			return faults.Wrap(faults.ErrConfiguration, "", "", "--url must not be empty", nil)
		}
	}
	if strings.TrimSpace(s.APIKey) == "" {
		return faults.Wrap(faults.ErrPrerequisite, "", "", "Missing "+s.APIKeyLabel+" environment variable", nil)
	}
	return nil
}

// Run executes every stage in order.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Outcome, error) {
	if err := p.Prepare(ctx, opts.URLs); err != nil {
		return Outcome{}, err
	}
	return p.Produce(ctx, opts)
}

// Prepare checks the inputs and readies the environment. Nothing under the
// output directory is touched.
func (p *Pipeline) Prepare(ctx context.Context, urls []string) error {
	if err := CheckInputs(p.settings, urls); err != nil {
		return err
	}
	p.enter(StagePrepare)
	return p.preparer.Prepare(ctx)
}

// Produce runs the stages after PREPARE, which must have succeeded.
func (p *Pipeline) Produce(ctx context.Context, opts Options) (Outcome, error) {
	layout := opts.Layout

	p.enter(StageConfigure)
	req, err := p.configure(opts)
	if err != nil {
		return Outcome{}, err
	}

	p.enter(StageGenerate)
	result, err := p.generator.Generate(ctx, req)
	if err != nil {
		return Outcome{}, err
	}
	mp3, err := artifact.Newest(layout.AudioDir(), "*.mp3")
	if err != nil {
		return Outcome{}, faults.Wrap(faults.ErrMissingArtifact, string(StageGenerate), "audio", "list audio directory", err)
	}
	if mp3 == "" {
		return Outcome{}, faults.Wrap(faults.ErrMissingArtifact, string(StageGenerate), "audio", "No MP3 produced under: "+layout.AudioDir(), nil)
	}
	if result.AudioFile != "" && result.AudioFile != mp3 {
		p.logger.Debug("library reported a different file than the newest mp3", "reported", result.AudioFile, "newest", mp3)
	}

	p.enter(StageValidate)
	outcome := Outcome{Path: mp3}
	outcome.Primary = p.validator.Validate(ctx, mp3)
	outcome.Transcript, _ = artifact.Newest(layout.TranscriptsDir(), "*.txt")
	if outcome.Primary.Valid {
		outcome.Final = outcome.Primary
		if outcome.Transcript == "" {
			p.logger.Warn("mp3 is valid but no transcript was produced", "dir", layout.TranscriptsDir())
		}
		return outcome, nil
	}

	p.enter(StageFallback)
	if outcome.Transcript == "" {
		return Outcome{}, faults.Wrap(faults.ErrMissingArtifact, string(StageFallback), "transcript", "MP3 appears invalid and no transcript found under: "+layout.TranscriptsDir(), nil)
	}
	fixed := layout.FixedPath(mp3)
	p.logger.Info("primary mp3 invalid, re-synthesizing from transcript", "mp3", mp3, "reason", outcome.Primary.Reason, "transcript", outcome.Transcript)
	if err := p.synth.Synthesize(ctx, fallback.Request{Transcript: outcome.Transcript, Output: fixed, TempDir: layout.TempDir()}); err != nil {
		return Outcome{}, err
	}

	p.enter(StageValidate2)
	outcome.Fallback = true
	outcome.Path = fixed
	outcome.Final = p.validator.Validate(ctx, fixed)
	if !outcome.Final.Valid {
		return outcome, faults.Wrap(faults.ErrValidation, string(StageValidate2), "", "Fallback MP3 still invalid: "+fixed+" ("+outcome.Final.Reason+")", nil)
	}
	return outcome, nil
}

func (p *Pipeline) configure(opts Options) (generation.Request, error) {
	doc := conversation.Build(conversation.Options{
		Mode:          conversation.ParseMode(p.settings.Language),
		VoiceQuestion: p.settings.VoiceQuestion,
		VoiceAnswer:   p.settings.VoiceAnswer,
	}, opts.Layout)
	path, err := conversation.Write(doc, opts.Layout)
	if err != nil {
		return generation.Request{}, faults.Wrap(faults.ErrConfiguration, string(StageConfigure), "conversation config", "", err)
	}
	p.logger.Info("wrote conversation config", "path", path, "language", doc.OutputLanguage)

	secondary := p.settings.SecondaryConfig()
	if secondary != "" {
		if err := conversation.CheckYAML(secondary); err != nil {
			return generation.Request{}, faults.Wrap(faults.ErrConfiguration, string(StageConfigure), "config", "", err)
		}
		p.logger.Info("passing through config", "path", secondary)
	}

	return generation.Request{
		URLs:               opts.URLs,
		Longform:           opts.Longform,
		Model:              p.settings.LLMModel,
		APIKeyLabel:        p.settings.APIKeyLabel,
		ConversationConfig: path,
		Config:             secondary,
	}, nil
}

func (p *Pipeline) enter(stage Stage) {
	p.logger.Debug("entering stage", "stage", string(stage))
}
