// Package settings reads the environment-sourced parameters of a podcast run.
//
// Settings are parsed once at process start and passed explicitly to every
// component; nothing in the module reads these variables on its own.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	ProbeFFprobe = "ffprobe"
	ProbeDecoder = "decoder"

	FallbackEdge       = "edge"
	FallbackElevenLabs = "elevenlabs"
)

// Settings holds every tunable the CLI understands.
type Settings struct {
	APIKeyLabel string `env:"PODCASTFY_API_KEY_LABEL" envDefault:"GEMINI_API_KEY"`
	LLMModel    string `env:"PODCASTFY_LLM_MODEL" envDefault:"gemini-1.5-flash"`
	Language    string `env:"PODCASTFY_LANGUAGE" envDefault:"English"`

	VoiceQuestion string `env:"PODCASTFY_EDGE_VOICE_Q"`
	VoiceAnswer   string `env:"PODCASTFY_EDGE_VOICE_A"`

	VenvDir    string `env:"PODCASTFY_VENV_DIR"`
	Python     string `env:"PODCASTFY_PYTHON" envDefault:"python3"`
	Home       string `env:"PODCASTFY_HOME"`
	ConfigFile string `env:"PODCASTFY_CONFIG"`

	Probe    string `env:"PODCASTFY_PROBE" envDefault:"ffprobe"`
	FFprobe  string `env:"PODCASTFY_FFPROBE" envDefault:"ffprobe"`
	Fallback string `env:"PODCASTFY_FALLBACK" envDefault:"edge"`

	ElevenLabs ElevenLabs

	LogLevel  string `env:"PODCASTFY_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"PODCASTFY_LOG_FORMAT" envDefault:"console"`
	History   bool   `env:"PODCASTFY_HISTORY" envDefault:"true"`

	// APIKey is the value of the variable named by APIKeyLabel.
	APIKey string
}

// ElevenLabs configures the optional ElevenLabs fallback backend.
type ElevenLabs struct {
	APIKey        string `env:"ELEVENLABS_API_KEY"`
	Model         string `env:"PODCASTFY_ELEVENLABS_MODEL" envDefault:"eleven_multilingual_v2"`
	VoiceQuestion string `env:"PODCASTFY_ELEVENLABS_VOICE_Q"`
	VoiceAnswer   string `env:"PODCASTFY_ELEVENLABS_VOICE_A"`
}

// Load parses settings from the process environment.
func Load() (Settings, error) {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			environ[key] = value
		}
	}
	return FromMap(environ)
}

// FromMap parses settings from an explicit environment.
func FromMap(environ map[string]string) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		return Settings{}, fmt.Errorf("parse environment: %w", err)
	}
	s.APIKeyLabel = strings.TrimSpace(s.APIKeyLabel)
	s.APIKey = environ[s.APIKeyLabel]
	s.Probe = strings.ToLower(strings.TrimSpace(s.Probe))
	s.Fallback = strings.ToLower(strings.TrimSpace(s.Fallback))

	if s.VenvDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Settings{}, fmt.Errorf("resolve home directory: %w", err)
		}
		s.VenvDir = filepath.Join(home, "venvs", "podcastfy-clawdbot")
	}
	if s.Home == "" {
		s.Home = executableHome()
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports every invalid value at once.
func (s Settings) Validate() error {
	var errs []error
	if s.APIKeyLabel == "" {
		errs = append(errs, errors.New("PODCASTFY_API_KEY_LABEL must not be empty"))
	}
	switch s.Probe {
	case ProbeFFprobe, ProbeDecoder:
	default:
		errs = append(errs, fmt.Errorf("PODCASTFY_PROBE %q is invalid; valid values: %s, %s", s.Probe, ProbeFFprobe, ProbeDecoder))
	}
	switch s.Fallback {
	case FallbackEdge, FallbackElevenLabs:
	default:
		errs = append(errs, fmt.Errorf("PODCASTFY_FALLBACK %q is invalid; valid values: %s, %s", s.Fallback, FallbackEdge, FallbackElevenLabs))
	}
	return errors.Join(errs...)
}

// VenvPython is the interpreter inside the isolated environment.
func (s Settings) VenvPython() string { return filepath.Join(s.VenvDir, "bin", "python") }

// VenvPip is the package installer inside the isolated environment.
func (s Settings) VenvPip() string { return filepath.Join(s.VenvDir, "bin", "pip") }

// EdgeTTS is the fallback TTS client inside the isolated environment.
func (s Settings) EdgeTTS() string { return filepath.Join(s.VenvDir, "bin", "edge-tts") }

// DefaultOutputDir is the output directory used when --out is not given.
func (s Settings) DefaultOutputDir() string { return filepath.Join(s.Home, "output") }

// SecondaryConfig returns the optional pass-through config file, or "" when
// none exists.
func (s Settings) SecondaryConfig() string {
	path := s.ConfigFile
	if path == "" {
		path = filepath.Join(s.Home, "config.yaml")
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return path
}

// executableHome is the parent of the directory holding the binary, which is
// where the tool keeps its output and optional config by default.
func executableHome() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe))
}
