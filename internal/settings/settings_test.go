package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapDefaults(t *testing.T) {
	s, err := FromMap(map[string]string{
		"GEMINI_API_KEY": "secret",
		"PODCASTFY_HOME": "/opt/skill",
	})
	require.NoError(t, err)

	assert.Equal(t, "GEMINI_API_KEY", s.APIKeyLabel)
	assert.Equal(t, "secret", s.APIKey)
	assert.Equal(t, "gemini-1.5-flash", s.LLMModel)
	assert.Equal(t, "English", s.Language)
	assert.Equal(t, ProbeFFprobe, s.Probe)
	assert.Equal(t, FallbackEdge, s.Fallback)
	assert.Equal(t, "eleven_multilingual_v2", s.ElevenLabs.Model)
	assert.True(t, s.History)
	assert.Equal(t, filepath.Join("/opt/skill", "output"), s.DefaultOutputDir())
	assert.Equal(t, "podcastfy-clawdbot", filepath.Base(s.VenvDir))
}

func TestFromMapLabelledKey(t *testing.T) {
	s, err := FromMap(map[string]string{
		"PODCASTFY_API_KEY_LABEL": "ANTHROPIC_AUTH_TOKEN",
		"ANTHROPIC_AUTH_TOKEN":    "tok",
		"GEMINI_API_KEY":          "ignored",
		"PODCASTFY_VENV_DIR":      "/tmp/venv",
	})
	require.NoError(t, err)

	assert.Equal(t, "tok", s.APIKey)
	assert.Equal(t, "/tmp/venv/bin/python", s.VenvPython())
	assert.Equal(t, "/tmp/venv/bin/pip", s.VenvPip())
	assert.Equal(t, "/tmp/venv/bin/edge-tts", s.EdgeTTS())
}

func TestFromMapRejectsUnknownBackends(t *testing.T) {
	_, err := FromMap(map[string]string{
		"PODCASTFY_PROBE":    "mediainfo",
		"PODCASTFY_FALLBACK": "say",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "PODCASTFY_PROBE")
	assert.ErrorContains(t, err, "PODCASTFY_FALLBACK")
}

func TestSecondaryConfig(t *testing.T) {
	home := t.TempDir()
	s := Settings{Home: home}
	assert.Empty(t, s.SecondaryConfig())

	path := filepath.Join(home, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("website_extractor: {}\n"), 0o644))
	assert.Equal(t, path, s.SecondaryConfig())

	explicit := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("{}\n"), 0o644))
	s.ConfigFile = explicit
	assert.Equal(t, explicit, s.SecondaryConfig())
}
