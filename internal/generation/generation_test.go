package generation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/process"
)

func writePython(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestRequestEnviron(t *testing.T) {
	req := Request{
		URLs:               []string{"https://a", "https://b"},
		Longform:           true,
		Model:              "claude-sonnet-4-20250514",
		APIKeyLabel:        "ANTHROPIC_AUTH_TOKEN",
		ConversationConfig: "/out/conversation_config.yaml",
	}

	env := req.Environ()
	assert.Contains(t, env, "_PODCASTFY_URLS=https://a\nhttps://b")
	assert.Contains(t, env, "_PODCASTFY_LONGFORM=1")
	assert.Contains(t, env, "_PODCASTFY_CONV_CFG=/out/conversation_config.yaml")
	assert.Contains(t, env, "PODCASTFY_LLM_MODEL=claude-sonnet-4-20250514")
	assert.Contains(t, env, "PODCASTFY_API_KEY_LABEL=ANTHROPIC_AUTH_TOKEN")
	for _, kv := range env {
		assert.False(t, strings.HasPrefix(kv, "_PODCASTFY_CFG="), "unexpected %s", kv)
	}

	req.Config = "/skill/config.yaml"
	req.Longform = false
	env = req.Environ()
	assert.Contains(t, env, "_PODCASTFY_CFG=/skill/config.yaml")
	assert.Contains(t, env, "_PODCASTFY_LONGFORM=0")
}

func TestGeneratePassesScriptAndParsesResult(t *testing.T) {
	python := writePython(t, `[ "$1" = "-c" ] || exit 9
case "$2" in *generate_podcast*) ;; *) exit 8 ;; esac
echo "extracting $_PODCASTFY_URLS"
echo 'PODCASTFY_RESULT {"audio_file": "/out/audio/podcast_1.mp3"}'
`)
	var output bytes.Buffer
	inv := NewInvoker(python, nil, &output)

	result, err := inv.Generate(context.Background(), Request{URLs: []string{"https://a"}, ConversationConfig: "/c.yaml"})

	require.NoError(t, err)
	assert.Equal(t, "/out/audio/podcast_1.mp3", result.AudioFile)
	assert.Contains(t, output.String(), "extracting https://a")
}

func TestGenerateKeepsInterleavedOutput(t *testing.T) {
	python := writePython(t, `i=0
while [ $i -lt 200 ]; do
  echo "out $i"
  echo "err $i" >&2
  i=$((i+1))
done
echo 'PODCASTFY_RESULT {"audio_file": "/out/audio/p.mp3"}'
`)
	var output bytes.Buffer
	inv := NewInvoker(python, nil, &output)

	result, err := inv.Generate(context.Background(), Request{URLs: []string{"https://a"}, ConversationConfig: "/c.yaml"})

	require.NoError(t, err)
	assert.Equal(t, "/out/audio/p.mp3", result.AudioFile)
	lines := strings.Split(strings.TrimSpace(output.String()), "\n")
	assert.Len(t, lines, 401)
	assert.Contains(t, lines, "out 199")
	assert.Contains(t, lines, "err 199")
}

func TestGeneratePropagatesExitCode(t *testing.T) {
	python := writePython(t, "echo 'Traceback' >&2\nexit 4\n")
	inv := NewInvoker(python, nil, &bytes.Buffer{})

	_, err := inv.Generate(context.Background(), Request{URLs: []string{"https://a"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, faults.ErrSubprocess)
	var exitErr *process.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 4, exitErr.Code)
	assert.Equal(t, 4, faults.ExitCode(err))
}

func TestGenerateWithoutResultLine(t *testing.T) {
	inv := NewInvoker(writePython(t, "exit 0\n"), nil, &bytes.Buffer{})

	result, err := inv.Generate(context.Background(), Request{URLs: []string{"https://a"}})

	require.NoError(t, err)
	assert.Empty(t, result.AudioFile)
}

func TestGenerateRequiresURLs(t *testing.T) {
	_, err := NewInvoker("python", nil, nil).Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, faults.ErrConfiguration)
}

func TestParseResultUsesLastMarker(t *testing.T) {
	out := []byte("noise\nPODCASTFY_RESULT {bad json\nPODCASTFY_RESULT {\"audio_file\": \"/a.mp3\"}\n")
	result, ok := parseResult(out)
	assert.True(t, ok)
	assert.Equal(t, "/a.mp3", result.AudioFile)
}
