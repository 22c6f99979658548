// Package generation runs the podcastfy library inside the virtualenv.
//
// The library is driven through a small embedded Python script. Requests
// travel as environment variables:
//
//	_PODCASTFY_URLS         newline-joined URLs
//	_PODCASTFY_LONGFORM     "1" or "0"
//	_PODCASTFY_CONV_CFG     rendered conversation config path
//	_PODCASTFY_CFG          optional pass-through config path
//	PODCASTFY_LLM_MODEL     model name
//	PODCASTFY_API_KEY_LABEL name of the variable holding the API key
//
// The script answers with a single stdout line "PODCASTFY_RESULT {json}".
// All other child output is forwarded to stderr.
package generation

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dkarlovi/podcastfy/internal/faults"
	"github.com/dkarlovi/podcastfy/internal/process"
)

//go:embed invoke.py
var script string

const (
	stage        = "generate"
	resultMarker = "PODCASTFY_RESULT "
)

// Request is one generation call.
type Request struct {
	URLs               []string
	Longform           bool
	Model              string
	APIKeyLabel        string
	ConversationConfig string
	Config             string // optional
}

// Result is the decoded response line.
type Result struct {
	AudioFile string `json:"audio_file"`
}

// Invoker runs the generation script with a given interpreter.
type Invoker struct {
	python string
	logger *slog.Logger
	output io.Writer
}

// NewInvoker returns an Invoker using python. Child output that is not the
// result line goes to output, or stderr when nil.
func NewInvoker(python string, logger *slog.Logger, output io.Writer) *Invoker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if output == nil {
		output = os.Stderr
	}
	return &Invoker{python: python, logger: logger, output: output}
}

// Environ renders req as the child's extra environment.
func (req Request) Environ() []string {
	longform := "0"
	if req.Longform {
		longform = "1"
	}
	env := []string{
		"_PODCASTFY_URLS=" + strings.Join(req.URLs, "\n"),
		"_PODCASTFY_LONGFORM=" + longform,
		"_PODCASTFY_CONV_CFG=" + req.ConversationConfig,
		"PODCASTFY_LLM_MODEL=" + req.Model,
		"PODCASTFY_API_KEY_LABEL=" + req.APIKeyLabel,
	}
	if req.Config != "" {
		env = append(env, "_PODCASTFY_CFG="+req.Config)
	}
	return env
}

// Generate runs the library once. A non-zero exit is returned wrapped around
// *process.ExitError so the caller can pass the status through. No retry is
// attempted.
func (inv *Invoker) Generate(ctx context.Context, req Request) (Result, error) {
	if len(req.URLs) == 0 {
		return Result{}, faults.Wrap(faults.ErrConfiguration, stage, "request", "no URLs", nil)
	}

	var stdout bytes.Buffer
	output := process.SyncWriter(inv.output)
	inv.logger.Info("generating podcast", "urls", len(req.URLs), "longform", req.Longform, "model", req.Model)
	err := process.Run(ctx, inv.logger, process.Command{
		Name:   inv.python,
		Args:   []string{"-c", script},
		Env:    req.Environ(),
		Stdout: io.MultiWriter(&stdout, output),
		Stderr: output,
	})
	if err != nil {
		return Result{}, faults.Wrap(faults.ErrSubprocess, stage, "podcastfy", "generation failed", err)
	}

	result, ok := parseResult(stdout.Bytes())
	if !ok {
		inv.logger.Warn("generation finished without a result line")
	}
	return result, nil
}

func parseResult(output []byte) (Result, bool) {
	var (
		result Result
		found  bool
	)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		payload, ok := strings.CutPrefix(scanner.Text(), resultMarker)
		if !ok {
			continue
		}
		var r Result
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			continue
		}
		result, found = r, true
	}
	return result, found
}
