// Package faults classifies the fatal conditions a podcast run can hit.
//
// Every error produced by the pipeline is tagged with one of the sentinel
// markers below so commands can pick an exit code and a message without
// inspecting strings.
package faults

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dkarlovi/podcastfy/internal/process"
)

var (
	ErrPrerequisite    = errors.New("missing prerequisite")
	ErrSubprocess      = errors.New("subprocess failed")
	ErrMissingArtifact = errors.New("missing artifact")
	ErrValidation      = errors.New("validation failed")
	ErrConfiguration   = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context and tags it with
// marker. A nil marker is treated as ErrSubprocess.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrSubprocess
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps err to a process exit code. A failed child process passes
// its own exit status through; everything else exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}

// Message returns the text shown to the user: the stage detail without the
// marker prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrPrerequisite, ErrSubprocess, ErrMissingArtifact, ErrValidation, ErrConfiguration} {
		if errors.Is(err, marker) {
			msg = strings.TrimPrefix(msg, marker.Error()+": ")
			break
		}
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "podcast run failure"
	}
	return strings.Join(parts, ": ")
}
