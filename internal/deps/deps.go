// Package deps reports whether the external tools a podcast run shells out
// to are reachable.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// FFmpegRemediation is printed when ffmpeg is missing from PATH.
const FFmpegRemediation = "ffmpeg not found on PATH. Install it first (Ubuntu/Debian): sudo apt-get update && sudo apt-get install -y ffmpeg"

// Requirement is an external binary a run relies on. Command is either a
// bare name looked up on PATH or a path to an executable file.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// Remediation replaces the detail of an unavailable requirement.
	Remediation string
}

// FFmpeg is needed by podcastfy for audio encoding.
var FFmpeg = Requirement{
	Name:        "ffmpeg",
	Command:     "ffmpeg",
	Description: "audio encoding used by podcastfy",
	Remediation: FFmpegRemediation,
}

// Status is the outcome of checking one Requirement.
type Status struct {
	Requirement
	// Resolved is the executable that would run.
	Resolved  string
	Available bool
	Detail    string
}

// CheckBinaries checks every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}

// Check checks a single requirement.
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	status := Status{Requirement: req}
	resolved, err := resolve(req.Command)
	if err != nil {
		status.Detail = err.Error()
		if req.Remediation != "" {
			status.Detail = req.Remediation
		}
		return status
	}
	status.Resolved = resolved
	status.Available = true
	return status
}

// Missing names the required entries of statuses that are unavailable.
func Missing(statuses []Status) []string {
	var names []string
	for _, st := range statuses {
		if !st.Available && !st.Optional {
			names = append(names, st.Name)
		}
	}
	return names
}

func resolve(cmd string) (string, error) {
	switch {
	case cmd == "":
		return "", fmt.Errorf("command not configured")
	case strings.ContainsRune(cmd, os.PathSeparator):
		info, err := os.Stat(cmd)
		if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			return "", fmt.Errorf("%s is not an executable file", cmd)
		}
		return cmd, nil
	default:
		path, err := exec.LookPath(cmd)
		if err != nil {
			return "", fmt.Errorf("binary %q not found", cmd)
		}
		return path, nil
	}
}
