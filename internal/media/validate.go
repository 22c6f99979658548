package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
)

const (
	// MinSizeBytes rejects the ~261 byte stubs a broken synthesis leaves behind.
	MinSizeBytes = 10_000
	// MinDurationSeconds is the shortest duration accepted as playable.
	MinDurationSeconds = 1.0
)

// Report is the outcome of validating one file.
type Report struct {
	Path     string
	Size     int64
	Duration float64
	Valid    bool
	Reason   string
}

// Validator checks MP3 files for size and playable duration.
type Validator struct {
	prober Prober
	logger *slog.Logger
}

// NewValidator returns a Validator using prober for the duration check.
func NewValidator(prober Prober, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{prober: prober, logger: logger}
}

// Validate never fails: every problem, including a panicking prober, is
// reported as an invalid Report.
func (v *Validator) Validate(ctx context.Context, path string) (report Report) {
	report.Path = path
	defer func() {
		if r := recover(); r != nil {
			report.Valid = false
			report.Reason = fmt.Sprintf("probe panicked: %v", r)
		}
		v.log(report)
	}()

	info, err := os.Stat(path)
	if err != nil {
		report.Reason = "file does not exist"
		return report
	}
	if info.IsDir() {
		report.Reason = "path is a directory"
		return report
	}
	report.Size = info.Size()
	if report.Size < MinSizeBytes {
		report.Reason = fmt.Sprintf("file is %s, below the %s minimum", humanize.Bytes(uint64(report.Size)), humanize.Bytes(MinSizeBytes))
		return report
	}

	duration, err := v.prober.Duration(ctx, path)
	if err != nil {
		report.Reason = fmt.Sprintf("probe failed: %v", err)
		return report
	}
	report.Duration = duration
	if !(duration >= MinDurationSeconds) {
		report.Reason = fmt.Sprintf("duration %.3fs is below %.1fs", duration, MinDurationSeconds)
		return report
	}
	report.Valid = true
	return report
}

func (v *Validator) log(r Report) {
	if r.Valid {
		v.logger.Info("mp3 valid", "path", r.Path, "size", humanize.Bytes(uint64(r.Size)), "seconds", r.Duration)
		return
	}
	v.logger.Warn("mp3 invalid", "path", r.Path, "reason", r.Reason)
}
