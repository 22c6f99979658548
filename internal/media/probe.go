package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// Prober reports the playable duration of an audio file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// ErrNoDuration is returned when the probe output carries no duration field.
var ErrNoDuration = errors.New("no duration reported")

// FFprobe probes container metadata with the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Duration runs ffprobe and reads its "duration=" line.
func (p FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	binary := strings.TrimSpace(p.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-hide_banner", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nw=1",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return ParseDuration(output)
}

// ParseDuration extracts the value of the first "duration=" line of ffprobe
// default-format output, e.g. "duration=735.144000".
func ParseDuration(output []byte) (float64, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		value, ok := strings.CutPrefix(line, "duration=")
		if !ok {
			continue
		}
		seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", value, err)
		}
		return seconds, nil
	}
	return 0, ErrNoDuration
}

// Decoder measures duration by decoding the MP3 stream in-process.
type Decoder struct{}

// Duration decodes path and derives the duration from its sample count.
func (Decoder) Duration(_ context.Context, path string) (float64, error) {
	d, err := DecodeDuration(path)
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}

// DecodeDuration returns the playable length of an MP3 file.
func DecodeDuration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d, err := MeasureMP3(f)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return d, nil
}

// MeasureMP3 decodes an MP3 stream and returns its playable length. The
// reader must be seekable for the length to be known.
func MeasureMP3(r io.Reader) (time.Duration, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, err
	}
	length := decoder.Length()
	if length < 0 || decoder.SampleRate() <= 0 {
		return 0, ErrNoDuration
	}

	// go-mp3 always emits 16-bit stereo: four bytes per sample frame.
	seconds := float64(length) / (4 * float64(decoder.SampleRate()))
	return time.Duration(seconds * float64(time.Second)), nil
}
