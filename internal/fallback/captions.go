package fallback

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
)

// Cue is one caption entry.
type Cue struct {
	Speaker string
	Text    string
	Start   time.Duration
	End     time.Duration
}

// CaptionsPath is the sidecar captions file for an MP3.
func CaptionsPath(mp3 string) string {
	return strings.TrimSuffix(mp3, filepath.Ext(mp3)) + ".vtt"
}

// WriteCaptions writes cues to path; the subtitle format follows the
// extension.
func WriteCaptions(path string, cues []Cue) error {
	subs := astisub.NewSubtitles()
	for i, cue := range cues {
		subs.Items = append(subs.Items, &astisub.Item{
			Index:   i + 1,
			StartAt: cue.Start,
			EndAt:   cue.End,
			Lines: []astisub.Line{{
				VoiceName: cue.Speaker,
				Items:     []astisub.LineItem{{Text: cue.Text}},
			}},
		})
	}
	return subs.Write(path)
}
