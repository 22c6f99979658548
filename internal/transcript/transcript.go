// Package transcript reads the speaker-tagged transcripts the generation
// library writes next to its audio.
package transcript

import (
	"os"
	"regexp"
	"strings"
)

// Speaker identifies one side of the conversation.
type Speaker string

const (
	Person1 Speaker = "Person1"
	Person2 Speaker = "Person2"
)

// Turn is a single utterance.
type Turn struct {
	Speaker Speaker
	Text    string
}

var (
	turnPattern = regexp.MustCompile(`(?s)<(Person[12])>(.*?)</Person[12]>`)
	tagPattern  = regexp.MustCompile(`</?Person[12]>`)
	spaceRun    = regexp.MustCompile(`\s+`)
)

// Parse splits a transcript into turns. Text outside speaker tags is ignored
// when tags are present; an untagged transcript becomes one Person1 turn.
func Parse(text string) []Turn {
	matches := turnPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		if cleaned := normalize(text); cleaned != "" {
			return []Turn{{Speaker: Person1, Text: cleaned}}
		}
		return nil
	}
	turns := make([]Turn, 0, len(matches))
	for _, m := range matches {
		cleaned := normalize(m[2])
		if cleaned == "" {
			continue
		}
		turns = append(turns, Turn{Speaker: Speaker(m[1]), Text: cleaned})
	}
	return turns
}

// ReadFile parses the transcript stored at path.
func ReadFile(path string) ([]Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

// PlainText renders turns as one utterance per line without speaker tags.
func PlainText(turns []Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(turn.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func normalize(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
