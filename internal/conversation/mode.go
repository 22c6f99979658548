package conversation

import (
	"strings"

	"golang.org/x/text/cases"
)

// Mode selects the language preset of a conversation.
type Mode int

const (
	ModeEnglish Mode = iota
	ModeChinese
	ModeBilingual
)

var (
	bilingualTokens = []string{"bilingual", "en-zh", "双语"}
	chineseTokens   = []string{"chinese", "zh", "中文"}
)

// ParseMode maps a PODCASTFY_LANGUAGE value to a Mode. Matching is
// case-insensitive; unrecognised values select English.
func ParseMode(value string) Mode {
	folded := cases.Fold().String(strings.TrimSpace(value))
	for _, token := range bilingualTokens {
		if folded == token {
			return ModeBilingual
		}
	}
	for _, token := range chineseTokens {
		if folded == token {
			return ModeChinese
		}
	}
	return ModeEnglish
}

func (m Mode) String() string {
	switch m {
	case ModeBilingual:
		return "bilingual"
	case ModeChinese:
		return "chinese"
	default:
		return "english"
	}
}
