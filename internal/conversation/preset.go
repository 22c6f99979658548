package conversation

// Voices pairs the edge voice identifiers of the two speakers.
type Voices struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Preset is the per-mode default conversation shape.
type Preset struct {
	Voices           Voices
	RolesPerson1     string
	RolesPerson2     string
	OutputLanguage   string
	Style            []string
	WordCount        int
	EndingMessage    string
	UserInstructions string
}

const bilingualInstructions = "YOU MUST FOLLOW THESE RULES EXACTLY - NO EXCEPTIONS: " +
	"1. Person1 says EXACTLY ONE short sentence in English (10 words MAX). " +
	"2. Person2 translates ONLY that one sentence to Chinese. " +
	"3. Then Person1 says the NEXT single sentence. " +
	"4. Then Person2 translates it. " +
	"5. REPEAT this pattern throughout the ENTIRE podcast. " +
	"FORBIDDEN: Long paragraphs, multiple sentences at once, combining ideas. " +
	"CORRECT FORMAT: " +
	"<Person1>Podcasts are digital audio shows.</Person1>" +
	"<Person2>播客是数字音频节目。</Person2>" +
	"<Person1>They started in 2004.</Person1>" +
	"<Person2>它们始于2004年。</Person2>" +
	"<Person1>Anyone can create one.</Person1>" +
	"<Person2>任何人都可以创建。</Person2>" +
	"Each Person1 line must be under 10 words. This is MANDATORY."

// PresetFor returns the defaults for mode.
func PresetFor(mode Mode) Preset {
	switch mode {
	case ModeBilingual:
		return Preset{
			Voices:           Voices{Question: "en-US-JennyNeural", Answer: "zh-CN-YunxiNeural"},
			RolesPerson1:     "English speaker",
			RolesPerson2:     "Chinese translator",
			OutputLanguage:   "English",
			Style:            []string{"concise", "short sentences", "simple words"},
			WordCount:        50,
			EndingMessage:    "See you next time! 下次再见！",
			UserInstructions: bilingualInstructions,
		}
	case ModeChinese:
		return Preset{
			Voices:         Voices{Question: "zh-CN-XiaoxiaoNeural", Answer: "zh-CN-YunxiNeural"},
			RolesPerson1:   "main summarizer",
			RolesPerson2:   "questioner/clarifier",
			OutputLanguage: "Chinese",
			Style:          []string{"engaging", "fast-paced", "enthusiastic"},
			WordCount:      200,
			EndingMessage:  "下次再见！",
		}
	default:
		return Preset{
			Voices:         Voices{Question: "en-US-JennyNeural", Answer: "en-US-EricNeural"},
			RolesPerson1:   "main summarizer",
			RolesPerson2:   "questioner/clarifier",
			OutputLanguage: "English",
			Style:          []string{"engaging", "fast-paced", "enthusiastic"},
			WordCount:      200,
			EndingMessage:  "See You Next Time!",
		}
	}
}
