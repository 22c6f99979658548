// Package conversation renders the conversation configuration handed to the
// podcast generation library.
//
// The document is a typed struct serialised with the yaml.v3 encoder, so
// voice names or instructions containing quotes, colons or other YAML syntax
// round-trip unchanged.
package conversation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dkarlovi/podcastfy/internal/artifact"
)

// Document is the conversation_config.yaml schema understood by podcastfy.
type Document struct {
	ConversationStyle []string     `yaml:"conversation_style"`
	RolesPerson1      string       `yaml:"roles_person1"`
	RolesPerson2      string       `yaml:"roles_person2"`
	DialogueStructure []string     `yaml:"dialogue_structure"`
	PodcastName       string       `yaml:"podcast_name"`
	PodcastTagline    string       `yaml:"podcast_tagline"`
	OutputLanguage    string       `yaml:"output_language"`
	Creativity        int          `yaml:"creativity"`
	WordCount         int          `yaml:"word_count"`
	UserInstructions  string       `yaml:"user_instructions"`
	TextToSpeech      TextToSpeech `yaml:"text_to_speech"`
}

// TextToSpeech is the text_to_speech section of the document.
type TextToSpeech struct {
	DefaultTTSModel   string            `yaml:"default_tts_model"`
	OutputDirectories OutputDirectories `yaml:"output_directories"`
	Edge              EdgeSettings      `yaml:"edge"`
	AudioFormat       string            `yaml:"audio_format"`
	TempAudioDir      string            `yaml:"temp_audio_dir"`
	EndingMessage     string            `yaml:"ending_message"`
}

// OutputDirectories tells the library where to write artifacts.
type OutputDirectories struct {
	Transcripts string `yaml:"transcripts"`
	Audio       string `yaml:"audio"`
}

// EdgeSettings holds the edge TTS voice pair.
type EdgeSettings struct {
	DefaultVoices Voices `yaml:"default_voices"`
}

// Options are the inputs of Build.
type Options struct {
	Mode Mode
	// Voice overrides; empty keeps the preset voice.
	VoiceQuestion string
	VoiceAnswer   string
}

// ResolveVoices applies the overrides in opts to the preset voices of its mode.
func ResolveVoices(opts Options) Voices {
	voices := PresetFor(opts.Mode).Voices
	if v := strings.TrimSpace(opts.VoiceQuestion); v != "" {
		voices.Question = v
	}
	if v := strings.TrimSpace(opts.VoiceAnswer); v != "" {
		voices.Answer = v
	}
	return voices
}

// Build assembles the document for the given output layout.
func Build(opts Options, layout artifact.Layout) Document {
	preset := PresetFor(opts.Mode)
	return Document{
		ConversationStyle: append([]string(nil), preset.Style...),
		RolesPerson1:      preset.RolesPerson1,
		RolesPerson2:      preset.RolesPerson2,
		DialogueStructure: []string{"Introduction", "Main Content Summary", "Conclusion"},
		PodcastName:       "Podcastfy",
		PodcastTagline:    "Your Personal Generative AI Podcast",
		OutputLanguage:    preset.OutputLanguage,
		Creativity:        0,
		WordCount:         preset.WordCount,
		UserInstructions:  preset.UserInstructions,
		TextToSpeech: TextToSpeech{
			DefaultTTSModel: "edge",
			OutputDirectories: OutputDirectories{
				Transcripts: layout.TranscriptsDir(),
				Audio:       layout.AudioDir(),
			},
			Edge:          EdgeSettings{DefaultVoices: ResolveVoices(opts)},
			AudioFormat:   "mp3",
			TempAudioDir:  layout.TempDir() + "/",
			EndingMessage: preset.EndingMessage,
		},
	}
}

// Marshal encodes doc as YAML with two-space indentation.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode conversation config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode conversation config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write creates the output tree and writes the document to the layout's
// config path, replacing any previous one. It returns the written path.
func Write(doc Document, layout artifact.Layout) (string, error) {
	if err := layout.Ensure(); err != nil {
		return "", err
	}
	data, err := Marshal(doc)
	if err != nil {
		return "", err
	}
	path := layout.ConfigPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Load reads a previously written document back.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// CheckYAML reports whether path holds well-formed YAML. The file content is
// not interpreted; the generation library owns its schema.
func CheckYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		var typeError *yaml.TypeError
		if errors.As(err, &typeError) {
			return fmt.Errorf("config file %s: %s", path, strings.Join(typeError.Errors, "; "))
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}
