// Package artifact knows the output directory tree of a podcast run and
// how to pick produced files out of it.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Layout is the output directory tree rooted at Root.
type Layout struct {
	Root string
}

// NewLayout returns a layout rooted at the absolute form of root.
func NewLayout(root string) (Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve output directory %s: %w", root, err)
	}
	return Layout{Root: abs}, nil
}

func (l Layout) AudioDir() string       { return filepath.Join(l.Root, "audio") }
func (l Layout) TranscriptsDir() string { return filepath.Join(l.Root, "transcripts") }
func (l Layout) TempDir() string        { return filepath.Join(l.Root, "tmp") }
func (l Layout) ConfigPath() string     { return filepath.Join(l.Root, "conversation_config.yaml") }
func (l Layout) LockPath() string       { return filepath.Join(l.Root, ".podcastfy.lock") }
func (l Layout) HistoryPath() string    { return filepath.Join(l.Root, "history.db") }

// Ensure creates the root and every subdirectory. Existing directories and
// their contents are left alone.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Root, l.AudioDir(), l.TranscriptsDir(), l.TempDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// FixedPath is where the fallback writes its re-synthesised copy of mp3.
func (l Layout) FixedPath(mp3 string) string {
	base := filepath.Base(mp3)
	stem := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(l.AudioDir(), stem+"_fixed.mp3")
}
