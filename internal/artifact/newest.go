package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Newest returns the file in dir whose base name matches pattern and whose
// modification time is the latest. dir is taken literally; only pattern is a
// glob. It returns "" without error when nothing matches or dir is missing.
func Newest(dir, pattern string) (string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return "", fmt.Errorf("match %s: %w", pattern, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", dir, err)
	}

	var (
		newest  string
		newestT int64
	)
	for _, entry := range entries {
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok || entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		mod := info.ModTime().UnixNano()
		if newest == "" || mod > newestT {
			newest = filepath.Join(dir, entry.Name())
			newestT = mod
		}
	}
	return newest, nil
}
