package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists title file types handled by the tool.
var SupportedExtensions = map[string]bool{
	".txt": true,
}

// Walker discovers landed title files under a mod directory.
type Walker struct {
	// SkipPrefixes excludes files whose base name starts with one of these,
	// e.g. "_" for disabled or documentation files.
	SkipPrefixes []string
}

// NewWalker creates a Walker with default settings.
func NewWalker() *Walker {
	return &Walker{SkipPrefixes: []string{"_"}}
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path string
	Ext  string
}

// Walk discovers all supported files under root in lexical order, which is
// the order the game loads them and therefore the merge precedence.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if d.IsDir() || w.skipped(d.Name()) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !SupportedExtensions[ext] {
			return nil
		}

		entries = append(entries, FileEntry{Path: path, Ext: ext})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered title files")
	return entries, nil
}

func (w *Walker) skipped(name string) bool {
	for _, p := range w.SkipPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
