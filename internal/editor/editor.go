// Package editor holds the live title tree and exposes the operations the
// command line drives: loading, saving, checking, suggesting and cleaning.
package editor

import (
	"context"
	"fmt"
	"strings"

	"landed-titles/internal/filewalker"
	"landed-titles/internal/parser"
	"landed-titles/internal/suggest"
	"landed-titles/internal/titles"
	"landed-titles/internal/worker"

	"github.com/rs/zerolog/log"
)

// Editor owns the live tree. It is not safe for concurrent use.
type Editor struct {
	tree   *titles.Tree
	engine *suggest.Engine

	schema    parser.Schema
	schemaSet bool
}

// New creates an editor with an empty live tree.
func New(engine *suggest.Engine) *Editor {
	return &Editor{
		tree:   titles.NewTree(),
		engine: engine,
		schema: parser.Cultural(),
	}
}

// Tree returns the live tree.
func (e *Editor) Tree() *titles.Tree {
	return e.tree
}

// Schema returns the schema used by SaveTitles. The first loaded file decides
// it; an editor that never loaded anything writes the cultural schema.
func (e *Editor) Schema() parser.Schema {
	return e.schema
}

// SetSchema overrides the schema used by SaveTitles.
func (e *Editor) SetSchema(s parser.Schema) {
	e.schema = s
	e.schemaSet = true
}

// LoadTitles parses path and merges it into the live tree. Titles already in
// the tree keep their names; the file only fills in what is missing.
func (e *Editor) LoadTitles(path string) error {
	result, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	e.add(result)
	e.tree.Merge()

	log.Info().Str("path", path).Str("schema", result.Schema.String()).Int("titles", e.tree.Len()).Msg("Loaded titles")
	return nil
}

// LoadTitlesDir parses every title file under dir concurrently and merges them
// in lexical path order. Any parse failure aborts the load and leaves the live
// tree untouched.
func (e *Editor) LoadTitlesDir(ctx context.Context, dir string, workers int) error {
	files, err := filewalker.NewWalker().Walk(dir)
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	pool := worker.NewPool("parse", workers, func(_ context.Context, f filewalker.FileEntry) (*parser.ParseResult, error) {
		return parser.ParseFile(f.Path)
	})
	tasks := pool.Execute(ctx, files)

	results := make([]*parser.ParseResult, 0, len(tasks))
	for _, task := range tasks {
		if !task.Done {
			return ctx.Err()
		}
		if task.Err != nil {
			return task.Err
		}
		results = append(results, task.Result)
	}

	for _, r := range results {
		e.add(r)
	}
	e.tree.Merge()

	log.Info().Str("dir", dir).Int("files", len(results)).Int("titles", e.tree.Len()).Msg("Loaded title directory")
	return nil
}

func (e *Editor) add(result *parser.ParseResult) {
	if !e.schemaSet {
		e.schema = result.Schema
		e.schemaSet = true
	}
	e.tree.Append(titles.FromEntities(result.Titles)...)
}

// SaveTitles serializes the live tree to path in the editor's schema.
func (e *Editor) SaveTitles(path string) error {
	text := parser.Serialize(titles.ToEntities(e.tree.Roots), e.schema)
	if err := parser.WriteSource(path, text, e.schema); err != nil {
		return err
	}

	log.Info().Str("path", path).Str("schema", e.schema.String()).Int("titles", e.tree.Len()).Msg("Saved titles")
	return nil
}

// CheckIntegrity checks the file at path against the live tree, which acts as
// the master. The file is not merged, so duplicate definitions stay visible.
func (e *Editor) CheckIntegrity(path string) (bool, *titles.IntegrityReport, error) {
	overlay, err := loadTree(path)
	if err != nil {
		return false, nil, err
	}

	report := titles.CheckIntegrity(overlay, e.tree)
	log.Info().Str("path", path).Bool("valid", report.Valid).Int("violations", len(report.Order)).Msg("Checked integrity")
	return report.Valid, report, nil
}

// GetSuggestions computes name suggestions for the live tree.
func (e *Editor) GetSuggestions() []suggest.Suggestion {
	return e.engine.Suggest(e.tree)
}

// ApplySuggestions computes suggestions for the live tree and applies them.
// It returns the number of names added.
func (e *Editor) ApplySuggestions() int {
	n := suggest.Apply(e.tree, e.GetSuggestions())
	log.Info().Int("applied", n).Msg("Applied suggestions")
	return n
}

// ApplySuggestionsFrom computes suggestions from the tree in path and applies
// them to the live tree. Live names are never overwritten.
func (e *Editor) ApplySuggestionsFrom(path string) (int, error) {
	source, err := loadTree(path)
	if err != nil {
		return 0, err
	}
	source.Merge()

	n := suggest.Apply(e.tree, e.engine.Suggest(source))
	log.Info().Str("path", path).Int("applied", n).Msg("Applied suggestions from file")
	return n, nil
}

// RemoveNames clears every cultural name in the live tree.
func (e *Editor) RemoveNames() int {
	removed := 0
	e.tree.Walk(func(t *titles.Title) bool {
		removed += len(t.Names)
		clear(t.Names)
		return true
	})

	log.Info().Int("removed", removed).Msg("Removed names")
	return removed
}

// RemoveNamesFromFile removes, per title id, the culture keys that the title
// carries in path. Titles or cultures absent from the file are left alone.
func (e *Editor) RemoveNamesFromFile(path string) (int, error) {
	source, err := loadTree(path)
	if err != nil {
		return 0, err
	}

	removed := 0
	source.Walk(func(st *titles.Title) bool {
		live := e.tree.Find(st.ID)
		if live == nil {
			return true
		}
		for culture := range st.Names {
			if _, ok := live.Names[culture]; ok {
				delete(live.Names, culture)
				removed++
			}
		}
		return true
	})

	log.Info().Str("path", path).Int("removed", removed).Msg("Removed names from file")
	return removed, nil
}

// CleanFile rewrites path through the writer and puts back trailing comments.
// A comment survives only when its line's content before '#' is byte-equal,
// after trimming, to a regenerated line; any edit to the value drops it.
func (e *Editor) CleanFile(path string) error {
	lines, _, err := parser.ReadLines(path)
	if err != nil {
		return err
	}
	result, err := parser.ParseFile(path)
	if err != nil {
		return err
	}

	comments := commentIndex(dedupe(lines))

	text := parser.Serialize(result.Titles, result.Schema)
	if err := parser.WriteSource(path, text, result.Schema); err != nil {
		return err
	}

	regenerated, _, err := parser.ReadLines(path)
	if err != nil {
		return err
	}

	restored := 0
	for i, line := range regenerated {
		original, ok := comments[strings.TrimSpace(line)]
		if !ok {
			continue
		}
		regenerated[i] = leadingSpace(line) + original[len(leadingSpace(original)):]
		restored++
	}

	if err := parser.WriteLines(path, regenerated, result.Schema); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("comments", len(comments)).Int("restored", restored).Msg("Cleaned file")
	return nil
}

// dedupe drops repeated lines, keeping first occurrences in order.
func dedupe(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// commentIndex maps the trimmed content before the first '#' to the full
// original line. Comment-only lines have an empty key and are skipped.
func commentIndex(lines []string) map[string]string {
	index := make(map[string]string)
	for _, l := range lines {
		i := strings.IndexByte(l, '#')
		if i < 0 {
			continue
		}
		key := strings.TrimSpace(l[:i])
		if key == "" {
			continue
		}
		if _, ok := index[key]; !ok {
			index[key] = l
		}
	}
	return index
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

func loadTree(path string) (*titles.Tree, error) {
	result, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return titles.TreeFromResult(result), nil
}
