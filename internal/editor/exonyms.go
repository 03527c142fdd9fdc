package editor

import (
	"context"
	"errors"

	"landed-titles/internal/parser"
	"landed-titles/internal/textutil"
	"landed-titles/internal/titles"
	"landed-titles/internal/worker"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

// Lookup is the best-effort exonym service. TryGetExonym returns "" on any failure.
type Lookup interface {
	TryGetExonym(ctx context.Context, place, language string) string
}

// ExonymRequest asks for names in TargetCulture derived from the names titles
// already carry in SourceCulture, translated into Language.
type ExonymRequest struct {
	SourceCulture string
	TargetCulture string
	Language      string
	Workers       int
}

type exonymJob struct {
	title *titles.Title
	place string
}

// ApplyExonyms fills in TargetCulture names from exonym lookups. Titles that
// already have a TargetCulture name are skipped and nothing is overwritten.
// It returns the number of names added.
func (e *Editor) ApplyExonyms(ctx context.Context, lookup Lookup, req ExonymRequest) (int, error) {
	if req.SourceCulture == "" || req.TargetCulture == "" || req.Language == "" {
		return 0, errors.New("exonym request needs source culture, target culture and language")
	}

	var jobs []exonymJob
	e.tree.Walk(func(t *titles.Title) bool {
		if place, ok := t.Names[req.SourceCulture]; ok && !t.HasName(req.TargetCulture) {
			jobs = append(jobs, exonymJob{title: t, place: place})
		}
		return true
	})
	if len(jobs) == 0 {
		log.Info().Str("source", req.SourceCulture).Str("target", req.TargetCulture).Msg("No titles need exonyms")
		return 0, nil
	}

	pool := worker.NewPool("exonym", req.Workers, func(ctx context.Context, j exonymJob) (string, error) {
		return lookup.TryGetExonym(ctx, j.place, req.Language), nil
	})
	tasks := pool.Execute(ctx, jobs)

	added := 0
	for _, task := range tasks {
		if !task.Done {
			continue
		}
		name := e.fitName(textutil.CleanName(task.Result))
		if name == "" {
			log.Debug().Str("title", task.Input.title.ID).Str("place", textutil.Truncate(task.Input.place, 30)).Msg("No exonym")
			continue
		}
		if task.Input.title.AddName(req.TargetCulture, name) {
			added++
		}
	}

	log.Info().
		Str("source", req.SourceCulture).
		Str("target", req.TargetCulture).
		Str("language", req.Language).
		Int("candidates", len(jobs)).
		Int("added", added).
		Msg("Applied exonyms")
	return added, ctx.Err()
}

// fitName makes name writable in the editor's schema. Legacy files are
// single-byte; diacritics outside the code page are stripped instead of
// turning into '?' on save.
func (e *Editor) fitName(name string) string {
	if name == "" || e.schema.Kind != parser.SchemaLegacy || encodable(name) {
		return name
	}
	stripped := textutil.StripDiacritics(name)
	if !encodable(stripped) {
		return ""
	}
	return stripped
}

func encodable(s string) bool {
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}
