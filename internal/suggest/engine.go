// Package suggest proposes cultural names for titles by propagating existing
// names across groups of related cultures.
package suggest

import (
	"landed-titles/internal/titles"

	"github.com/rs/zerolog/log"
)

// Suggestion proposes name SuggestedName for TargetCultureID on TitleID,
// copied from the title's SourceCultureID name.
type Suggestion struct {
	TitleID         string `json:"title_id"`
	SourceCultureID string `json:"source_culture_id"`
	TargetCultureID string `json:"target_culture_id"`
	SuggestedName   string `json:"suggested_name"`
}

// Engine generates suggestions from a fixed group configuration.
type Engine struct {
	groups []CultureGroup
}

// NewEngine creates an engine over groups.
func NewEngine(groups Groups) *Engine {
	return &Engine{groups: groups.All()}
}

// Suggest computes suggestions for every named title of tree. The tree is not modified.
func (e *Engine) Suggest(tree *titles.Tree) []Suggestion {
	var out []Suggestion

	tree.Walk(func(t *titles.Title) bool {
		if len(t.Names) == 0 {
			return true
		}
		for _, g := range e.groups {
			out = append(out, suggestForGroup(t, g)...)
		}
		return true
	})

	log.Debug().Int("suggestions", len(out)).Int("groups", len(e.groups)).Msg("Computed name suggestions")
	return out
}

func suggestForGroup(t *titles.Title, g CultureGroup) []Suggestion {
	sourceIdx := -1
	for i, c := range g.Cultures {
		if t.HasName(c) {
			sourceIdx = i
			break
		}
	}
	if sourceIdx < 0 {
		return nil
	}
	if g.Mode == FirstOnlyPriority && sourceIdx != 0 {
		return nil
	}

	source := g.Cultures[sourceIdx]
	name := t.Names[source]

	var out []Suggestion
	for i, target := range g.Cultures {
		if i == sourceIdx || t.HasName(target) {
			continue
		}
		if g.Mode == AscendingPriority && i < sourceIdx {
			continue
		}
		out = append(out, Suggestion{
			TitleID:         t.ID,
			SourceCultureID: source,
			TargetCultureID: target,
			SuggestedName:   name,
		})
	}
	return out
}

// Apply inserts suggestions into tree. Existing names are never overwritten, so
// when several suggestions target the same culture the first one wins.
// It returns the number of names added.
func Apply(tree *titles.Tree, suggestions []Suggestion) int {
	applied := 0
	for _, s := range suggestions {
		t := tree.Find(s.TitleID)
		if t == nil {
			continue
		}
		if t.AddName(s.TargetCultureID, s.SuggestedName) {
			applied++
		}
	}
	return applied
}
