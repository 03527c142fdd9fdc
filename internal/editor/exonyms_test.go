package editor

import (
	"context"
	"sync"
	"testing"

	"landed-titles/internal/parser"
	"landed-titles/internal/titles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	mu      sync.Mutex
	answers map[string]string
	calls   []string
}

func (f *fakeLookup) TryGetExonym(_ context.Context, place, _ string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, place)
	return f.answers[place]
}

func exonymEditor(schema parser.Schema) *Editor {
	ed := newEditor()
	ed.SetSchema(schema)

	root := titles.NewTitle("k_bohemia", "")
	root.Names["czech"] = "Čechy"
	praha := titles.NewTitle("d_praha", "k_bohemia")
	praha.Names["czech"] = "Praha"
	praha.Names["english"] = "Prague"
	brno := titles.NewTitle("c_brno", "k_bohemia")
	brno.Names["czech"] = "Brno"
	root.Children = []*titles.Title{praha, brno}
	ed.Tree().Append(root)
	return ed
}

func TestApplyExonyms(t *testing.T) {
	ed := exonymEditor(parser.Cultural())
	lookup := &fakeLookup{answers: map[string]string{
		"Čechy": "Bohemia (historical region)",
		"Praha": "Prague, Czechia",
	}}

	n, err := ed.ApplyExonyms(context.Background(), lookup, ExonymRequest{
		SourceCulture: "czech",
		TargetCulture: "english",
		Language:      "en",
		Workers:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "Bohemia", ed.Tree().Find("k_bohemia").Names["english"])
	assert.Equal(t, "Prague", ed.Tree().Find("d_praha").Names["english"])
	assert.False(t, ed.Tree().Find("c_brno").HasName("english"))
	assert.ElementsMatch(t, []string{"Čechy", "Brno"}, lookup.calls)
}

func TestApplyExonyms_LegacyStripsUnencodableMarks(t *testing.T) {
	ed := exonymEditor(parser.Legacy())
	lookup := &fakeLookup{answers: map[string]string{
		"Čechy": "Čechy",
		"Brno":  "Łódź",
	}}

	n, err := ed.ApplyExonyms(context.Background(), lookup, ExonymRequest{
		SourceCulture: "czech",
		TargetCulture: "polish",
		Language:      "pl",
		Workers:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, "Cechy", ed.Tree().Find("k_bohemia").Names["polish"])
	// Ł has no decomposition, so the name cannot be made legacy-safe.
	assert.False(t, ed.Tree().Find("c_brno").HasName("polish"))
}

func TestApplyExonyms_RequiresCultures(t *testing.T) {
	_, err := newEditor().ApplyExonyms(context.Background(), &fakeLookup{}, ExonymRequest{TargetCulture: "english", Language: "en"})
	assert.Error(t, err)
}
