package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"landed-titles/internal/parser"
	"landed-titles/internal/suggest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const master = `e_byzantium = {
	greek = "Basileia"
	k_thrace = {
		greek = "Thraki"
		d_adrianople = { }
	}
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newEditor(groups ...suggest.CultureGroup) *Editor {
	return New(suggest.NewEngine(suggest.NewGroups(groups...)))
}

func TestLoadTitles_AccumulatesFirstWins(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "00_first.txt", master)
	second := writeFile(t, dir, "01_second.txt", `e_byzantium = { greek = "Romania" latin = "Imperium" }`)

	ed := newEditor()
	require.NoError(t, ed.LoadTitles(first))
	require.NoError(t, ed.LoadTitles(second))

	root := ed.Tree().Find("e_byzantium")
	require.NotNil(t, root)
	assert.Equal(t, map[string]string{"greek": "Basileia", "latin": "Imperium"}, root.Names)
	assert.Equal(t, 1, ed.Tree().Count("e_byzantium"))
	assert.Equal(t, 3, ed.Tree().Len())
	assert.Equal(t, parser.SchemaLegacy, ed.Schema().Kind)
}

func TestLoadTitles_MalformedLeavesTreeUntouched(t *testing.T) {
	dir := t.TempDir()
	ed := newEditor()
	require.NoError(t, ed.LoadTitles(writeFile(t, dir, "ok.txt", master)))

	err := ed.LoadTitles(writeFile(t, dir, "bad.txt", `k_broken = { greek = "open`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrMalformedInput))
	assert.Equal(t, 3, ed.Tree().Len())
}

func TestLoadTitles_MissingFile(t *testing.T) {
	err := newEditor().LoadTitles(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, errors.Is(err, parser.ErrIO))
}

func TestLoadTitlesDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", `e_byzantium = { greek = "Second" k_morea = { } }`)
	writeFile(t, dir, "a.txt", master)
	writeFile(t, dir, "_disabled.txt", `e_hidden = { }`)
	writeFile(t, dir, "notes.md", `e_notes = { }`)

	ed := newEditor()
	require.NoError(t, ed.LoadTitlesDir(context.Background(), dir, 4))

	assert.Equal(t, "Basileia", ed.Tree().Find("e_byzantium").Names["greek"])
	assert.NotNil(t, ed.Tree().Find("k_morea"))
	assert.Nil(t, ed.Tree().Find("e_hidden"))
	assert.Nil(t, ed.Tree().Find("e_notes"))
}

func TestLoadTitlesDir_AbortsOnParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", master)
	writeFile(t, dir, "b.txt", `k_x = {`)

	ed := newEditor()
	err := ed.LoadTitlesDir(context.Background(), dir, 2)
	assert.True(t, errors.Is(err, parser.ErrMalformedInput))
	assert.Zero(t, ed.Tree().Len())
}

func TestSaveTitles_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ed := newEditor()
	require.NoError(t, ed.LoadTitles(writeFile(t, dir, "in.txt", master)))

	out := filepath.Join(dir, "out.txt")
	require.NoError(t, ed.SaveTitles(out))

	assert.Equal(t, `e_byzantium = {
    greek = "Basileia"
    k_thrace = {
        greek = "Thraki"
        d_adrianople = {
        }
    }
}
`, readFile(t, out))

	again := newEditor()
	require.NoError(t, again.LoadTitles(out))
	assert.Equal(t, "Thraki", again.Tree().Find("k_thrace").Names["greek"])
}

func TestSaveTitles_CulturalSchemaWritesBOM(t *testing.T) {
	dir := t.TempDir()
	ed := newEditor()
	require.NoError(t, ed.LoadTitles(writeFile(t, dir, "in.txt", `k_bohemia = { cultural_names = { czech = "Čechy" } }`)))
	assert.Equal(t, parser.SchemaCultural, ed.Schema().Kind)

	out := filepath.Join(dir, "out.txt")
	require.NoError(t, ed.SaveTitles(out))

	got := readFile(t, out)
	assert.Equal(t, "\ufeffk_bohemia = {\n    cultural_names = {\n        czech = \"Čechy\"\n    }\n}\n", got)
}

func TestCheckIntegrity(t *testing.T) {
	dir := t.TempDir()
	ed := newEditor()
	require.NoError(t, ed.LoadTitles(writeFile(t, dir, "master.txt", master)))

	structural := writeFile(t, dir, "structural.txt", `e_byzantium = { k_thrace = { d_adrianople = { } } }`)
	valid, report, err := ed.CheckIntegrity(structural)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, report.Violations)

	overlay := writeFile(t, dir, "overlay.txt", `
e_byzantium = { greek = "Basileia" }
d_adrianople = { greek = "Edirne?" }
k_thrace = { }
k_thrace = { }
c_unknown = { }
`)
	valid, report, err = ed.CheckIntegrity(overlay)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Equal(t, []string{"e_byzantium", "d_adrianople", "k_thrace", "c_unknown"}, report.Order)
	assert.Equal(t, "redundant name for greek", report.Violations["e_byzantium"])
	assert.Equal(t, "different parent (none should be k_thrace)", report.Violations["d_adrianople"])
	assert.Equal(t, "defined multiple times", report.Violations["k_thrace"])
	assert.Equal(t, "master does not contain this title", report.Violations["c_unknown"])
}

func TestApplySuggestions(t *testing.T) {
	dir := t.TempDir()
	ed := newEditor(suggest.CultureGroup{Mode: suggest.EqualPriority, Cultures: []string{"bohemian", "moravian"}})
	require.NoError(t, ed.LoadTitles(writeFile(t, dir, "in.txt", `k_bohemia = { bohemian = "Praha" d_olomouc = { moravian = "Olomouc" bohemian = "Holomouc" } }`)))

	suggestions := ed.GetSuggestions()
	require.Len(t, suggestions, 1)
	assert.Equal(t, suggest.Suggestion{TitleID: "k_bohemia", SourceCultureID: "bohemian", TargetCultureID: "moravian", SuggestedName: "Praha"}, suggestions[0])

	assert.Equal(t, 1, ed.ApplySuggestions())
	assert.Equal(t, "Praha", ed.Tree().Find("k_bohemia").Names["moravian"])
	assert.Equal(t, "Holomouc", ed.Tree().Find("d_olomouc").Names["bohemian"])
	assert.Empty(t, ed.GetSuggestions())
}

func TestApplySuggestionsFrom_KeepsLiveEdits(t *testing.T) {
	dir := t.TempDir()
	ed := newEditor(suggest.CultureGroup{Mode: suggest.EqualPriority, Cultures: []string{"bohemian", "moravian"}})
	require.NoError(t, ed.LoadTitles(writeFile(t, dir, "live.txt", `k_bohemia = { german = "Boehmen" moravian = "Morava" } d_praha = { }`)))

	baseline := writeFile(t, dir, "baseline.txt", `k_bohemia = { bohemian = "Cechy" } d_praha = { bohemian = "Praha" } d_elsewhere = { bohemian = "X" }`)
	n, err := ed.ApplySuggestionsFrom(baseline)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, map[string]string{"german": "Boehmen", "moravian": "Morava"}, ed.Tree().Find("k_bohemia").Names)
	assert.Equal(t, map[string]string{"moravian": "Praha"}, ed.Tree().Find("d_praha").Names)
	assert.Nil(t, ed.Tree().Find("d_elsewhere"))
}

func TestRemoveNames(t *testing.T) {
	dir := t.TempDir()
	ed := newEditor()
	require.NoError(t, ed.LoadTitles(writeFile(t, dir, "in.txt", master)))

	assert.Equal(t, 2, ed.RemoveNames())
	assert.Empty(t, ed.Tree().Find("e_byzantium").Names)
	assert.Equal(t, 3, ed.Tree().Len())
}

func TestRemoveNamesFromFile(t *testing.T) {
	dir := t.TempDir()
	ed := newEditor()
	require.NoError(t, ed.LoadTitles(writeFile(t, dir, "in.txt", `k_x = { french = "X" german = "Y" } k_y = { french = "Z" }`)))

	n, err := ed.RemoveNamesFromFile(writeFile(t, dir, "rm.txt", `k_x = { french = "anything" italian = "W" } k_missing = { french = "Q" }`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]string{"german": "Y"}, ed.Tree().Find("k_x").Names)
	assert.Equal(t, map[string]string{"french": "Z"}, ed.Tree().Find("k_y").Names)
}

func TestCleanFile_ReattachesComments(t *testing.T) {
	path := writeFile(t, t.TempDir(), "titles.txt", `# file header
e_byzantium={ # the empire
	bavarian = "Byzanz" # old name
	bavarian = "Byzanz" # second definition, comment ignored
	k_thrace = {
			french = "Thrace"
	}
}
`)

	require.NoError(t, newEditor().CleanFile(path))

	assert.Equal(t, `e_byzantium = {
    bavarian = "Byzanz" # old name
    k_thrace = {
        french = "Thrace"
    }
}
`, readFile(t, path))
}

// Comments are matched on exact text, so any change to the value or its
// spacing loses them. This is known behavior, not a regression.
func TestCleanFile_CommentLostWhenLineTextChanges(t *testing.T) {
	path := writeFile(t, t.TempDir(), "titles.txt", `k_thrace = { # kingdom
	french="Thrace" # spacing differs from the writer
}
`)

	require.NoError(t, newEditor().CleanFile(path))

	assert.Equal(t, `k_thrace = { # kingdom
    french = "Thrace"
}
`, readFile(t, path))
}

func TestCleanFile_KeepsCulturalEncoding(t *testing.T) {
	path := writeFile(t, t.TempDir(), "titles.txt", "\ufeffk_bohemia = {\n\tcultural_names = {\n\t\tczech = \"Čechy\" # native\n\t}\n}\n")

	require.NoError(t, newEditor().CleanFile(path))

	assert.Equal(t, "\ufeffk_bohemia = {\n    cultural_names = {\n        czech = \"Čechy\" # native\n    }\n}\n", readFile(t, path))
}
