package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"landed-titles/internal/suggest"
	"landed-titles/internal/titles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []suggest.Suggestion{
	{TitleID: "k_bohemia", SourceCultureID: "bohemian", TargetCultureID: "moravian", SuggestedName: "Čechy\tx"},
}

func TestWriteSuggestions_TSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSuggestions(&buf, sample, FormatTSV))

	assert.Equal(t, "title_id\tsource_culture\ttarget_culture\tsuggested_name\nk_bohemia\tbohemian\tmoravian\tČechy\\tx\n", buf.String())
}

func TestWriteSuggestions_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSuggestions(&buf, sample, FormatJSON))

	var back []suggest.Suggestion
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, sample, back)
}

func TestExportViolations(t *testing.T) {
	r := &titles.IntegrityReport{
		Violations: map[string]string{"k_b": "defined multiple times", "k_a": "master does not contain this title"},
		Order:      []string{"k_b", "k_a"},
	}

	path := filepath.Join(t.TempDir(), "violations.tsv")
	require.NoError(t, ExportViolations(path, Violations(r), FormatTSV))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "title_id\tmessage\nk_b\tdefined multiple times\nk_a\tmaster does not contain this title\n", string(data))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
