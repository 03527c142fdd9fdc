// Package report exports suggestion and integrity results for review outside the tool.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"landed-titles/internal/suggest"
	"landed-titles/internal/titles"

	"github.com/rs/zerolog/log"
)

// Format is an export file format.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "tsv" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Violation is one integrity problem in export form.
type Violation struct {
	TitleID string `json:"title_id"`
	Message string `json:"message"`
}

// Violations flattens a report in discovery order.
func Violations(r *titles.IntegrityReport) []Violation {
	out := make([]Violation, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, Violation{TitleID: id, Message: r.Violations[id]})
	}
	return out
}

// WriteSuggestions writes suggestions in the given format.
func WriteSuggestions(w io.Writer, suggestions []suggest.Suggestion, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, suggestions)
	}

	if _, err := fmt.Fprintln(w, "title_id\tsource_culture\ttarget_culture\tsuggested_name"); err != nil {
		return err
	}
	for _, s := range suggestions {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			s.TitleID,
			s.SourceCultureID,
			s.TargetCultureID,
			escapeTSV(s.SuggestedName),
		); err != nil {
			return err
		}
	}
	return nil
}

// WriteViolations writes integrity violations in the given format.
func WriteViolations(w io.Writer, violations []Violation, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, violations)
	}

	if _, err := fmt.Fprintln(w, "title_id\tmessage"); err != nil {
		return err
	}
	for _, v := range violations {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", v.TitleID, escapeTSV(v.Message)); err != nil {
			return err
		}
	}
	return nil
}

// ExportSuggestions writes suggestions to outputPath.
func ExportSuggestions(outputPath string, suggestions []suggest.Suggestion, format Format) error {
	return export(outputPath, len(suggestions), func(w io.Writer) error {
		return WriteSuggestions(w, suggestions, format)
	})
}

// ExportViolations writes violations to outputPath.
func ExportViolations(outputPath string, violations []Violation, format Format) error {
	return export(outputPath, len(violations), func(w io.Writer) error {
		return WriteViolations(w, violations, format)
	})
}

func export(outputPath string, n int, write func(io.Writer) error) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	log.Info().Str("path", outputPath).Int("entries", n).Msg("Exported report")
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
