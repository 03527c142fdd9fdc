package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cleanPattern is one step of the name cleaning table.
type cleanPattern struct {
	re   *regexp.Regexp
	repl string
}

// cleanPatterns strip the decorations lookup services put around a place name:
// "Wien (Stadt)", "Paris, France", "Kingdom of X", "Königreich X", "X County".
var cleanPatterns = []cleanPattern{
	{regexp.MustCompile(`\s*\([^)]*\)`), ""},
	{regexp.MustCompile(`\s*,.*$`), ""},
	{regexp.MustCompile(`(?i)^(kingdom|duchy|county|principality|empire|barony|province) of\s+`), ""},
	{regexp.MustCompile(`(?i)^(königreich|herzogtum|grafschaft|fürstentum)\s+`), ""},
	{regexp.MustCompile(`(?i)\s+(county|district|municipality|voivodeship|oblast|kreis)$`), ""},
	{regexp.MustCompile(`\s{2,}`), " "},
}

// CleanName normalizes a free-text place name: NFC form, qualifiers and tier
// words removed, whitespace collapsed.
func CleanName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	for _, p := range cleanPatterns {
		name = p.re.ReplaceAllString(name, p.repl)
	}
	return strings.TrimSpace(name)
}

// StripDiacritics removes combining marks, e.g. "Bohème" becomes "Boheme".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
