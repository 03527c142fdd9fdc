package parser

import (
	"regexp"
	"sort"
	"strings"
)

// IndentWidth is the number of spaces a tab level becomes after formatting.
const IndentWidth = 4

// Serialize writes titles back to text in the given schema and formats the result.
func Serialize(titles []*TitleEntity, schema Schema) string {
	var sb strings.Builder
	for _, t := range titles {
		writeTitle(&sb, t, schema, 0)
	}
	return Format(sb.String())
}

func writeTitle(sb *strings.Builder, t *TitleEntity, schema Schema, depth int) {
	indent := strings.Repeat("\t", depth)
	inner := indent + "\t"

	sb.WriteString(indent + t.ID + " =\n" + indent + "{\n")

	for _, a := range t.Attributes {
		value := a.Value
		if a.Quoted {
			value = `"` + value + `"`
		}
		sb.WriteString(inner + a.Key + " = " + value + "\n")
	}

	if len(t.Names) > 0 {
		if schema.NameContainer != "" {
			sb.WriteString(inner + schema.NameContainer + " =\n" + inner + "{\n")
			writeNames(sb, t.Names, inner+"\t")
			sb.WriteString(inner + "}\n")
		} else {
			writeNames(sb, t.Names, inner)
		}
	}

	for _, c := range t.Children {
		writeTitle(sb, c, schema, depth+1)
	}

	sb.WriteString(indent + "}\n")
}

func writeNames(sb *strings.Builder, names map[string]string, indent string) {
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(indent + k + ` = "` + names[k] + "\"\n")
	}
}

var (
	leadingTabs     = regexp.MustCompile(`(?m)^\t+`)
	brokenBlockOpen = regexp.MustCompile(`=[ \t]*\r?\n[ \t]*\{`)
	spacedEquals    = regexp.MustCompile(`[ \t]*=[ \t]*`)
	topLevelHeader  = regexp.MustCompile(`^[^\s#=]+ = \{`)
)

// Format is the presentation pass over generated text. It converts tab
// indentation to spaces, joins `key =` / `{` line pairs, puts one space around
// every '=' outside quotes and separates top-level titles with a blank line.
func Format(text string) string {
	text = leadingTabs.ReplaceAllStringFunc(text, func(tabs string) string {
		return strings.Repeat(" ", len(tabs)*IndentWidth)
	})
	text = brokenBlockOpen.ReplaceAllString(text, "={")

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	out := make([]string, 0, len(lines)+len(lines)/8)

	for i, line := range lines {
		line = normalizeEquals(line)
		if i > 0 && topLevelHeader.MatchString(line) && strings.TrimSpace(out[len(out)-1]) != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n") + "\n"
}

// normalizeEquals rewrites '=' spacing only in the unquoted parts of line.
func normalizeEquals(line string) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
	parts := strings.Split(line[len(indent):], `"`)
	for i := 0; i < len(parts); i += 2 {
		parts[i] = spacedEquals.ReplaceAllString(parts[i], " = ")
	}
	return indent + strings.Join(parts, `"`)
}
