package titles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// IntegrityReport is the outcome of checking an overlay tree against a master tree.
type IntegrityReport struct {
	Valid bool
	// Violations maps a title id to its messages joined by "; ".
	Violations map[string]string
	// Order lists violating ids in the order they were found.
	Order []string
}

func (r *IntegrityReport) add(id, msg string) {
	if prev, ok := r.Violations[id]; ok {
		r.Violations[id] = prev + "; " + msg
		return
	}
	r.Violations[id] = msg
	r.Order = append(r.Order, id)
}

// CheckIntegrity validates overlay against master. Each overlay id is checked
// once; the first structural problem (duplicate, unknown, reparented) ends the
// checks for that id, name problems are all reported.
func CheckIntegrity(overlay, master *Tree) *IntegrityReport {
	report := &IntegrityReport{Violations: make(map[string]string)}

	all := overlay.All()
	counts := make(map[string]int, len(all))
	for _, t := range all {
		counts[t.ID]++
	}

	checked := make(map[string]bool, len(all))
	for _, t := range all {
		if checked[t.ID] {
			continue
		}
		checked[t.ID] = true

		if counts[t.ID] > 1 {
			report.add(t.ID, "defined multiple times")
			continue
		}

		ref := master.Find(t.ID)
		if ref == nil {
			report.add(t.ID, "master does not contain this title")
			continue
		}

		if t.ParentID != ref.ParentID {
			report.add(t.ID, fmt.Sprintf("different parent (%s should be %s)", parentLabel(t.ParentID), parentLabel(ref.ParentID)))
			continue
		}

		cultures := make([]string, 0, len(t.Names))
		for culture := range t.Names {
			cultures = append(cultures, culture)
		}
		sort.Strings(cultures)

		for _, culture := range cultures {
			name := t.Names[culture]
			if masterName, ok := ref.Names[culture]; ok && masterName == name {
				report.add(t.ID, "redundant name for "+culture)
			}
			if strings.Contains(name, "?") {
				report.add(t.ID, "invalid character for "+culture)
			}
		}
	}

	for _, id := range report.Order {
		log.Warn().Str("title", id).Msg(report.Violations[id])
	}

	report.Valid = len(report.Violations) == 0
	return report
}

func parentLabel(id string) string {
	if id == "" {
		return "none"
	}
	return id
}
