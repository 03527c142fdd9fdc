package suggest

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatchingMode decides which cultures of a group may receive a name from which source.
type MatchingMode int

const (
	// FirstOnlyPriority propagates only from the group's first culture.
	FirstOnlyPriority MatchingMode = iota
	// AscendingPriority propagates from a culture to the cultures listed after it.
	AscendingPriority
	// EqualPriority propagates from the first named culture to every other one.
	EqualPriority
)

var modeNames = map[MatchingMode]string{
	FirstOnlyPriority: "first_only",
	AscendingPriority: "ascending",
	EqualPriority:     "equal",
}

func (m MatchingMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MatchingMode(%d)", int(m))
}

// ParseMatchingMode reads a mode name as used in group files.
func ParseMatchingMode(s string) (MatchingMode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown matching mode %q", s)
}

// UnmarshalYAML accepts the mode names of String.
func (m *MatchingMode) UnmarshalYAML(node *yaml.Node) error {
	mode, err := ParseMatchingMode(node.Value)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// CultureGroup is a set of related cultures. The order of Cultures is their priority.
type CultureGroup struct {
	Name     string       `yaml:"name"`
	Mode     MatchingMode `yaml:"mode"`
	Cultures []string     `yaml:"cultures"`
}

// Groups is an immutable list of culture groups.
type Groups struct {
	list []CultureGroup
}

// NewGroups copies groups into an immutable configuration.
func NewGroups(groups ...CultureGroup) Groups {
	list := make([]CultureGroup, len(groups))
	for i, g := range groups {
		g.Cultures = slices.Clone(g.Cultures)
		list[i] = g
	}
	return Groups{list: list}
}

// Len returns the number of groups.
func (g Groups) Len() int {
	return len(g.list)
}

// All returns a copy of the groups.
func (g Groups) All() []CultureGroup {
	return NewGroups(g.list...).list
}

type groupFile struct {
	Groups []CultureGroup `yaml:"groups"`
}

// LoadGroups reads culture groups from a YAML file of the form
//
//	groups:
//	  - name: germanic
//	    mode: first_only
//	    cultures: [german, bavarian, franconian]
func LoadGroups(path string) (Groups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Groups{}, fmt.Errorf("read culture groups: %w", err)
	}

	var f groupFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Groups{}, fmt.Errorf("parse culture groups %s: %w", path, err)
	}

	for i, g := range f.Groups {
		if len(g.Cultures) < 2 {
			return Groups{}, fmt.Errorf("culture group %d (%s) needs at least two cultures", i, g.Name)
		}
	}

	return NewGroups(f.Groups...), nil
}

// DefaultGroups returns the built-in culture groups.
func DefaultGroups() Groups {
	return NewGroups(
		CultureGroup{Name: "high_german", Mode: FirstOnlyPriority, Cultures: []string{"german", "bavarian", "franconian", "swabian", "thuringian"}},
		CultureGroup{Name: "low_german", Mode: AscendingPriority, Cultures: []string{"old_saxon", "low_saxon", "low_german"}},
		CultureGroup{Name: "czech", Mode: EqualPriority, Cultures: []string{"bohemian", "moravian"}},
		CultureGroup{Name: "brythonic_north", Mode: AscendingPriority, Cultures: []string{"scottish", "cumbric", "pictish"}},
		CultureGroup{Name: "gaelic", Mode: EqualPriority, Cultures: []string{"irish", "scottish_gaelic", "manx"}},
		CultureGroup{Name: "norse", Mode: AscendingPriority, Cultures: []string{"norse", "norwegian", "swedish", "danish", "icelandic"}},
		CultureGroup{Name: "occitan", Mode: EqualPriority, Cultures: []string{"occitan", "gascon", "provencal"}},
		CultureGroup{Name: "iberian", Mode: FirstOnlyPriority, Cultures: []string{"castillan", "leonese", "aragonese"}},
		CultureGroup{Name: "italian", Mode: FirstOnlyPriority, Cultures: []string{"italian", "lombard", "venetian", "tuscan", "sardinian"}},
		CultureGroup{Name: "east_slavic", Mode: EqualPriority, Cultures: []string{"russian", "ruthenian", "ilmenian", "severian", "volhynian"}},
		CultureGroup{Name: "greek", Mode: AscendingPriority, Cultures: []string{"greek", "pontic", "cappadocian"}},
	)
}
