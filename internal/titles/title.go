// Package titles holds the in-memory landed title hierarchy and the algorithms
// run over it: merging layered sources and checking an overlay against a master.
package titles

import (
	"landed-titles/internal/parser"
)

// Tier is the rank encoded by the first character of a title id.
type Tier string

const (
	TierEmpire  Tier = "empire"
	TierKingdom Tier = "kingdom"
	TierDuchy   Tier = "duchy"
	TierCounty  Tier = "county"
	TierBarony  Tier = "barony"
	TierUnknown Tier = "unknown"
)

// TierOf returns the tier of a title id.
func TierOf(id string) Tier {
	if len(id) < 2 || id[1] != '_' {
		return TierUnknown
	}
	switch id[0] {
	case 'e':
		return TierEmpire
	case 'k':
		return TierKingdom
	case 'd':
		return TierDuchy
	case 'c':
		return TierCounty
	case 'b':
		return TierBarony
	}
	return TierUnknown
}

// Title is one node of the hierarchy. The parent is referenced by id only.
type Title struct {
	ID       string
	ParentID string
	Children []*Title
	Names    map[string]string
	// Attributes are carried through untouched for the writer.
	Attributes []parser.Attribute
}

// NewTitle creates a title with an empty name map.
func NewTitle(id, parentID string) *Title {
	return &Title{ID: id, ParentID: parentID, Names: make(map[string]string)}
}

// HasName reports whether the title has a name for culture.
func (t *Title) HasName(culture string) bool {
	_, ok := t.Names[culture]
	return ok
}

// AddName sets a name only when the culture has none yet. It reports whether it did.
func (t *Title) AddName(culture, name string) bool {
	if t.HasName(culture) {
		return false
	}
	if t.Names == nil {
		t.Names = make(map[string]string)
	}
	t.Names[culture] = name
	return true
}

// Tree owns a forest of titles.
type Tree struct {
	Roots []*Title

	index map[string]*Title
}

// NewTree creates a tree over roots.
func NewTree(roots ...*Title) *Tree {
	return &Tree{Roots: roots}
}

// Walk visits every title in pre-order (source order) until fn returns false.
func (tr *Tree) Walk(fn func(*Title) bool) {
	var walk func([]*Title) bool
	walk = func(ts []*Title) bool {
		for _, t := range ts {
			if !fn(t) || !walk(t.Children) {
				return false
			}
		}
		return true
	}
	walk(tr.Roots)
}

// All returns every title in pre-order, duplicates included.
func (tr *Tree) All() []*Title {
	var out []*Title
	tr.Walk(func(t *Title) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Len returns the number of titles in the tree.
func (tr *Tree) Len() int {
	n := 0
	tr.Walk(func(*Title) bool {
		n++
		return true
	})
	return n
}

// Find returns the first title with id, or nil. The id index is built lazily;
// code that edits Roots or Children directly must call Reindex afterwards.
func (tr *Tree) Find(id string) *Title {
	if tr.index == nil {
		tr.Reindex()
	}
	return tr.index[id]
}

// Parent resolves a title's parent through the id index.
func (tr *Tree) Parent(t *Title) *Title {
	if t.ParentID == "" {
		return nil
	}
	return tr.Find(t.ParentID)
}

// Count returns how many nodes carry id.
func (tr *Tree) Count(id string) int {
	n := 0
	tr.Walk(func(t *Title) bool {
		if t.ID == id {
			n++
		}
		return true
	})
	return n
}

// Append adds roots to the tree.
func (tr *Tree) Append(roots ...*Title) {
	tr.Roots = append(tr.Roots, roots...)
	tr.index = nil
}

// Merge collapses duplicate ids in the tree with first-wins name precedence.
func (tr *Tree) Merge() {
	tr.Roots = Merge(tr.Roots)
	tr.index = nil
}

// Reindex rebuilds the id index. The first node in pre-order wins for duplicate ids.
func (tr *Tree) Reindex() {
	tr.index = make(map[string]*Title)
	tr.Walk(func(t *Title) bool {
		if _, ok := tr.index[t.ID]; !ok {
			tr.index[t.ID] = t
		}
		return true
	})
}
