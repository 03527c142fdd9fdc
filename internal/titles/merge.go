package titles

// Merge unions titles sharing an id. Titles are visited in pre-order, so the
// first-loaded node of each id becomes the base. A later duplicate only
// contributes name keys the base does not have yet, and children the base does
// not have yet. Earlier sources therefore always take precedence.
func Merge(roots []*Title) []*Title {
	m := merger{seen: make(map[string]*Title)}
	return m.keep(roots)
}

type merger struct {
	seen map[string]*Title
}

// keep returns the nodes of list that are first occurrences, with their
// subtrees merged. Duplicates are folded into their base.
func (m *merger) keep(list []*Title) []*Title {
	kept := make([]*Title, 0, len(list))
	for _, t := range list {
		if base, ok := m.seen[t.ID]; ok {
			m.fold(base, t)
			continue
		}
		m.seen[t.ID] = t
		kept = append(kept, t)
		t.Children = m.keep(t.Children)
	}
	return kept
}

// fold merges dup into base.
func (m *merger) fold(base, dup *Title) {
	for culture, name := range dup.Names {
		base.AddName(culture, name)
	}

	for _, c := range dup.Children {
		if existing, ok := m.seen[c.ID]; ok {
			m.fold(existing, c)
			continue
		}
		m.seen[c.ID] = c
		c.Children = m.keep(c.Children)
		base.Children = append(base.Children, c)
	}
}
