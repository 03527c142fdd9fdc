package titles

import (
	"maps"

	"landed-titles/internal/parser"
)

// FromEntities maps parsed entities to domain titles. Name maps and attribute
// slices are copied so the two trees never share state.
func FromEntities(entities []*parser.TitleEntity) []*Title {
	var out []*Title
	for _, e := range entities {
		out = append(out, fromEntity(e))
	}
	return out
}

func fromEntity(e *parser.TitleEntity) *Title {
	t := NewTitle(e.ID, e.ParentID)
	maps.Copy(t.Names, e.Names)
	if len(e.Attributes) > 0 {
		t.Attributes = append([]parser.Attribute(nil), e.Attributes...)
	}
	t.Children = FromEntities(e.Children)
	return t
}

// ToEntities maps domain titles back to writer entities.
func ToEntities(titles []*Title) []*parser.TitleEntity {
	var out []*parser.TitleEntity
	for _, t := range titles {
		e := parser.NewTitleEntity(t.ID, t.ParentID)
		maps.Copy(e.Names, t.Names)
		if len(t.Attributes) > 0 {
			e.Attributes = append([]parser.Attribute(nil), t.Attributes...)
		}
		e.Children = ToEntities(t.Children)
		out = append(out, e)
	}
	return out
}

// TreeFromResult builds a tree from one parsed file, without merging.
func TreeFromResult(result *parser.ParseResult) *Tree {
	return NewTree(FromEntities(result.Titles)...)
}
