package parser

// Attribute is an opaque field captured from a title block (color, capital, flags, ...).
// The core never interprets it; it is written back verbatim.
type Attribute struct {
	// Key is the field name as it appeared in the source.
	Key string
	// Value is the raw value text. Block values are kept in their flattened form, e.g. "{ 120 45 30 }".
	Value string
	// Quoted reports whether the scalar value was a quoted string.
	Quoted bool
}

// TitleEntity is the raw parse tree node for one landed title block.
type TitleEntity struct {
	// ID is the title identifier (tier prefix, underscore, slug).
	ID string
	// ParentID is the id of the enclosing title block, empty for top-level titles.
	ParentID string
	// Names maps culture id to the localized name string.
	Names map[string]string
	// Attributes holds the opaque known fields in source order.
	Attributes []Attribute
	// Children are the nested title blocks in source order.
	Children []*TitleEntity
}

// NewTitleEntity creates an entity with an initialized name map.
func NewTitleEntity(id, parentID string) *TitleEntity {
	return &TitleEntity{
		ID:       id,
		ParentID: parentID,
		Names:    make(map[string]string),
	}
}

// ParseResult holds parsing output for a single file.
type ParseResult struct {
	// FilePath is the path the source was read from, empty for in-memory sources.
	FilePath string
	// Schema is the variant detected for the file.
	Schema Schema
	// Titles are the top-level title entities in source order.
	Titles []*TitleEntity
}
