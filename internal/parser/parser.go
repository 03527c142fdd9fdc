package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// action is the parse decision taken for one `key = value` entry inside a title block.
type action int

const (
	// actionChild recurses into a nested title.
	actionChild action = iota
	// actionNameContainer reads every entry of the block as a cultural name.
	actionNameContainer
	// actionKnownField captures the value as an opaque attribute.
	actionKnownField
	// actionNameOrScalar reads the value as a name unless it looks like an integer.
	actionNameOrScalar
)

// dispatch classifies an entry by its key. block reports whether the value is a `{ ... }` block.
func (s Schema) dispatch(key string, block bool) action {
	switch {
	case block && IsTitleID(key):
		return actionChild
	case block && s.NameContainer != "" && key == s.NameContainer:
		return actionNameContainer
	case s.IsKnownField(key):
		return actionKnownField
	default:
		return actionNameOrScalar
	}
}

// Parser builds title entities from a token stream using one schema for the whole file.
type Parser struct {
	lex    *Lexer
	schema Schema
	peeked *Token
}

// NewParser creates a parser over src using the given schema.
func NewParser(src string, schema Schema) *Parser {
	return &Parser{lex: NewLexer(src), schema: schema}
}

// Parse parses every top-level title in src. On any grammar error the whole
// result is discarded.
func Parse(src string, schema Schema) ([]*TitleEntity, error) {
	return NewParser(src, schema).ParseAll()
}

// ParseString detects the schema of src and parses it.
func ParseString(src string) (*ParseResult, error) {
	schema := DetectSchema(src)
	titles, err := Parse(src, schema)
	if err != nil {
		return nil, err
	}
	return &ParseResult{Schema: schema, Titles: titles}, nil
}

// ParseFile reads path with the encoding of its detected schema and parses it.
func ParseFile(path string) (*ParseResult, error) {
	src, schema, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	titles, err := Parse(src, schema)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ParseResult{FilePath: path, Schema: schema, Titles: titles}, nil
}

// ParseAll iterates the top-level entries. Entries whose key is not a title id
// (`@variables`, stray tokens) are consumed and dropped.
func (p *Parser) ParseAll() ([]*TitleEntity, error) {
	var titles []*TitleEntity

	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case TokenEOF:
			return titles, nil
		case TokenIdentifier, TokenQuotedString:
		default:
			return nil, malformed(tok.Line, tok.Column, "unexpected %s at top level", tok.Kind)
		}

		hasValue, err := p.acceptEquals()
		if err != nil {
			return nil, err
		}
		if !hasValue {
			continue
		}

		next, err := p.peek()
		if err != nil {
			return nil, err
		}

		if next.Kind == TokenOpenBlock && IsTitleID(tok.Text) {
			p.consume()
			title, err := p.parseTitle(tok.Text, "")
			if err != nil {
				return nil, err
			}
			titles = append(titles, title)
			continue
		}

		if _, _, err := p.readValue(); err != nil {
			return nil, err
		}
	}
}

// parseTitle reads the body of a title block; the opening brace is already consumed.
func (p *Parser) parseTitle(id, parentID string) (*TitleEntity, error) {
	title := NewTitleEntity(id, parentID)

	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case TokenCloseBlock:
			return title, nil
		case TokenEOF:
			return nil, malformed(tok.Line, tok.Column, "unterminated block %s", id)
		case TokenIdentifier, TokenQuotedString:
		default:
			return nil, malformed(tok.Line, tok.Column, "unexpected %s in %s", tok.Kind, id)
		}

		key := tok.Text
		hasValue, err := p.acceptEquals()
		if err != nil {
			return nil, err
		}
		if !hasValue {
			// Bare list item; not part of the modeled subset.
			continue
		}

		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		block := next.Kind == TokenOpenBlock

		switch p.schema.dispatch(key, block) {
		case actionChild:
			p.consume()
			child, err := p.parseTitle(key, id)
			if err != nil {
				return nil, err
			}
			title.Children = append(title.Children, child)

		case actionNameContainer:
			p.consume()
			if err := p.parseNames(title); err != nil {
				return nil, err
			}

		case actionKnownField:
			value, quoted, err := p.readValue()
			if err != nil {
				return nil, err
			}
			title.Attributes = append(title.Attributes, Attribute{Key: key, Value: value, Quoted: quoted})

		case actionNameOrScalar:
			value, _, err := p.readValue()
			if err != nil {
				return nil, err
			}
			if block || looksLikeInteger(value) {
				continue
			}
			title.Names[key] = value
		}
	}
}

// parseNames reads a name container block; the opening brace is already consumed.
func (p *Parser) parseNames(title *TitleEntity) error {
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch tok.Kind {
		case TokenCloseBlock:
			return nil
		case TokenEOF:
			return malformed(tok.Line, tok.Column, "unterminated %s block in %s", p.schema.NameContainer, title.ID)
		case TokenIdentifier, TokenQuotedString:
		default:
			return malformed(tok.Line, tok.Column, "unexpected %s in %s", tok.Kind, p.schema.NameContainer)
		}

		hasValue, err := p.acceptEquals()
		if err != nil {
			return err
		}
		if !hasValue {
			continue
		}

		value, quoted, err := p.readValue()
		if err != nil {
			return err
		}
		if !quoted && strings.HasPrefix(value, "{") {
			continue
		}
		title.Names[tok.Text] = value
	}
}

// readValue consumes a scalar or a whole block. Blocks come back flattened as "{ a b = c }".
func (p *Parser) readValue() (string, bool, error) {
	tok, err := p.next()
	if err != nil {
		return "", false, err
	}

	switch tok.Kind {
	case TokenIdentifier:
		return tok.Text, false, nil
	case TokenQuotedString:
		return tok.Text, true, nil
	case TokenOpenBlock:
		text, err := p.readBlock()
		return text, false, err
	default:
		return "", false, malformed(tok.Line, tok.Column, "expected value, found %s", tok.Kind)
	}
}

func (p *Parser) readBlock() (string, error) {
	parts := []string{"{"}
	depth := 1

	for depth > 0 {
		tok, err := p.next()
		if err != nil {
			return "", err
		}

		switch tok.Kind {
		case TokenEOF:
			return "", malformed(tok.Line, tok.Column, "unterminated block")
		case TokenOpenBlock:
			depth++
			parts = append(parts, "{")
		case TokenCloseBlock:
			depth--
			parts = append(parts, "}")
		case TokenQuotedString:
			parts = append(parts, `"`+tok.Text+`"`)
		default:
			parts = append(parts, tok.Text)
		}
	}

	return strings.Join(parts, " "), nil
}

// acceptEquals consumes a '=' if it is next.
func (p *Parser) acceptEquals() (bool, error) {
	next, err := p.peek()
	if err != nil {
		return false, err
	}
	if next.Kind != TokenEquals {
		return false, nil
	}
	p.consume()
	return true, nil
}

func (p *Parser) next() (Token, error) {
	if p.peeked != nil {
		tok := *p.peeked
		p.peeked = nil
		return tok, nil
	}
	return p.lex.Next()
}

func (p *Parser) peek() (Token, error) {
	if p.peeked == nil {
		tok, err := p.lex.Next()
		if err != nil {
			return Token{}, err
		}
		p.peeked = &tok
	}
	return *p.peeked, nil
}

func (p *Parser) consume() {
	p.peeked = nil
}

// looksLikeInteger is the only value-kind check the grammar allows. A name made
// purely of digits is therefore read as a scalar and dropped.
func looksLikeInteger(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
