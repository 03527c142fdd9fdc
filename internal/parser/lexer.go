package parser

import (
	"strings"
	"unicode/utf8"
)

// TokenKind is the kind of a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenEquals
	TokenOpenBlock
	TokenCloseBlock
	TokenQuotedString
	TokenComment
)

var tokenNames = map[TokenKind]string{
	TokenEOF:          "end of input",
	TokenIdentifier:   "identifier",
	TokenEquals:       "'='",
	TokenOpenBlock:    "'{'",
	TokenCloseBlock:   "'}'",
	TokenQuotedString: "quoted string",
	TokenComment:      "comment",
}

func (k TokenKind) String() string {
	return tokenNames[k]
}

// Token is one lexical unit with its 1-based source position.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

const byteOrderMark = "\ufeff"

// Lexer produces tokens lazily from an in-memory source. A Lexer is good for
// one pass over one file; create a new one to restart.
type Lexer struct {
	src   string
	pos   int
	line  int
	col   int
	depth int
}

// NewLexer creates a lexer over src. A leading byte-order mark is skipped.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  strings.TrimPrefix(src, byteOrderMark),
		line: 1,
		col:  1,
	}
}

// Next returns the next significant token. Comments are skipped.
// After the last token it keeps returning TokenEOF.
func (l *Lexer) Next() (Token, error) {
	for {
		tok, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		if tok.Kind != TokenComment {
			return tok, nil
		}
	}
}

// All drains the lexer and returns every significant token up to (not including) EOF.
func (l *Lexer) All() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokenEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) scan() (Token, error) {
	l.skipSpace()

	if l.pos >= len(l.src) {
		if l.depth > 0 {
			return Token{}, malformed(l.line, l.col, "%d unterminated block(s) at end of input", l.depth)
		}
		return Token{Kind: TokenEOF, Line: l.line, Column: l.col}, nil
	}

	line, col := l.line, l.col
	c := l.src[l.pos]

	switch c {
	case '#':
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.advance()
		}
		return Token{Kind: TokenComment, Text: l.src[start:l.pos], Line: line, Column: col}, nil
	case '=':
		l.advance()
		return Token{Kind: TokenEquals, Text: "=", Line: line, Column: col}, nil
	case '{':
		l.advance()
		l.depth++
		return Token{Kind: TokenOpenBlock, Text: "{", Line: line, Column: col}, nil
	case '}':
		if l.depth == 0 {
			return Token{}, malformed(line, col, "unexpected '}' with no open block")
		}
		l.advance()
		l.depth--
		return Token{Kind: TokenCloseBlock, Text: "}", Line: line, Column: col}, nil
	case '"':
		l.advance()
		start := l.pos
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			l.advance()
		}
		if l.pos >= len(l.src) {
			return Token{}, malformed(line, col, "unterminated quoted string")
		}
		text := l.src[start:l.pos]
		l.advance()
		return Token{Kind: TokenQuotedString, Text: text, Line: line, Column: col}, nil
	}

	start := l.pos
	for l.pos < len(l.src) && !isDelimiter(l.src[l.pos]) {
		l.advance()
	}
	return Token{Kind: TokenIdentifier, Text: l.src[start:l.pos], Line: line, Column: col}, nil
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.advance()
	}
}

// advance moves past one rune, keeping line and column current.
func (l *Lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.pos++
		l.line++
		l.col = 1
		return
	}
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	l.col++
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDelimiter(c byte) bool {
	return isSpace(c) || c == '=' || c == '{' || c == '}' || c == '"' || c == '#'
}
