package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_Tokens(t *testing.T) {
	tokens, err := NewLexer("k_x = { # comment\n  french = \"Royaume de France\" }").All()
	require.NoError(t, err)

	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []TokenKind{
		TokenIdentifier, TokenEquals, TokenOpenBlock,
		TokenIdentifier, TokenEquals, TokenQuotedString,
		TokenCloseBlock,
	}, kinds)

	assert.Equal(t, "Royaume de France", tokens[5].Text)
	assert.Equal(t, 2, tokens[3].Line)
	assert.Equal(t, 3, tokens[3].Column)
}

func TestLexer_CommentInsideQuotesIsText(t *testing.T) {
	tokens, err := NewLexer(`a = "b # c"`).All()
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "b # c", tokens[2].Text)
}

func TestLexer_VariableToken(t *testing.T) {
	tokens, err := NewLexer("@score = 10").All()
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "@score", tokens[0].Text)
}

func TestLexer_EOFIsSticky(t *testing.T) {
	lex := NewLexer("")
	for i := 0; i < 3; i++ {
		tok, err := lex.Next()
		require.NoError(t, err)
		assert.Equal(t, TokenEOF, tok.Kind)
	}
}

func TestLexer_Unterminated(t *testing.T) {
	_, err := NewLexer(`a = "b`).All()
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = NewLexer(`a = { b = { }`).All()
	assert.ErrorIs(t, err, ErrMalformedInput)
}
