package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput indicates the source text does not follow the block grammar.
	ErrMalformedInput = errors.New("malformed input")

	// ErrIO indicates a title file could not be read or written.
	ErrIO = errors.New("io error")
)

// MalformedInputError locates a grammar failure in the source text.
type MalformedInputError struct {
	Line   int
	Column int
	Msg    string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input at %d:%d: %s", e.Line, e.Column, e.Msg)
}

// Unwrap lets callers match with errors.Is(err, ErrMalformedInput).
func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

func malformed(line, col int, format string, args ...any) error {
	return &MalformedInputError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}
