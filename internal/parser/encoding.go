package parser

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads a title file and decodes it with the encoding tied to its schema:
// Windows-1252 for legacy files, UTF-8 for cultural files.
func ReadSource(path string) (string, Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", Schema{}, fmt.Errorf("read %s: %w: %w", path, ErrIO, err)
	}

	// A BOM must not reach the single-byte decoder, it would turn into "ï»¿".
	raw = bytes.TrimPrefix(raw, utf8BOM)

	// The marker is plain ASCII, so detection works before decoding.
	schema := DetectSchema(string(raw))

	text, err := decode(raw, schema)
	if err != nil {
		return "", Schema{}, fmt.Errorf("decode %s: %w: %w", path, ErrIO, err)
	}
	return text, schema, nil
}

// WriteSource encodes text for the schema and writes it to path.
// Characters the legacy code page cannot represent are written as '?'.
func WriteSource(path, text string, schema Schema) error {
	data, err := encode(text, schema)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", path, ErrIO, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w: %w", path, ErrIO, err)
	}
	return nil
}

// ReadLines reads path as decoded lines without line terminators.
func ReadLines(path string) ([]string, Schema, error) {
	text, schema, err := ReadSource(path)
	if err != nil {
		return nil, Schema{}, err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, schema, nil
	}
	return strings.Split(text, "\n"), schema, nil
}

// WriteLines writes lines joined by newlines, with a trailing newline.
func WriteLines(path string, lines []string, schema Schema) error {
	return WriteSource(path, strings.Join(lines, "\n")+"\n", schema)
}

func decode(raw []byte, schema Schema) (string, error) {
	if schema.Kind == SchemaCultural {
		return string(raw), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func encode(text string, schema Schema) ([]byte, error) {
	if schema.Kind == SchemaCultural {
		return append(append([]byte{}, utf8BOM...), text...), nil
	}
	var buf bytes.Buffer
	buf.Grow(len(text))
	for _, r := range text {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		buf.WriteByte(b)
	}
	return buf.Bytes(), nil
}
