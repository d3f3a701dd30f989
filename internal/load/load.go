package load

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

var ErrInvalidUTF8 = errors.New("schema is not valid UTF-8")

// Source is a schema read fully into memory.
type Source struct {
	// Path as given by the caller; "-" for standard input.
	Path string
	Text []byte
}

// Load reads the whole schema at path.
func Load(path string) (*Source, error) {
	if path == Stdin {
		return Read(path, os.Stdin)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema path %s: %w", path, err)
	}

	text, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}
	return newSource(path, text)
}

// Read loads a schema from r, recording name as its path.
func Read(name string, r io.Reader) (*Source, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return newSource(name, text)
}

func newSource(path string, text []byte) (*Source, error) {
	if !utf8.Valid(text) {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, ErrInvalidUTF8)
	}
	return &Source{Path: path, Text: text}, nil
}
