// Package test holds helpers shared by package tests.
package test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"golang.org/x/tools/txtar"
)

// FixtureDir returns the absolute path of the repository testdata directory.
func FixtureDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "testdata")
}

func ReadGolden(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(FixtureDir(t), name)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}
	return string(b)
}

// ReadArchive parses a txtar fixture from testdata. Each case in the archive
// is a pair of files: <name>.proto holding the input and <name>.want holding
// the expected result.
func ReadArchive(t *testing.T, name string) map[string]Case {
	t.Helper()
	path := filepath.Join(FixtureDir(t), name)
	ar, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("failed to read archive %s: %v", path, err)
	}

	cases := make(map[string]Case)
	for _, f := range ar.Files {
		ext := filepath.Ext(f.Name)
		key := f.Name[:len(f.Name)-len(ext)]
		c := cases[key]
		switch ext {
		case ".proto":
			c.Input = string(f.Data)
		case ".want":
			c.Want = string(f.Data)
		default:
			t.Fatalf("archive %s: unexpected file %s", path, f.Name)
		}
		cases[key] = c
	}
	return cases
}

type Case struct {
	Input string
	Want  string
}
