package interpreter

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tinylang/interpreter-go/pkg/lexer"
	"tinylang/interpreter-go/pkg/parser"
)

const (
	fixtureManifestName = "manifest.yml"
	fixtureSourceName   = "source.tl"
)

// fixtureManifest describes one program under fixtures/exec.
type fixtureManifest struct {
	Description string   `yaml:"description"`
	Entry       string   `yaml:"entry"`
	Setup       []string `yaml:"setup"`
	Stdin       string   `yaml:"stdin"`
	Expect      struct {
		Stdout []string `yaml:"stdout"`
		Error  *struct {
			Kind    string `yaml:"kind"`
			Message string `yaml:"message"`
		} `yaml:"error"`
	} `yaml:"expect"`
}

func readFixtureManifest(t testingT, dir string) fixtureManifest {
	t.Helper()
	path := filepath.Join(dir, fixtureManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fixtureManifest{}
		}
		t.Fatalf("read manifest %s: %v", path, err)
	}
	var manifest fixtureManifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifest); err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("parse manifest %s: %v", path, err)
	}
	return manifest
}

// fixtureErrorKind names the family of err the way manifests spell it.
func fixtureErrorKind(err error) string {
	var lexErr *lexer.LexError
	if errors.As(err, &lexErr) {
		return "LexError"
	}
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return "ParseError"
	}
	var rtErr *RuntimeError
	if errors.As(err, &rtErr) {
		return string(rtErr.Kind)
	}
	return "error"
}
