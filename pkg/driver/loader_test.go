package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/lexer"
	"tinylang/interpreter-go/pkg/parser"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(strings.TrimLeft(contents, "\n")), 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestLoaderLoadSingleFile(t *testing.T) {
	t.Setenv(MaxCallDepthEnv, "")
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.tl": "int x = 1;\nprint(x);\n",
	})
	program, err := NewLoader(LoaderOptions{}).Load(filepath.Join(root, "main.tl"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(program.Statements) != 2 || len(program.Files) != 1 {
		t.Fatalf("unexpected program shape: %d statements, %d files", len(program.Statements), len(program.Files))
	}
	if span := program.Statements[1].Span(); span.File != "main.tl" || span.Line != 2 {
		t.Fatalf("unexpected span %s", span)
	}
}

func TestLoaderExpandsDependenciesIncludesThenEntry(t *testing.T) {
	t.Setenv(MaxCallDepthEnv, "")
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"geometry/project.yml": "name: geometry\ninclude: [point.tl]\n",
		"geometry/point.tl":    "class Point { int x; int y; }\n",
		"app/project.yml": `
name: app
include:
  - shapes.tl
dependencies:
  geometry: ../geometry
settings:
  max_call_depth: 64
`,
		"app/shapes.tl": "class Segment { Point a; Point b; }\n",
		"app/main.tl":   "Segment s;\nprint(s.a.x);\n",
	})
	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	program, err := NewLoader(LoaderOptions{}).LoadProject(manifest)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}

	var order []string
	for _, file := range program.Files {
		order = append(order, filepath.Base(file.Path))
	}
	if got := strings.Join(order, ","); got != "point.tl,shapes.tl,main.tl" {
		t.Fatalf("file order = %s", got)
	}
	if _, ok := program.Statements[2].(*ast.ObjectInstantiation); !ok {
		t.Fatalf("expected entry to see classes from earlier files, got %T", program.Statements[2])
	}
	if names := strings.Join(program.Classes.Names(), ","); names != "Point,Segment" {
		t.Fatalf("class registry = %s", names)
	}
	if program.Settings.MaxCallDepth != 64 {
		t.Fatalf("MaxCallDepth = %d", program.Settings.MaxCallDepth)
	}
}

func TestLoaderDetectsDependencyCycles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a/project.yml": "name: a\ndependencies:\n  b: ../b\n",
		"a/main.tl":     "print(1);\n",
		"b/project.yml": "name: b\ndependencies:\n  a: ../a\n",
	})
	manifest, err := LoadManifest(filepath.Join(root, "a", ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	_, err = NewLoader(LoaderOptions{}).LoadProject(manifest)
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoaderSkipsDuplicateIncludes(t *testing.T) {
	t.Setenv(MaxCallDepthEnv, "")
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"project.yml": "name: dup\ninclude: [lib.tl, ./lib.tl]\n",
		"lib.tl":      "ComeAndDo one() { return 1; }\n",
		"main.tl":     "print(one());\n",
	})
	manifest, err := LoadManifest(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	program, err := NewLoader(LoaderOptions{}).LoadProject(manifest)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if len(program.Files) != 2 {
		t.Fatalf("expected lib.tl once plus main.tl, got %d files", len(program.Files))
	}
}

func TestLoaderGitDependencyRequiresInstall(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"project.yml": "name: app\ndependencies:\n  vectors:\n    git: https://example.com/vectors.git\n",
		"main.tl":     "print(1);\n",
	})
	manifest, err := LoadManifest(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	_, err = NewLoader(LoaderOptions{CacheRoot: t.TempDir()}).LoadProject(manifest)
	if err == nil || !strings.Contains(err.Error(), "deps install") {
		t.Fatalf("expected install hint, got %v", err)
	}
}

func TestLoaderResolvesLockedGitCheckout(t *testing.T) {
	t.Setenv(MaxCallDepthEnv, "")
	root := t.TempDir()
	cache := t.TempDir()
	checkout := GitCheckoutDir(cache, "vectors", "abc123")
	writeFiles(t, root, map[string]string{
		"project.yml": "name: app\ndependencies:\n  vectors:\n    git: https://example.com/vectors.git\n",
		"main.tl":     "Vec v;\n",
	})
	writeFiles(t, checkout, map[string]string{
		"project.yml": "name: vectors\ninclude: [vec.tl]\n",
		"vec.tl":      "class Vec { float x; }\n",
	})
	lock := NewLockfile("app", "tl")
	lock.Packages = append(lock.Packages, &LockedPackage{Name: "vectors", Source: "git+https://example.com/vectors.git#abc123"})

	manifest, err := LoadManifest(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	program, err := NewLoader(LoaderOptions{CacheRoot: cache, Lockfile: lock}).LoadProject(manifest)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
}

func TestLoaderLenientWarnings(t *testing.T) {
	t.Setenv(MaxCallDepthEnv, "")
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"main.tl": "print(1); @\n"})

	_, err := NewLoader(LoaderOptions{}).Load(filepath.Join(root, "main.tl"))
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected LexError in strict mode, got %v", err)
	}

	program, err := NewLoader(LoaderOptions{Lenient: true}).Load(filepath.Join(root, "main.tl"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(program.Warnings) != 1 || program.Warnings[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning, got %#v", program.Warnings)
	}
	if got := program.Warnings[0].Location.String(); got != "main.tl:1:11" {
		t.Fatalf("warning location = %s", got)
	}
}

func TestLoaderReportsParseErrors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"main.tl": "print(1)\n"})
	_, err := NewLoader(LoaderOptions{}).Load(filepath.Join(root, "main.tl"))
	var parseErr *parser.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Pos.File != "main.tl" {
		t.Fatalf("expected file in position, got %s", parseErr.Pos)
	}
}

func TestMaxCallDepthEnvironmentOverride(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"main.tl": "print(1);\n"})

	t.Setenv(MaxCallDepthEnv, "12")
	program, err := NewLoader(LoaderOptions{}).Load(filepath.Join(root, "main.tl"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if program.Settings.MaxCallDepth != 12 {
		t.Fatalf("MaxCallDepth = %d", program.Settings.MaxCallDepth)
	}

	t.Setenv(MaxCallDepthEnv, "lots")
	if _, err := NewLoader(LoaderOptions{}).Load(filepath.Join(root, "main.tl")); err == nil {
		t.Fatalf("expected error for invalid override")
	}
}

func TestCacheRootHonoursEnvironment(t *testing.T) {
	t.Setenv(HomeEnv, "/tmp/tl-home")
	if got := CacheRoot(); got != "/tmp/tl-home" {
		t.Fatalf("CacheRoot = %q", got)
	}
}
