package main

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"tinylang/interpreter-go/pkg/driver"
)

func TestRunDirectFileNoManifest(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.tl"), `
int x = 2;
print(x + 1);
`)

	code, stdout, stderr := captureCLI(t, []string{"main.tl"})
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if stdout != "3\n" {
		t.Fatalf("stdout = %q, want %q", stdout, "3\n")
	}
}

func TestRunUsesManifestIncludes(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, driver.ManifestName), `
name: app
version: 0.1.0
include:
  - point.tl
`)
	writeFile(t, filepath.Join(dir, "point.tl"), `
class Point {
  int x;
  int y;
  ComeAndDo sum() { return x + y; }
}
`)
	writeFile(t, filepath.Join(dir, "main.tl"), `
Point p;
p.x = 4;
p.y = 5;
print(p.sum());
`)

	code, stdout, stderr := captureCLI(t, []string{"run"})
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if stdout != "9\n" {
		t.Fatalf("stdout = %q, want %q", stdout, "9\n")
	}
}

func TestRunWithoutManifestOrFileFails(t *testing.T) {
	chdir(t, t.TempDir())
	code, _, stderr := captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "requires a source file") {
		t.Fatalf("code %d, stderr %q", code, stderr)
	}
}

func TestRunReportsRuntimeErrors(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.tl"), `
print(1);
print(1 / 0);
`)

	code, stdout, stderr := captureCLI(t, []string{"run", "main.tl"})
	if code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if stdout != "1\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	want := "runtime: main.tl:2:9: DivisionByZero: division by zero\n"
	if stderr != want {
		t.Fatalf("stderr = %q, want %q", stderr, want)
	}
}

func TestRunReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.tl"), `
int x = 1
print(x);
`)

	code, stdout, stderr := captureCLI(t, []string{"main.tl"})
	if code != 1 || stdout != "" {
		t.Fatalf("code %d, stdout %q", code, stdout)
	}
	if !strings.HasPrefix(stderr, "error: main.tl:2:1: ") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestLenientFlagSkipsUnknownCharacters(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.tl"), `print(1);@`)

	code, _, stderr := captureCLI(t, []string{"main.tl"})
	if code != 1 || !strings.HasPrefix(stderr, "error: main.tl:1:10: ") {
		t.Fatalf("strict run: code %d, stderr %q", code, stderr)
	}

	code, stdout, stderr := captureCLI(t, []string{"--lenient", "main.tl"})
	if code != 0 {
		t.Fatalf("lenient run: code %d, stderr %q", code, stderr)
	}
	if stdout != "1\n" {
		t.Fatalf("stdout = %q", stdout)
	}
	if !strings.HasPrefix(stderr, "warning: main.tl:1:10") {
		t.Fatalf("expected warning, got %q", stderr)
	}
}

func TestTokensCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.tl"), `int x = 5;`)

	code, stdout, stderr := captureCLI(t, []string{"tokens", "main.tl"})
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 tokens, got %q", lines)
	}
	if lines[0] != "1:1\tTYPE_INT\t\"int\"" {
		t.Fatalf("first token line = %q", lines[0])
	}
	if !strings.Contains(lines[5], "\tEOF\t") {
		t.Fatalf("last token line = %q", lines[5])
	}
}

func TestASTCommand(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "main.tl"), `print(1 + 2);`)

	code, stdout, stderr := captureCLI(t, []string{"ast", "main.tl"})
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	for _, want := range []string{`"type": "PrintStatement"`, `"type": "BinaryExpression"`, `"operator": "+"`} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("ast output missing %s:\n%s", want, stdout)
		}
	}
}

func TestVersionAndUsage(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"--version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("version: code %d, stdout %q", code, stdout)
	}
	code, _, stderr := captureCLI(t, nil)
	if code != 1 || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("usage: code %d, stderr %q", code, stderr)
	}
	code, _, stderr = captureCLI(t, []string{"--bogus"})
	if code != 1 || !strings.Contains(stderr, "unknown flag --bogus") {
		t.Fatalf("bad flag: code %d, stderr %q", code, stderr)
	}
}

func TestDepsInstallPathDependencies(t *testing.T) {
	root := t.TempDir()
	t.Setenv(driver.HomeEnv, filepath.Join(root, "cache"))

	points := filepath.Join(root, "points")
	shapes := filepath.Join(root, "shapes")
	app := filepath.Join(root, "app")
	for _, dir := range []string{points, shapes, app} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	writeFile(t, filepath.Join(points, driver.ManifestName), `
name: points
version: 0.1.0
include:
  - point.tl
`)
	writeFile(t, filepath.Join(points, "point.tl"), `
class Point { int x; int y; }
`)
	writeFile(t, filepath.Join(shapes, driver.ManifestName), `
name: shapes
version: 0.3.0
include:
  - segment.tl
dependencies:
  points: ../points
`)
	writeFile(t, filepath.Join(shapes, "segment.tl"), `
class Segment {
  Point a;
  Point b;
  ComeAndDo width() { return b.x - a.x; }
}
`)
	writeFile(t, filepath.Join(app, driver.ManifestName), `
name: app
dependencies:
  shapes:
    path: ../shapes
`)
	writeFile(t, filepath.Join(app, "main.tl"), `
Segment s;
s.b.x = 7;
print(s.width());
`)
	chdir(t, app)

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("deps install: code %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "Created "+driver.LockfileName) {
		t.Fatalf("deps install stdout %q", stdout)
	}

	lock, err := driver.LoadLockfile(filepath.Join(app, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if len(lock.Packages) != 2 {
		t.Fatalf("expected 2 locked packages, got %#v", lock.Packages)
	}
	shapesPkg := lock.Find("shapes")
	if shapesPkg == nil || shapesPkg.Source != "path+../shapes" || shapesPkg.Version != "0.3.0" {
		t.Fatalf("unexpected shapes entry %#v", shapesPkg)
	}
	if len(shapesPkg.Dependencies) != 1 || shapesPkg.Dependencies[0] != (driver.LockedDependency{Name: "points", Version: "0.1.0"}) {
		t.Fatalf("unexpected shapes edges %#v", shapesPkg.Dependencies)
	}
	if pkg := lock.Find("points"); pkg == nil || pkg.Source != "path+../points" || !strings.HasPrefix(pkg.Checksum, "sha256:") {
		t.Fatalf("unexpected points entry %#v", pkg)
	}

	code, stdout, _ = captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "already up to date") {
		t.Fatalf("second install: code %d, stdout %q", code, stdout)
	}

	code, stdout, stderr = captureCLI(t, []string{"run"})
	if code != 0 {
		t.Fatalf("run: code %d, stderr %q", code, stderr)
	}
	if stdout != "7\n" {
		t.Fatalf("run stdout = %q", stdout)
	}
}

func TestDepsInstallAndRunGitDependency(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(root, "cache")
	t.Setenv(driver.HomeEnv, cache)

	repo := filepath.Join(root, "repo")
	if err := os.MkdirAll(repo, 0o755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}
	writeFile(t, filepath.Join(repo, driver.ManifestName), `
name: mathlib
version: 0.2.0
include:
  - double.tl
`)
	writeFile(t, filepath.Join(repo, "double.tl"), `
ComeAndDo double(n) { return n * 2; }
`)
	rev := initGitRepo(t, repo)

	app := filepath.Join(root, "app")
	if err := os.MkdirAll(app, 0o755); err != nil {
		t.Fatalf("mkdir app: %v", err)
	}
	writeFile(t, filepath.Join(app, driver.ManifestName), `
name: app
dependencies:
  mathlib:
    git: `+repo+`
    rev: `+rev+`
`)
	writeFile(t, filepath.Join(app, "main.tl"), `print(double(21));`)
	chdir(t, app)

	code, _, stderr := captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "tl deps install") {
		t.Fatalf("run before install: code %d, stderr %q", code, stderr)
	}

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("deps install: code %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "Fetched mathlib") {
		t.Fatalf("deps install stdout %q", stdout)
	}

	lock, err := driver.LoadLockfile(filepath.Join(app, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	pkg := lock.Find("mathlib")
	if pkg == nil {
		t.Fatalf("mathlib missing from lock: %#v", lock.Packages)
	}
	if want := "git+" + repo + "#" + rev; pkg.Source != want {
		t.Fatalf("source = %q, want %q", pkg.Source, want)
	}
	if pkg.Version != "0.2.0" {
		t.Fatalf("version = %q", pkg.Version)
	}
	if _, err := os.Stat(filepath.Join(driver.GitCheckoutDir(cache, "mathlib", rev), "double.tl")); err != nil {
		t.Fatalf("expected checkout: %v", err)
	}

	code, stdout, stderr = captureCLI(t, []string{"run"})
	if code != 0 {
		t.Fatalf("run: code %d, stderr %q", code, stderr)
	}
	if stdout != "42\n" {
		t.Fatalf("run stdout = %q", stdout)
	}
}

func TestDepsUpdateMovesBranchDependency(t *testing.T) {
	root := t.TempDir()
	t.Setenv(driver.HomeEnv, filepath.Join(root, "cache"))

	repo := filepath.Join(root, "repo")
	if err := os.MkdirAll(repo, 0o755); err != nil {
		t.Fatalf("mkdir repo: %v", err)
	}
	writeFile(t, filepath.Join(repo, driver.ManifestName), `
name: consts
version: 1.0.0
include:
  - answer.tl
`)
	writeFile(t, filepath.Join(repo, "answer.tl"), `ComeAndDo answer() { return 1; }`)
	first := initGitRepo(t, repo)

	app := filepath.Join(root, "app")
	if err := os.MkdirAll(app, 0o755); err != nil {
		t.Fatalf("mkdir app: %v", err)
	}
	writeFile(t, filepath.Join(app, driver.ManifestName), `
name: app
dependencies:
  consts:
    git: `+repo+`
    branch: master
`)
	writeFile(t, filepath.Join(app, "main.tl"), `print(answer());`)
	chdir(t, app)

	if code, _, stderr := captureCLI(t, []string{"deps", "install"}); code != 0 {
		t.Fatalf("deps install: code %d, stderr %q", code, stderr)
	}
	if _, stdout, _ := captureCLI(t, []string{"run"}); stdout != "1\n" {
		t.Fatalf("first run stdout = %q", stdout)
	}

	writeFile(t, filepath.Join(repo, "answer.tl"), `ComeAndDo answer() { return 2; }`)
	second := commitAll(t, repo, "bump")
	if second == first {
		t.Fatalf("expected a new commit")
	}

	code, stdout, _ := captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "already up to date") {
		t.Fatalf("install should keep the locked commit: code %d, stdout %q", code, stdout)
	}

	code, stdout, stderr := captureCLI(t, []string{"deps", "update", "consts"})
	if code != 0 {
		t.Fatalf("deps update: code %d, stderr %q", code, stderr)
	}
	lock, err := driver.LoadLockfile(filepath.Join(app, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if _, commit, ok := lock.Find("consts").GitSource(); !ok || commit != second {
		t.Fatalf("expected lock at %s, got %#v", second, lock.Find("consts"))
	}
	if _, stdout, _ := captureCLI(t, []string{"run"}); stdout != "2\n" {
		t.Fatalf("second run stdout = %q", stdout)
	}

	code, _, stderr = captureCLI(t, []string{"deps", "update", "nope"})
	if code != 1 || !strings.Contains(stderr, `"nope" not declared`) {
		t.Fatalf("unknown dependency: code %d, stderr %q", code, stderr)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	return commitAll(t, dir, "init")
}

func commitAll(t *testing.T, dir, message string) string {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("PlainOpen: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "tl CLI",
			Email: "tl@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}

	os.Stdout = stdout
	os.Stderr = stderr

	outBytes, err := io.ReadAll(rOut)
	if err != nil {
		t.Fatalf("stdout read: %v", err)
	}
	errBytes, err := io.ReadAll(rErr)
	if err != nil {
		t.Fatalf("stderr read: %v", err)
	}
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
