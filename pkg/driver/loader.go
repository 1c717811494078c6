package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tinylang/interpreter-go/pkg/ast"
	"tinylang/interpreter-go/pkg/lexer"
	"tinylang/interpreter-go/pkg/parser"
)

const (
	// HomeEnv overrides the dependency cache root.
	HomeEnv = "TL_HOME"
	// MaxCallDepthEnv overrides settings.max_call_depth.
	MaxCallDepthEnv = "TL_MAX_CALL_DEPTH"
)

// SourceFile is one parsed file of a program.
type SourceFile struct {
	Path       string
	Statements []ast.Statement
}

// Program is the fully expanded statement sequence handed to the
// interpreter: dependency files first, then includes, then the entry file.
type Program struct {
	Entry      string
	Manifest   *Manifest
	Files      []*SourceFile
	Statements []ast.Statement
	Classes    *parser.ClassRegistry
	Warnings   []Diagnostic
	Settings   Settings
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Lenient makes the lexer skip unknown characters with a warning.
	Lenient bool
	// CacheRoot holds git dependency checkouts. Defaults to CacheRoot().
	CacheRoot string
	// Lockfile resolves git dependencies. When nil the project's
	// project.lock is read on demand.
	Lockfile *Lockfile
}

// Loader reads and parses source files into a Program.
type Loader struct {
	opts LoaderOptions

	rootDir    string
	classes    *parser.ClassRegistry
	loaded     map[string]bool
	inProgress map[string]bool
	program    *Program
}

// NewLoader constructs a loader.
func NewLoader(opts LoaderOptions) *Loader {
	if opts.CacheRoot == "" {
		opts.CacheRoot = CacheRoot()
	}
	return &Loader{opts: opts}
}

// CacheRoot returns $TL_HOME, falling back to ~/.tl.
func CacheRoot() string {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		return home
	}
	if userHome, err := os.UserHomeDir(); err == nil && userHome != "" {
		return filepath.Join(userHome, ".tl")
	}
	return ".tl"
}

// GitCheckoutDir is where a git dependency pinned at commit is checked out.
func GitCheckoutDir(cacheRoot, name, commit string) string {
	return filepath.Join(cacheRoot, "git", sanitizeSegment(name), commit)
}

// Load parses a single source file as a whole program.
func (l *Loader) Load(entry string) (*Program, error) {
	if entry == "" {
		return nil, fmt.Errorf("loader: empty entry path")
	}
	entryPath, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve entry path: %w", err)
	}
	info, err := os.Stat(entryPath)
	if err != nil {
		return nil, fmt.Errorf("loader: stat entry %s: %w", entryPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("loader: entry path %s is a directory", entryPath)
	}

	l.reset(filepath.Dir(entryPath), entryPath)
	if err := l.loadFile(entryPath, l.opts.Lenient); err != nil {
		return nil, err
	}
	if err := applySettingsEnv(&l.program.Settings); err != nil {
		return nil, err
	}
	return l.program, nil
}

// LoadProject expands a manifest's dependencies, includes and entry.
func (l *Loader) LoadProject(manifest *Manifest) (*Program, error) {
	if manifest == nil {
		return nil, fmt.Errorf("loader: nil manifest")
	}
	l.reset(manifest.Dir(), manifest.EntryPath())
	l.program.Manifest = manifest
	l.program.Settings = manifest.Settings

	if err := l.loadProject(manifest, true); err != nil {
		return nil, err
	}
	if err := applySettingsEnv(&l.program.Settings); err != nil {
		return nil, err
	}
	return l.program, nil
}

func (l *Loader) reset(rootDir, entry string) {
	if abs, err := filepath.Abs(rootDir); err == nil {
		rootDir = abs
	}
	l.rootDir = rootDir
	l.classes = parser.NewClassRegistry()
	l.loaded = make(map[string]bool)
	l.inProgress = make(map[string]bool)
	l.program = &Program{Entry: entry, Classes: l.classes}
}

func (l *Loader) loadProject(manifest *Manifest, isRoot bool) error {
	if l.inProgress[manifest.Path] {
		return fmt.Errorf("loader: dependency cycle detected at %s", manifest.Path)
	}
	l.inProgress[manifest.Path] = true
	defer delete(l.inProgress, manifest.Path)

	lenient := l.opts.Lenient || manifest.Settings.LenientLexer
	for _, name := range manifest.DependencyNames() {
		dir, err := l.dependencyDir(manifest, name)
		if err != nil {
			return err
		}
		dep, err := LoadManifest(filepath.Join(dir, ManifestName))
		if err != nil {
			return fmt.Errorf("loader: dependency %q: %w", name, err)
		}
		if err := l.loadProject(dep, false); err != nil {
			return err
		}
	}
	for _, inc := range manifest.IncludePaths() {
		if err := l.loadFile(inc, lenient); err != nil {
			return err
		}
	}

	entry := manifest.EntryPath()
	if !isRoot {
		// Library dependencies often have no entry file.
		if _, err := os.Stat(entry); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	return l.loadFile(entry, lenient)
}

func (l *Loader) dependencyDir(manifest *Manifest, name string) (string, error) {
	spec := manifest.Dependencies[name]
	if !spec.IsGit() {
		return manifest.resolve(spec.Path), nil
	}
	lock := l.opts.Lockfile
	if lock == nil {
		var err error
		lock, err = LoadLockfile(filepath.Join(manifest.Dir(), LockfileName))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("loader: dependency %q is not installed; run 'tl deps install'", name)
			}
			return "", err
		}
	}
	pkg := lock.Find(name)
	_, commit, ok := pkg.GitSource()
	if !ok {
		return "", fmt.Errorf("loader: dependency %q is not locked; run 'tl deps install'", name)
	}
	dir := GitCheckoutDir(l.opts.CacheRoot, name, commit)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("loader: dependency %q checkout %s missing; run 'tl deps install'", name, dir)
	}
	return dir, nil
}

func (l *Loader) loadFile(path string, lenient bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	if l.loaded[abs] {
		return nil
	}
	l.loaded[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("loader: read %s: %w", abs, err)
	}
	display := l.displayPath(abs)
	lx := lexer.New(string(data), lexer.Options{File: display, Lenient: lenient})
	tokens, err := lx.Tokenize()
	if err != nil {
		return err
	}
	for _, warning := range lx.Warnings() {
		l.program.Warnings = append(l.program.Warnings, Diagnostic{
			Severity: SeverityWarning,
			Message:  warning.Message,
			Location: DiagnosticLocation{Path: warning.Pos.File, Line: warning.Pos.Line, Column: warning.Pos.Column},
		})
	}
	stmts, err := parser.New(tokens, l.classes).Parse()
	if err != nil {
		return err
	}
	l.program.Files = append(l.program.Files, &SourceFile{Path: abs, Statements: stmts})
	l.program.Statements = append(l.program.Statements, stmts...)
	return nil
}

func (l *Loader) displayPath(abs string) string {
	if rel, err := filepath.Rel(l.rootDir, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return abs
}

func applySettingsEnv(settings *Settings) error {
	raw := strings.TrimSpace(os.Getenv(MaxCallDepthEnv))
	if raw == "" {
		return nil
	}
	depth, err := strconv.Atoi(raw)
	if err != nil || depth < 0 {
		return fmt.Errorf("loader: %s must be a non-negative integer, got %q", MaxCallDepthEnv, raw)
	}
	settings.MaxCallDepth = depth
	return nil
}
