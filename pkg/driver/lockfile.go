package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source prefixes recorded in project.lock.
const (
	gitSourcePrefix  = "git+"
	pathSourcePrefix = "path+"
)

// Lockfile is project.lock: the manifest it belongs to, the tool that wrote
// it and one entry per resolved dependency, sorted by name.
type Lockfile struct {
	Path     string           `yaml:"-"`
	Root     string           `yaml:"root"`
	Tool     string           `yaml:"tool"`
	Packages []*LockedPackage `yaml:"packages"`
}

// LockedPackage is one resolved dependency. Source is "path+<dir>" with dir
// relative to the root manifest, or "git+<url>#<commit>".
type LockedPackage struct {
	Name         string             `yaml:"name"`
	Version      string             `yaml:"version,omitempty"`
	Source       string             `yaml:"source"`
	Checksum     string             `yaml:"checksum,omitempty"`
	Dependencies []LockedDependency `yaml:"dependencies,omitempty"`
}

// LockedDependency is an edge from a locked package to one of its own
// dependencies, with the version that was resolved for it.
type LockedDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// NewLockfile returns an empty lock for the manifest named root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:     strings.TrimSpace(root),
		Tool:     strings.TrimSpace(tool),
		Packages: []*LockedPackage{},
	}
}

// LoadLockfile parses and validates project.lock. A missing file surfaces as
// an error satisfying errors.Is(err, os.ErrNotExist).
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	lock := &Lockfile{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}
	lock.Path = abs
	lock.normalize()
	if err := lock.validate(); err != nil {
		return nil, fmt.Errorf("lockfile: %s: %w", abs, err)
	}
	return lock, nil
}

// WriteLockfile writes lock to path, or to lock.Path when path is empty. The
// file is replaced atomically and identical contents produce identical bytes.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		path = lock.Path
	}
	if path == "" {
		return fmt.Errorf("lockfile: missing path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	lock.Path = abs
	lock.normalize()
	if err := lock.validate(); err != nil {
		return fmt.Errorf("lockfile: %s: %w", abs, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+LockfileName+"-*")
	if err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the locked entry for name, or nil.
func (l *Lockfile) Find(name string) *LockedPackage {
	if l == nil {
		return nil
	}
	for _, pkg := range l.Packages {
		if pkg != nil && pkg.Name == name {
			return pkg
		}
	}
	return nil
}

// GitSource splits a "git+<url>#<commit>" source. ok is false for other
// source kinds.
func (p *LockedPackage) GitSource() (url, commit string, ok bool) {
	if p == nil || !strings.HasPrefix(p.Source, gitSourcePrefix) {
		return "", "", false
	}
	url, commit, found := strings.Cut(strings.TrimPrefix(p.Source, gitSourcePrefix), "#")
	if !found || url == "" || commit == "" {
		return "", "", false
	}
	return url, commit, true
}

// normalize drops nil entries, trims fields and sorts packages and edges by
// name.
func (l *Lockfile) normalize() {
	l.Root = strings.TrimSpace(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	pkgs := l.Packages[:0]
	for _, pkg := range l.Packages {
		if pkg == nil {
			continue
		}
		pkg.Name = strings.TrimSpace(pkg.Name)
		pkg.Version = strings.TrimSpace(pkg.Version)
		pkg.Source = strings.TrimSpace(pkg.Source)
		pkg.Checksum = strings.TrimSpace(pkg.Checksum)
		for k := range pkg.Dependencies {
			pkg.Dependencies[k].Name = strings.TrimSpace(pkg.Dependencies[k].Name)
			pkg.Dependencies[k].Version = strings.TrimSpace(pkg.Dependencies[k].Version)
		}
		sort.SliceStable(pkg.Dependencies, func(i, j int) bool {
			return pkg.Dependencies[i].Name < pkg.Dependencies[j].Name
		})
		pkgs = append(pkgs, pkg)
	}
	sort.SliceStable(pkgs, func(i, j int) bool {
		return pkgs[i].Name < pkgs[j].Name
	})
	l.Packages = pkgs
}

func (l *Lockfile) validate() error {
	if l.Root == "" {
		return fmt.Errorf("root is required")
	}
	seen := make(map[string]bool, len(l.Packages))
	for _, pkg := range l.Packages {
		if pkg.Name == "" {
			return fmt.Errorf("package without a name")
		}
		if seen[pkg.Name] {
			return fmt.Errorf("package %q listed twice", pkg.Name)
		}
		seen[pkg.Name] = true
		switch {
		case strings.HasPrefix(pkg.Source, pathSourcePrefix):
			if strings.TrimPrefix(pkg.Source, pathSourcePrefix) == "" {
				return fmt.Errorf("package %q: empty path source", pkg.Name)
			}
		case strings.HasPrefix(pkg.Source, gitSourcePrefix):
			if _, _, ok := pkg.GitSource(); !ok {
				return fmt.Errorf("package %q: git source %q needs <url>#<commit>", pkg.Name, pkg.Source)
			}
		default:
			return fmt.Errorf("package %q: unknown source %q", pkg.Name, pkg.Source)
		}
	}
	return nil
}
