package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ManifestName is the project manifest file name.
	ManifestName = "project.yml"
	// LockfileName is the resolved-dependency file written next to the manifest.
	LockfileName = "project.lock"
	// DefaultEntry is used when the manifest names no entry file.
	DefaultEntry = "main.tl"
)

// Manifest represents the parsed contents of project.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Entry        string
	Include      []string
	Dependencies map[string]*DependencySpec
	Settings     Settings
}

// Settings tune how the project is lexed and run.
type Settings struct {
	MaxCallDepth int
	LenientLexer bool
}

// DependencySpec describes a dependency descriptor in the manifest. Exactly
// one of Path and Git is set; Rev, Tag and Branch pin a git source.
type DependencySpec struct {
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Dir returns the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// EntryPath resolves the entry file against the manifest directory.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Entry)
}

// IncludePaths resolves include entries against the manifest directory.
func (m *Manifest) IncludePaths() []string {
	out := make([]string, 0, len(m.Include))
	for _, inc := range m.Include {
		out = append(out, m.resolve(inc))
	}
	return out
}

// DependencyNames lists dependencies in a stable order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.Dir(), filepath.FromSlash(path))
}

// LoadManifest parses project.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks upward from start looking for project.yml. It returns an
// empty path and no error when none exists.
func FindManifest(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", start, err)
	}
	dir := filepath.Clean(abs)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("manifest: stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

var projectNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	} else if !projectNamePattern.MatchString(m.Name) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("name %q must start with a letter or underscore and contain only letters, digits, '_' or '-'", m.Name))
	}
	if filepath.Ext(m.Entry) != ".tl" {
		errs.Issues = append(errs.Issues, fmt.Sprintf("entry %q must be a .tl file", m.Entry))
	}
	for i, inc := range m.Include {
		if filepath.Ext(inc) != ".tl" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("include[%d] %q must be a .tl file", i, inc))
		}
	}
	if m.Settings.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "settings.max_call_depth must not be negative")
	}
	for _, name := range m.DependencyNames() {
		if name == m.Name {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependency %q cannot share the project name", name))
		}
		for _, issue := range m.Dependencies[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependency %q: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d == nil {
		return []string{"must specify git or path"}
	}
	switch {
	case d.Path != "" && d.Git != "":
		errs = append(errs, "path dependencies cannot also specify git")
	case d.Path == "" && d.Git == "":
		errs = append(errs, "must specify git or path")
	}
	pins := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			pins++
		}
	}
	if pins > 0 && d.Git == "" {
		errs = append(errs, "rev, tag and branch apply only to git dependencies")
	}
	if pins > 1 {
		errs = append(errs, "specify at most one of rev, tag or branch")
	}
	return errs
}

// IsGit reports whether the dependency is fetched from a git remote.
func (d *DependencySpec) IsGit() bool {
	return d != nil && d.Git != ""
}

// Reference describes the requested git revision for messages and lockfiles.
func (d *DependencySpec) Reference() string {
	switch {
	case d.Rev != "":
		return d.Rev
	case d.Tag != "":
		return d.Tag
	case d.Branch != "":
		return d.Branch
	default:
		return "HEAD"
	}
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Entry        string        `yaml:"entry"`
	Include      stringList    `yaml:"include"`
	Dependencies dependencyMap `yaml:"dependencies"`
	Settings     struct {
		MaxCallDepth int  `yaml:"max_call_depth"`
		LenientLexer bool `yaml:"lenient_lexer"`
	} `yaml:"settings"`
}

type dependencyMap map[string]*DependencySpec

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	entry := strings.TrimSpace(mf.Entry)
	if entry == "" {
		entry = DefaultEntry
	}
	deps := make(map[string]*DependencySpec, len(mf.Dependencies))
	for name, dep := range mf.Dependencies {
		deps[name] = dep.clone()
	}
	return &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Entry:        entry,
		Include:      mf.Include.Clone(),
		Dependencies: deps,
		Settings: Settings{
			MaxCallDepth: mf.Settings.MaxCallDepth,
			LenientLexer: mf.Settings.LenientLexer,
		},
	}
}

func (d *DependencySpec) clone() *DependencySpec {
	if d == nil {
		return nil
	}
	cloned := *d
	return &cloned
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, len(l))
	copy(out, l)
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			str = strings.TrimSpace(str)
			if str == "" {
				continue
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*dm = make(dependencyMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	result := make(dependencyMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = sanitizeSegment(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(valNode); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		result[key] = dep.clone()
	}
	*dm = result
	return nil
}

func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		// A bare string is shorthand for a path dependency.
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*d = DependencySpec{}
			return nil
		}
		*d = DependencySpec{Path: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Path   string `yaml:"path"`
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Path:   strings.TrimSpace(raw.Path),
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

// sanitizeSegment normalises a name used as a dependency key or cache path
// segment.
func sanitizeSegment(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
}
