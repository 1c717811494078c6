package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"tinylang/interpreter-go/pkg/driver"
)

type dependencyInstaller struct {
	manifest     *driver.Manifest
	manifestRoot string
	cacheDir     string
	git          *gitFetcher

	previous  map[string]*driver.LockedPackage
	resolved  map[string]*driver.LockedPackage
	resolving map[string]bool
	logs      []string
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	var root string
	if manifest != nil {
		root = manifest.Dir()
	}
	return &dependencyInstaller{
		manifest:     manifest,
		manifestRoot: root,
		cacheDir:     cacheDir,
		git:          newGitFetcher(cacheDir),
	}
}

// Install resolves the manifest's dependencies, transitively, and rewrites
// lock.Packages with the result. It reports whether the lock changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	d.logs = []string{}
	if d.manifest == nil {
		return false, d.logs, nil
	}
	d.previous = make(map[string]*driver.LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil {
			d.previous[pkg.Name] = pkg
		}
	}
	d.resolved = make(map[string]*driver.LockedPackage)
	d.resolving = make(map[string]bool)

	if err := d.installAll(d.manifest); err != nil {
		return false, d.logs, err
	}

	desired := make([]*driver.LockedPackage, 0, len(d.resolved))
	for _, pkg := range d.resolved {
		desired = append(desired, pkg)
	}
	sort.SliceStable(desired, func(i, j int) bool {
		return desired[i].Name < desired[j].Name
	})

	changed := len(desired) != len(d.previous)
	for _, pkg := range desired {
		if current, ok := d.previous[pkg.Name]; !ok || !lockedPackageEqual(current, pkg) {
			changed = true
		}
	}
	lock.Packages = desired
	return changed, d.logs, nil
}

func (d *dependencyInstaller) installAll(manifest *driver.Manifest) error {
	for _, name := range manifest.DependencyNames() {
		if err := d.installDependency(manifest, name); err != nil {
			return err
		}
	}
	return nil
}

func (d *dependencyInstaller) installDependency(owner *driver.Manifest, name string) error {
	spec := owner.Dependencies[name]
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	if _, done := d.resolved[name]; done {
		return nil
	}
	if d.resolving[name] {
		return fmt.Errorf("dependency cycle detected at %s", name)
	}
	d.resolving[name] = true
	defer delete(d.resolving, name)

	var (
		pkg *driver.LockedPackage
		dir string
		err error
	)
	if spec.IsGit() {
		pkg, dir, err = d.resolveGit(name, spec)
	} else {
		pkg, dir, err = d.resolvePath(owner, name, spec)
	}
	if err != nil {
		return err
	}

	depManifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestName))
	if err != nil {
		return fmt.Errorf("dependency %q: %w", name, err)
	}
	pkg.Version = depManifest.Version
	if pkg.Checksum, err = dirChecksum(dir); err != nil {
		return fmt.Errorf("dependency %q: checksum %s: %w", name, dir, err)
	}

	if err := d.installAll(depManifest); err != nil {
		return err
	}
	for _, child := range depManifest.DependencyNames() {
		edge := driver.LockedDependency{Name: child}
		if resolved := d.resolved[child]; resolved != nil {
			edge.Version = resolved.Version
		}
		pkg.Dependencies = append(pkg.Dependencies, edge)
	}

	d.resolved[name] = pkg
	d.logs = append(d.logs, fmt.Sprintf("Resolved %s %s (%s)", name, displayVersion(pkg.Version), pkg.Source))
	return nil
}

func (d *dependencyInstaller) resolvePath(owner *driver.Manifest, name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	dir := filepath.FromSlash(spec.Path)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(owner.Dir(), dir)
	}
	dir = filepath.Clean(dir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, "", fmt.Errorf("dependency %q: path %s is not a directory", name, dir)
	}
	source := dir
	if rel, err := filepath.Rel(d.manifestRoot, dir); err == nil {
		source = filepath.ToSlash(rel)
	}
	return &driver.LockedPackage{Name: name, Source: "path+" + source}, dir, nil
}

// resolveGit reuses a locked commit whose checkout is still cached and
// fetches otherwise.
func (d *dependencyInstaller) resolveGit(name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	if locked := d.previous[name]; locked != nil {
		if url, commit, ok := locked.GitSource(); ok && url == spec.Git {
			dir := driver.GitCheckoutDir(d.cacheDir, name, commit)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return &driver.LockedPackage{Name: name, Source: locked.Source}, dir, nil
			}
		}
	}
	commit, dir, err := d.git.Fetch(name, spec)
	if err != nil {
		return nil, "", err
	}
	d.logs = append(d.logs, fmt.Sprintf("Fetched %s %s at %s", name, spec.Reference(), commit))
	return &driver.LockedPackage{
		Name:   name,
		Source: fmt.Sprintf("git+%s#%s", spec.Git, commit),
	}, dir, nil
}

func lockedPackageEqual(a, b *driver.LockedPackage) bool {
	if a.Name != b.Name || a.Version != b.Version || a.Source != b.Source || a.Checksum != b.Checksum {
		return false
	}
	if len(a.Dependencies) == 0 && len(b.Dependencies) == 0 {
		return true
	}
	return reflect.DeepEqual(a.Dependencies, b.Dependencies)
}

func displayVersion(version string) string {
	if version == "" {
		return "(unversioned)"
	}
	return version
}
