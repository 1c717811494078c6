package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"tinylang/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: tl deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "error: tl deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	case "update":
		return runDepsUpdate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "error: unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// depsContext is the state shared by install and update.
type depsContext struct {
	manifest    *driver.Manifest
	cacheDir    string
	lock        *driver.Lockfile
	lockCreated bool
}

func prepareDeps() (*depsContext, bool) {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: unable to locate %s: %v\n", driver.ManifestName, err)
		return nil, false
	}
	cacheDir, err := resolveHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, false
	}

	ctx := &depsContext{manifest: manifest, cacheDir: cacheDir}
	path := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(path)
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "error: lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return nil, false
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		ctx.lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "error: failed to read lockfile: %v\n", err)
		return nil, false
	}
	lock.Path = path
	lock.Tool = cliToolVersion
	ctx.lock = lock
	return ctx, true
}

func runDepsInstall() int {
	ctx, ok := prepareDeps()
	if !ok {
		return 1
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", ctx.manifest.Path)
	fmt.Fprintf(os.Stdout, "Root project: %s\n", ctx.manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(ctx.manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", ctx.cacheDir)

	installer := newDependencyInstaller(ctx.manifest, ctx.cacheDir)
	changed, logs, err := installer.Install(ctx.lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || ctx.lockCreated {
		action := "Updated"
		if ctx.lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(ctx.lock, ctx.lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, ctx.lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, ctx.lock.Path)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

// runDepsUpdate drops the named lock entries (all of them when no names are
// given) and resolves again, so git dependencies move to their current
// revision.
func runDepsUpdate(targets []string) int {
	ctx, ok := prepareDeps()
	if !ok {
		return 1
	}

	updateSet := make(map[string]struct{})
	for _, target := range targets {
		if _, declared := ctx.manifest.Dependencies[target]; !declared {
			fmt.Fprintf(os.Stderr, "error: dependency %q not declared in manifest\n", target)
			return 1
		}
		updateSet[target] = struct{}{}
	}

	if len(updateSet) == 0 {
		ctx.lock.Packages = nil
	} else {
		kept := make([]*driver.LockedPackage, 0, len(ctx.lock.Packages))
		for _, pkg := range ctx.lock.Packages {
			if pkg == nil {
				continue
			}
			if _, drop := updateSet[pkg.Name]; drop {
				continue
			}
			kept = append(kept, pkg)
		}
		ctx.lock.Packages = kept
	}

	installer := newDependencyInstaller(ctx.manifest, ctx.cacheDir)
	changed, logs, err := installer.Install(ctx.lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to update dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || ctx.lockCreated {
		if err := driver.WriteLockfile(ctx.lock, ctx.lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Updated %s: %s\n", driver.LockfileName, ctx.lock.Path)
	} else {
		fmt.Fprintln(os.Stdout, "Dependencies already up to date.")
	}
	return 0
}
