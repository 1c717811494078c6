package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tinylang/interpreter-go/pkg/driver"
	"tinylang/interpreter-go/pkg/interpreter"
	"tinylang/interpreter-go/pkg/lexer"
	"tinylang/interpreter-go/pkg/parser"
)

const cliToolVersion = "tl-cli 0.1.0-dev"

var errManifestNotFound = errors.New(driver.ManifestName + " not found")

// cliOptions holds flags accepted ahead of the subcommand.
type cliOptions struct {
	lenient bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, args, err := parseGlobalFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsage()
		return 1
	}
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:], opts)
	case "tokens":
		return runTokens(args[1:], opts)
	case "ast":
		return runAST(args[1:], opts)
	case "deps":
		return runDeps(args[1:])
	default:
		return runEntry(args, opts)
	}
}

func parseGlobalFlags(args []string) (cliOptions, []string, error) {
	var opts cliOptions
	for len(args) > 0 && strings.HasPrefix(args[0], "--") {
		switch args[0] {
		case "--lenient":
			opts.lenient = true
		case "--help", "--version":
			return opts, args, nil
		default:
			return opts, nil, fmt.Errorf("unknown flag %s", args[0])
		}
		args = args[1:]
	}
	return opts, args, nil
}

func runEntry(args []string, opts cliOptions) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "error: unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	if len(args) == 0 {
		manifest, err := loadManifestFrom(".")
		if err != nil {
			if errors.Is(err, errManifestNotFound) {
				fmt.Fprintf(os.Stderr, "error: tl run requires a source file (%v)\n", err)
				return 1
			}
			fmt.Fprintf(os.Stderr, "error: failed to load manifest: %v\n", err)
			return 1
		}
		return executeEntry(manifest.EntryPath(), manifest, opts)
	}

	candidate := strings.TrimSpace(args[0])
	if candidate == "" {
		fmt.Fprintln(os.Stderr, "error: tl run requires a source file")
		return 1
	}
	manifest, err := loadManifestFrom(candidate)
	switch {
	case err == nil:
	case errors.Is(err, errManifestNotFound):
		manifest = nil
	case looksLikePathCandidate(candidate):
		fmt.Fprintf(os.Stderr, "warning: unable to load manifest (%v); falling back to direct file execution\n", err)
		manifest = nil
	default:
		fmt.Fprintf(os.Stderr, "error: failed to load manifest: %v\n", err)
		return 1
	}
	return executeEntry(candidate, manifest, opts)
}

// executeEntry loads entry, through the project manifest when one governs
// it, and runs the resulting program.
func executeEntry(entry string, manifest *driver.Manifest, opts cliOptions) int {
	program, err := loadProgram(entry, manifest, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", interpreter.DescribeError(err))
		return 1
	}
	for _, warning := range program.Warnings {
		fmt.Fprintln(os.Stderr, warning.String())
	}

	interp := interpreter.New(interpreter.Options{
		Stdout: os.Stdout,
		Stdin:  os.Stdin,
	})
	if err := interp.EvaluateProgram(program); err != nil {
		fmt.Fprintf(os.Stderr, "runtime: %s\n", interpreter.DescribeError(err))
		return 1
	}
	return 0
}

func loadProgram(entry string, manifest *driver.Manifest, opts cliOptions) (*driver.Program, error) {
	loaderOpts := driver.LoaderOptions{Lenient: opts.lenient}
	if manifest == nil {
		return driver.NewLoader(loaderOpts).Load(entry)
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return nil, err
	}
	loaderOpts.Lockfile = lock
	if home, err := resolveHome(); err == nil {
		loaderOpts.CacheRoot = home
	}

	absEntry, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("resolve entry %s: %w", entry, err)
	}
	project := *manifest
	project.Entry = absEntry
	return driver.NewLoader(loaderOpts).LoadProject(&project)
}

func runTokens(args []string, opts cliOptions) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: tl tokens requires exactly one source file")
		return 1
	}
	tokens, err := tokenizeFile(args[0], opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", interpreter.DescribeError(err))
		return 1
	}
	for _, tok := range tokens {
		fmt.Fprintf(os.Stdout, "%d:%d\t%s\t%q\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tok.Lexeme)
	}
	return 0
}

func runAST(args []string, opts cliOptions) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "error: tl ast requires exactly one source file")
		return 1
	}
	tokens, err := tokenizeFile(args[0], opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", interpreter.DescribeError(err))
		return 1
	}
	stmts, err := parser.New(tokens, parser.NewClassRegistry()).Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", interpreter.DescribeError(err))
		return 1
	}
	encoded, err := json.MarshalIndent(stmts, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: encode ast: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stdout, string(encoded))
	return 0
}

func tokenizeFile(path string, opts cliOptions) ([]lexer.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	lx := lexer.New(string(data), lexer.Options{File: filepath.ToSlash(path), Lenient: opts.lenient})
	tokens, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	for _, warning := range lx.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", warning.Pos, warning.Message)
	}
	return tokens, nil
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	manifestPath, err := findManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func findManifest(start string) (string, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestName, start, errManifestNotFound)
	}
	return path, nil
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.Contains(arg, "/") || strings.Contains(arg, "\\") {
		return true
	}
	if filepath.Ext(arg) == ".tl" {
		return true
	}
	return strings.HasPrefix(arg, ".")
}

func resolveHome() (string, error) {
	home, err := filepath.Abs(driver.CacheRoot())
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", driver.HomeEnv, err)
	}
	return home, nil
}

func lockfilePath(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileName)
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lock, err := driver.LoadLockfile(lockfilePath(manifest))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if manifestHasGitDependencies(manifest) {
				return nil, fmt.Errorf("%s missing for %q; run `tl deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

func manifestHasGitDependencies(manifest *driver.Manifest) bool {
	for _, dep := range manifest.Dependencies {
		if dep.IsGit() {
			return true
		}
	}
	return false
}
