package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"tinylang/interpreter-go/pkg/driver"
)

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch clones the dependency, resolves the requested revision and leaves a
// checkout at driver.GitCheckoutDir. It returns the pinned commit and the
// checkout directory.
func (g *gitFetcher) Fetch(name string, spec *driver.DependencySpec) (string, string, error) {
	if g == nil {
		return "", "", errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return "", "", fmt.Errorf("dependency %q: git URL required", name)
	}

	baseDir := filepath.Dir(driver.GitCheckoutDir(g.cacheDir, name, "head"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	revision := gitRevisionFromSpec(spec)
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("dependency %q: resolve revision %s: %w", name, revision, err)
	}
	commit := hash.String()

	targetDir := driver.GitCheckoutDir(g.cacheDir, name, commit)
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return commit, targetDir, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return commit, targetDir, nil
}

func gitRevisionFromSpec(spec *driver.DependencySpec) plumbing.Revision {
	switch {
	case strings.TrimSpace(spec.Rev) != "":
		return plumbing.Revision(strings.TrimSpace(spec.Rev))
	case strings.TrimSpace(spec.Tag) != "":
		return plumbing.Revision("refs/tags/" + strings.TrimSpace(spec.Tag))
	case strings.TrimSpace(spec.Branch) != "":
		return plumbing.Revision("refs/remotes/origin/" + strings.TrimSpace(spec.Branch))
	default:
		return plumbing.Revision(plumbing.HEAD)
	}
}

// dirChecksum hashes file names and contents below path, skipping VCS
// metadata.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
