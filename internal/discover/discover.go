// Package discover enumerates scannable source files under a project root.
// It is a collaborator of the scan engine, not part of it: the engine takes
// the file list as input and tolerates an empty one.
package discover

import (
	"bytes"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExtensions is the source-file filter applied when no configuration
// overrides it.
var DefaultExtensions = []string{".java"}

// skipDirs are never descended into, on top of anything .gitignore excludes.
var skipDirs = map[string]bool{
	"target":       true,
	"build":        true,
	"out":          true,
	"bin":          true,
	"node_modules": true,
	".git":         true,
	".idea":        true,
	".gradle":      true,
	".mvn":         true,
}

// Files returns the absolute paths of matching source files under root,
// sorted lexicographically so enumeration order is stable for a given tree.
// Inside a git checkout it asks git for the file list so .gitignore and
// friends are respected; otherwise it walks the tree, compiling a top-level
// .gitignore when one exists. Unreadable subtrees are skipped, not fatal.
func Files(root string, cfg Config) ([]string, error) {
	exts := extensionSet(cfg)
	excluded := excludedDirs(cfg)

	if paths, err := gitListFiles(root, exts, excluded); err == nil {
		return paths, nil
	}
	return walkListFiles(root, exts, excluded)
}

func extensionSet(cfg Config) map[string]bool {
	exts := make(map[string]bool)
	for _, e := range DefaultExtensions {
		exts[e] = true
	}
	for _, e := range cfg.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[strings.ToLower(e)] = true
	}
	return exts
}

func excludedDirs(cfg Config) map[string]bool {
	excluded := make(map[string]bool, len(skipDirs)+len(cfg.Exclude))
	for d := range skipDirs {
		excluded[d] = true
	}
	for _, d := range cfg.Exclude {
		excluded[d] = true
	}
	return excluded
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root.
func gitListFiles(root string, exts, excluded map[string]bool) ([]string, error) {
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !exts[strings.ToLower(filepath.Ext(line))] {
			continue
		}
		if underExcludedDir(line, excluded) {
			continue
		}
		paths = append(paths, filepath.Join(root, line))
	}
	sort.Strings(paths)
	return paths, nil
}

// walkListFiles is the fallback when git is unavailable. Hidden directories
// and the skip set are pruned; a root .gitignore is honored when present.
func walkListFiles(root string, exts, excluded map[string]bool) ([]string, error) {
	gi := loadGitignore(root)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entry: skip, do not abort the scan
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if excluded[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		if gi != nil {
			if rel, relErr := filepath.Rel(root, path); relErr == nil && gi.MatchesPath(rel) {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func underExcludedDir(rel string, excluded map[string]bool) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if excluded[part] {
			return true
		}
	}
	return false
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
