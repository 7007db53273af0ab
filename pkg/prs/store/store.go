// Package store implements the filesystem-backed secret namespace: one
// ".gpg" file per secret, directories as implicit namespaces, and
// symlinks as aliases.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoRootDir is returned by Open when the resolved path is not an
// existing directory.
var ErrNoRootDir = errors.New("store: root is not an existing directory")

// Store is a single secret namespace rooted at Root.
type Store struct {
	Root string
}

// Open resolves "~" and environment variables in path and verifies it
// names an existing directory.
func Open(path string) (*Store, error) {
	expanded := expandPath(path)
	info, err := os.Stat(expanded)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoRootDir, path)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("store: failed to resolve absolute path: %w", err)
	}
	return &Store{Root: abs}, nil
}

func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Secret names an entry in the store: Name is the store-relative path
// without the ".gpg" suffix, Path is the absolute file path.
type Secret struct {
	Name string
	Path string
	// Symlink is true when the entry is a symlink alias rather than a
	// regular encrypted file.
	Symlink bool
}

// AbsPath returns s's absolute on-disk path (identical to s.Path, kept
// as a method for call-site readability alongside relative helpers).
func (s Secret) AbsPath() string { return s.Path }

// secretFromPath builds a Secret from an absolute file path known to
// live under root and end in ".gpg".
func secretFromPath(root, path string) (Secret, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Secret{}, err
	}
	rel = filepath.ToSlash(rel)
	name := strings.TrimSuffix(rel, ".gpg")
	info, err := os.Lstat(path)
	if err != nil {
		return Secret{}, err
	}
	return Secret{
		Name:    name,
		Path:    path,
		Symlink: info.Mode()&os.ModeSymlink != 0,
	}, nil
}

// IterConfig controls which entries Iter yields.
type IterConfig struct {
	FindFiles        bool
	FindSymlinkFiles bool
}

// DefaultIterConfig yields both regular and symlink secrets.
func DefaultIterConfig() IterConfig {
	return IterConfig{FindFiles: true, FindSymlinkFiles: true}
}

// Iter walks the store recursively and returns every secret matching
// cfg. Hidden directories (name begins with ".") are excluded entirely,
// including their contents.
func (s *Store) Iter(cfg IterConfig) ([]Secret, error) {
	var out []Secret
	err := filepath.Walk(s.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == s.Root {
			return nil
		}
		rel, relErr := filepath.Rel(s.Root, path)
		if relErr != nil {
			return relErr
		}
		base := filepath.Base(path)
		if info.IsDir() {
			if strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		for _, seg := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
			if strings.HasPrefix(seg, ".") && seg != "." {
				return nil
			}
		}
		if !strings.HasSuffix(base, ".gpg") {
			return nil
		}
		isSymlink := info.Mode()&os.ModeSymlink != 0
		if isSymlink && !cfg.FindSymlinkFiles {
			return nil
		}
		if !isSymlink && !cfg.FindFiles {
			return nil
		}
		sec, secErr := secretFromPath(s.Root, path)
		if secErr != nil {
			return nil
		}
		out = append(out, sec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: walk failed: %w", err)
	}
	return out, nil
}

// Filter returns every secret from Iter(DefaultIterConfig()) whose name
// contains query as a case-sensitive substring.
func (s *Store) Filter(query string) ([]Secret, error) {
	all, err := s.Iter(DefaultIterConfig())
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}
	out := all[:0:0]
	for _, sec := range all {
		if strings.Contains(sec.Name, query) {
			out = append(out, sec)
		}
	}
	return out, nil
}

// SortByName sorts secrets in place by Name, for callers that need a
// stable iteration order.
func SortByName(secrets []Secret) {
	sort.Slice(secrets, func(i, j int) bool { return secrets[i].Name < secrets[j].Name })
}
