package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CreateAlias creates a symlink at dstPath that aliases src, pointing at
// a relative target so the link survives relocating the whole store.
// dstPath must already be a normalized ".gpg" path (see
// NormalizeSecretPath); its parent directory is created if absent.
func (s *Store) CreateAlias(src Secret, dstPath string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o700); err != nil {
		return fmt.Errorf("store: failed to create alias parent directory: %w", err)
	}
	target, err := relativeAliasTarget(s.Root, dstPath, src.Path)
	if err != nil {
		return err
	}
	if err := os.Symlink(target, dstPath); err != nil {
		return fmt.Errorf("store: failed to create alias symlink: %w", err)
	}
	return nil
}

// relativeAliasTarget computes the relative path from dstPath's parent
// directory to srcPath, both store-relative, by counting path separators
// up to root and then joining srcPath's store-relative form.
func relativeAliasTarget(root, dstPath, srcPath string) (string, error) {
	dstRel, err := filepath.Rel(root, filepath.Dir(dstPath))
	if err != nil {
		return "", fmt.Errorf("store: failed to compute alias depth: %w", err)
	}
	srcRel, err := filepath.Rel(root, srcPath)
	if err != nil {
		return "", fmt.Errorf("store: failed to compute alias source: %w", err)
	}

	depth := 0
	if dstRel != "." {
		depth = len(strings.Split(dstRel, string(filepath.Separator)))
	}

	up := strings.Repeat(".."+string(filepath.Separator), depth)
	return filepath.Join(up, srcRel), nil
}

// ReferrersOf returns every symlink secret whose resolved target is src's
// absolute path, used when moving or removing src so its aliases can be
// rewritten or offered for removal.
func (s *Store) ReferrersOf(src Secret) ([]Secret, error) {
	symlinks, err := s.Iter(IterConfig{FindSymlinkFiles: true})
	if err != nil {
		return nil, err
	}
	absSrc, err := filepath.Abs(src.Path)
	if err != nil {
		return nil, err
	}

	var referrers []Secret
	for _, sec := range symlinks {
		if !sec.Symlink {
			continue
		}
		target, err := os.Readlink(sec.Path)
		if err != nil {
			continue
		}
		resolved := target
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(filepath.Dir(sec.Path), target)
		}
		if resolved == absSrc {
			referrers = append(referrers, sec)
		}
	}
	return referrers, nil
}

// RetargetAlias rewrites an existing alias symlink so that it points at
// newSrc instead of whatever it previously referenced.
func (s *Store) RetargetAlias(alias Secret, newSrc Secret) error {
	if err := os.Remove(alias.Path); err != nil {
		return fmt.Errorf("store: failed to remove stale alias: %w", err)
	}
	target, err := relativeAliasTarget(s.Root, alias.Path, newSrc.Path)
	if err != nil {
		return err
	}
	return os.Symlink(target, alias.Path)
}

// pruneEmptyParents recursively removes path's parent directories up to
// but not including root, stopping at the first directory still
// containing a regular file. Empty sub-directories are removed along the
// way.
func pruneEmptyParents(root, path string) {
	dir := filepath.Dir(path)
	for dir != root && strings.HasPrefix(dir, root) {
		hasFile := false
		walkErr := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				hasFile = true
				return filepath.SkipAll
			}
			return nil
		})
		if walkErr != nil || hasFile || os.RemoveAll(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
