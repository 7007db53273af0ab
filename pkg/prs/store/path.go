package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrTargetDirWithoutNameHint is returned by NormalizeSecretPath when
// target resolves to a directory but no nameHint was supplied.
var ErrTargetDirWithoutNameHint = errors.New("store: directory target requires a name hint")

// NormalizeSecretPath implements the eight-step normalization algorithm:
// expand env/home, detect a directory target, re-root absolute paths
// under the store, join, append nameHint for directory targets, ensure a
// ".gpg" suffix, and optionally create parent directories.
//
// Idempotent when createDirs is false: normalizing an already-normalized
// path returns it unchanged.
func (s *Store) NormalizeSecretPath(target string, nameHint string, createDirs bool) (string, error) {
	expanded := expandPath(target)

	isDirTarget := strings.HasSuffix(expanded, string(filepath.Separator)) || strings.HasSuffix(target, "/")
	if info, err := os.Stat(expanded); err == nil && info.IsDir() {
		isDirTarget = true
	}

	rooted := expanded
	if filepath.IsAbs(rooted) {
		if rel, ok := stripPrefix(rooted, s.Root); ok {
			rooted = rel
		} else {
			rooted = strings.TrimPrefix(rooted, string(filepath.Separator))
		}
	}

	joined := filepath.Join(s.Root, rooted)
	if info, err := os.Stat(joined); err == nil && info.IsDir() {
		isDirTarget = true
	}

	if isDirTarget {
		if nameHint == "" {
			return "", ErrTargetDirWithoutNameHint
		}
		joined = filepath.Join(joined, nameHint)
	}

	if !strings.EqualFold(filepath.Ext(joined), ".gpg") {
		joined += ".gpg"
	}

	if createDirs {
		if err := os.MkdirAll(filepath.Dir(joined), 0o700); err != nil {
			return "", fmt.Errorf("store: failed to create parent directory: %w", err)
		}
	}

	return joined, nil
}

// stripPrefix reports whether path lies under root, returning the
// store-relative remainder with the leading separator removed.
func stripPrefix(path, root string) (string, bool) {
	if !strings.HasPrefix(path, root) {
		return "", false
	}
	rest := strings.TrimPrefix(path, root)
	rest = strings.TrimPrefix(rest, string(filepath.Separator))
	return rest, true
}
