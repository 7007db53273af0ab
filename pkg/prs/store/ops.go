package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/prsgo/prs/pkg/prs/crypto"
)

// Move renames from to to, recomputing a symlink alias's relative target
// for its new depth, and rewrites every alias that pointed at from so it
// points at to instead.
func (s *Store) Move(from, to Secret) error {
	referrers, err := s.ReferrersOf(from)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(to.Path), 0o700); err != nil {
		return fmt.Errorf("store: failed to create destination directory: %w", err)
	}

	if from.Symlink {
		target, err := os.Readlink(from.Path)
		if err != nil {
			return fmt.Errorf("store: failed to read alias target: %w", err)
		}
		resolvedSrc := target
		if !filepath.IsAbs(resolvedSrc) {
			resolvedSrc = filepath.Join(filepath.Dir(from.Path), target)
		}
		newTarget, err := relativeAliasTarget(s.Root, to.Path, resolvedSrc)
		if err != nil {
			return err
		}
		if err := os.Remove(from.Path); err != nil {
			return fmt.Errorf("store: failed to remove old alias: %w", err)
		}
		if err := os.Symlink(newTarget, to.Path); err != nil {
			return fmt.Errorf("store: failed to create moved alias: %w", err)
		}
	} else {
		if err := os.Rename(from.Path, to.Path); err != nil {
			return fmt.Errorf("store: failed to rename secret: %w", err)
		}
	}

	for _, ref := range referrers {
		if err := s.RetargetAlias(ref, to); err != nil {
			return fmt.Errorf("store: failed to retarget alias %s: %w", ref.Name, err)
		}
	}

	pruneEmptyParents(s.Root, from.Path)
	return nil
}

// Remove deletes secret's file. When removeAliases is set, every alias
// referrer discovered via ReferrersOf is deleted too. Parent directories
// are pruned afterward.
func (s *Store) Remove(secret Secret, removeAliases bool) error {
	var referrers []Secret
	if !secret.Symlink {
		var err error
		referrers, err = s.ReferrersOf(secret)
		if err != nil {
			return err
		}
	}

	if err := os.Remove(secret.Path); err != nil {
		return fmt.Errorf("store: failed to remove secret: %w", err)
	}
	pruneEmptyParents(s.Root, secret.Path)

	if removeAliases {
		for _, ref := range referrers {
			if err := os.Remove(ref.Path); err != nil {
				continue
			}
			pruneEmptyParents(s.Root, ref.Path)
		}
	}
	return nil
}

// Duplicate copies from's ciphertext bytes verbatim to to, since
// duplication does not change the recipient set and so needs no
// decrypt/re-encrypt round trip.
func (s *Store) Duplicate(from, to Secret) error {
	if err := os.MkdirAll(filepath.Dir(to.Path), 0o700); err != nil {
		return fmt.Errorf("store: failed to create destination directory: %w", err)
	}
	src, err := os.Open(from.Path)
	if err != nil {
		return fmt.Errorf("store: failed to open source secret: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(to.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("store: failed to create destination secret: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("store: failed to copy secret contents: %w", err)
	}
	return nil
}

// GrepMatch is one secret whose decrypted contents matched a Grep query.
type GrepMatch struct {
	Secret Secret
	Lines  []string
}

// GrepError pairs a secret with the error encountered while processing
// it during Grep, which never aborts the batch.
type GrepError struct {
	Secret Secret
	Err    error
}

// Grep decrypts every secret in the store and regex-matches its
// plaintext line-by-line, collecting per-secret errors instead of
// aborting on the first failure.
func (s *Store) Grep(pattern string, ctx crypto.Context) ([]GrepMatch, []GrepError, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("store: invalid grep pattern: %w", err)
	}

	secrets, err := s.Iter(IterConfig{FindFiles: true})
	if err != nil {
		return nil, nil, err
	}

	var matches []GrepMatch
	var errs []GrepError
	for _, sec := range secrets {
		pt, err := crypto.DecryptFile(ctx, sec.Path)
		if err != nil {
			errs = append(errs, GrepError{Secret: sec, Err: err})
			continue
		}
		var lines []string
		for _, line := range splitLines(string(pt.Unsecure())) {
			if re.MatchString(line) {
				lines = append(lines, line)
			}
		}
		pt.Close()
		if len(lines) > 0 {
			matches = append(matches, GrepMatch{Secret: sec, Lines: lines})
		}
	}
	return matches, errs, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
