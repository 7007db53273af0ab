package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prsgo/prs/pkg/prs/crypto"
)

const (
	gpgIDFile        = ".gpg-id"
	publicKeysSubdir = ".public-keys"
)

// gpgIDPath and publicKeysDir return the store-relative paths for the
// recipient-set files.
func (s *Store) gpgIDPath() string     { return filepath.Join(s.Root, gpgIDFile) }
func (s *Store) publicKeysDir() string { return filepath.Join(s.Root, publicKeysSubdir) }

// LoadRecipients reads .gpg-id and resolves each fingerprint against
// ctx's local keyring. Unresolved fingerprints are tolerated silently;
// re-encryption surfaces them later as crypto.ErrUnknownFingerprint.
func (s *Store) LoadRecipients(ctx crypto.Context) (crypto.Recipients, error) {
	data, err := os.ReadFile(s.gpgIDPath())
	if err != nil {
		if os.IsNotExist(err) {
			return crypto.NewRecipients(nil), nil
		}
		return crypto.Recipients{}, fmt.Errorf("store: failed to read %s: %w", gpgIDFile, err)
	}

	var fingerprints []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fingerprints = append(fingerprints, line)
	}

	keys, err := crypto.FindPublicKeys(ctx, fingerprints)
	if err != nil {
		return crypto.Recipients{}, err
	}
	return crypto.NewRecipients(keys), nil
}

// SaveRecipients overwrites .gpg-id with recipients' fingerprints, then
// synchronizes .public-keys/ so a fresh clone can recover all recipient
// key material independent of the local keyring.
//
// Not transactional across the two steps: the .gpg-id write happens
// first, so a crash between steps leaves up-to-date intent with stale
// key files. Re-running Save recovers.
func (s *Store) SaveRecipients(ctx crypto.Context, recipients crypto.Recipients) error {
	var b strings.Builder
	for i, k := range recipients.Keys() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(k.Fingerprint)
	}
	if err := os.WriteFile(s.gpgIDPath(), []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("store: failed to write %s: %w", gpgIDFile, err)
	}
	return s.syncPublicKeyFiles(ctx, recipients)
}

// syncPublicKeyFiles deletes every .public-keys/ file not named by a
// current recipient's fingerprint, then exports a file for every
// recipient missing one.
func (s *Store) syncPublicKeyFiles(ctx crypto.Context, recipients crypto.Recipients) error {
	dir := s.publicKeysDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("store: failed to create %s: %w", publicKeysSubdir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("store: failed to read %s: %w", publicKeysSubdir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !recipients.HasFingerprint(e.Name()) {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}

	for _, k := range recipients.Keys() {
		path := filepath.Join(dir, k.Fingerprint)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		blob, err := ctx.ExportKey(k)
		if err != nil {
			return fmt.Errorf("store: failed to export public key %s: %w", k.Fingerprint, err)
		}
		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return fmt.Errorf("store: failed to write public key file for %s: %w", k.Fingerprint, err)
		}
	}
	return nil
}

// ImportResult is the per-fingerprint outcome of ImportMissingKeys.
type ImportResult struct {
	Fingerprint string
	Imported    bool
}

// ImportMissingKeys imports .public-keys/<fp> for every fingerprint in
// .gpg-id not already present in ctx's local keyring.
func (s *Store) ImportMissingKeys(ctx crypto.Context) ([]ImportResult, error) {
	data, err := os.ReadFile(s.gpgIDPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: failed to read %s: %w", gpgIDFile, err)
	}

	local, err := ctx.KeysPublic()
	if err != nil {
		return nil, err
	}

	var results []ImportResult
	for _, line := range strings.Split(string(data), "\n") {
		fp := strings.TrimSpace(line)
		if fp == "" {
			continue
		}
		if crypto.KeysContainFingerprint(local, fp) {
			continue
		}
		path := filepath.Join(s.publicKeysDir(), fp)
		blob, err := os.ReadFile(path)
		if err != nil {
			results = append(results, ImportResult{Fingerprint: fp, Imported: false})
			continue
		}
		if err := ctx.ImportKey(blob); err != nil {
			results = append(results, ImportResult{Fingerprint: fp, Imported: false})
			continue
		}
		results = append(results, ImportResult{Fingerprint: fp, Imported: true})
	}
	return results, nil
}
