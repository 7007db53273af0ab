package recrypt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/secretbytes"
	"github.com/prsgo/prs/pkg/prs/store"
)

// fakeContext round-trips plaintext as-is, prefixed with "ENC:" to
// simulate re-encryption without real cryptography, and fails decrypt
// for any ciphertext starting with "bad:".
type fakeContext struct{}

func (fakeContext) Encrypt(_ crypto.Recipients, pt secretbytes.Plaintext) (secretbytes.Ciphertext, error) {
	return secretbytes.NewCiphertextBytes(append([]byte("ENC:"), pt.Unsecure()...)), nil
}

func (fakeContext) Decrypt(ct secretbytes.Ciphertext) (secretbytes.Plaintext, error) {
	raw := ct.Unsecure()
	if len(raw) >= 4 && string(raw[:4]) == "bad:" {
		return secretbytes.Plaintext{}, errors.New("simulated decrypt failure")
	}
	trimmed := raw
	if len(raw) >= 4 && string(raw[:4]) == "ENC:" {
		trimmed = raw[4:]
	}
	return secretbytes.NewPlaintextBytes(trimmed), nil
}

func (fakeContext) CanDecrypt(secretbytes.Ciphertext) (bool, error)     { return true, nil }
func (fakeContext) KeysPublic() ([]crypto.Key, error)                   { return nil, nil }
func (fakeContext) KeysPrivate() ([]crypto.Key, error)                  { return nil, nil }
func (fakeContext) ImportKey([]byte) error                              { return nil }
func (fakeContext) ExportKey(crypto.Key) ([]byte, error)                { return nil, nil }
func (fakeContext) SupportsProto(p crypto.Proto) bool                   { return p == crypto.ProtoGPG }

func writeSecret(t *testing.T, dir, name, contents string) store.Secret {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return store.Secret{Name: name, Path: path}
}

func TestRunRecryptsAllAndReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeSecret(t, dir, "good.gpg", "hello")
	bad := writeSecret(t, dir, "bad.gpg", "bad:unrecoverable")

	var seen []string
	failures := Run(fakeContext{}, crypto.NewRecipients(nil), []store.Secret{good, bad}, func(i, total int, name string) {
		seen = append(seen, name)
	})

	if len(seen) != 2 {
		t.Errorf("expected progress callback for both secrets, got %v", seen)
	}
	if len(failures) != 1 || failures[0].Secret.Name != "bad.gpg" {
		t.Errorf("expected exactly one failure for bad.gpg, got %+v", failures)
	}

	data, err := os.ReadFile(good.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ENC:hello" {
		t.Errorf("expected good secret to be re-encrypted, got %q", data)
	}
}

func TestFilterRegularDropsSymlinks(t *testing.T) {
	secrets := []store.Secret{{Name: "a"}, {Name: "b", Symlink: true}, {Name: "c"}}
	got := FilterRegular(secrets)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("unexpected filtered result: %+v", got)
	}
}
