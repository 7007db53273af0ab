package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/secretbytes"
)

// fakeContext is an in-memory crypto.Context double for exercising the
// recipient-set manager without a real GPG keyring.
type fakeContext struct {
	keys map[string]crypto.Key
}

func newFakeContext(keys ...crypto.Key) *fakeContext {
	c := &fakeContext{keys: map[string]crypto.Key{}}
	for _, k := range keys {
		c.keys[k.Fingerprint] = k
	}
	return c
}

func (f *fakeContext) Encrypt(crypto.Recipients, secretbytes.Plaintext) (secretbytes.Ciphertext, error) {
	return secretbytes.Ciphertext{}, nil
}
func (f *fakeContext) Decrypt(secretbytes.Ciphertext) (secretbytes.Plaintext, error) {
	return secretbytes.Plaintext{}, nil
}
func (f *fakeContext) CanDecrypt(secretbytes.Ciphertext) (bool, error) { return true, nil }
func (f *fakeContext) KeysPublic() ([]crypto.Key, error) {
	out := make([]crypto.Key, 0, len(f.keys))
	for _, k := range f.keys {
		out = append(out, k)
	}
	return out, nil
}
func (f *fakeContext) KeysPrivate() ([]crypto.Key, error) { return f.KeysPublic() }
func (f *fakeContext) ImportKey(blob []byte) error {
	f.keys[string(blob)] = crypto.Key{Proto: crypto.ProtoGPG, Fingerprint: string(blob)}
	return nil
}
func (f *fakeContext) ExportKey(key crypto.Key) ([]byte, error) {
	return []byte("pub:" + key.Fingerprint), nil
}
func (f *fakeContext) SupportsProto(p crypto.Proto) bool { return p == crypto.ProtoGPG }

func TestSaveAndLoadRecipients(t *testing.T) {
	s := newTestStore(t)
	k1 := crypto.Key{Proto: crypto.ProtoGPG, Fingerprint: "AAAA1111AAAA1111AAAA1111AAAA1111AAAA1111"}
	k2 := crypto.Key{Proto: crypto.ProtoGPG, Fingerprint: "BBBB2222BBBB2222BBBB2222BBBB2222BBBB2222"}
	ctx := newFakeContext(k1, k2)
	recipients := crypto.NewRecipients([]crypto.Key{k1, k2})

	if err := s.SaveRecipients(ctx, recipients); err != nil {
		t.Fatalf("SaveRecipients: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.Root, gpgIDFile))
	if err != nil {
		t.Fatalf("read .gpg-id: %v", err)
	}
	if string(data) != k1.Fingerprint+"\n"+k2.Fingerprint {
		t.Errorf("unexpected .gpg-id contents: %q", data)
	}

	for _, k := range []crypto.Key{k1, k2} {
		if _, err := os.Stat(filepath.Join(s.Root, publicKeysSubdir, k.Fingerprint)); err != nil {
			t.Errorf("expected public key file for %s: %v", k.Fingerprint, err)
		}
	}

	loaded, err := s.LoadRecipients(ctx)
	if err != nil {
		t.Fatalf("LoadRecipients: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected 2 loaded recipients, got %d", loaded.Len())
	}
}

func TestSyncPublicKeyFilesRemovesObsolete(t *testing.T) {
	s := newTestStore(t)
	k1 := crypto.Key{Proto: crypto.ProtoGPG, Fingerprint: "CCCC3333CCCC3333CCCC3333CCCC3333CCCC3333"}
	ctx := newFakeContext(k1)

	if err := os.MkdirAll(s.publicKeysDir(), 0o700); err != nil {
		t.Fatal(err)
	}
	stalePath := filepath.Join(s.publicKeysDir(), "STALE0000STALE0000STALE0000STALE0000STAL")
	if err := os.WriteFile(stalePath, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveRecipients(ctx, crypto.NewRecipients([]crypto.Key{k1})); err != nil {
		t.Fatalf("SaveRecipients: %v", err)
	}

	if _, err := os.Stat(stalePath); !os.IsNotExist(err) {
		t.Errorf("expected stale public key file to be removed, got err=%v", err)
	}
}
