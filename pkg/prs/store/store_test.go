package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestNormalizeSecretPathAppendsExtension(t *testing.T) {
	s := newTestStore(t)
	got, err := s.NormalizeSecretPath("foo/bar", "", false)
	if err != nil {
		t.Fatalf("NormalizeSecretPath: %v", err)
	}
	want := filepath.Join(s.Root, "foo", "bar.gpg")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeSecretPathIdempotent(t *testing.T) {
	s := newTestStore(t)
	first, err := s.NormalizeSecretPath("foo/bar", "", false)
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	second, err := s.NormalizeSecretPath(first, "", false)
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}
	if first != second {
		t.Errorf("normalize not idempotent: %q != %q", first, second)
	}
}

func TestNormalizeSecretPathDoesNotDoubleUppercaseExtension(t *testing.T) {
	s := newTestStore(t)
	got, err := s.NormalizeSecretPath("Foo/bar.GPG", "", false)
	if err != nil {
		t.Fatalf("NormalizeSecretPath: %v", err)
	}
	want := filepath.Join(s.Root, "Foo", "bar.GPG")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeSecretPathDirectoryRequiresHint(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Join(s.Root, "sub"), 0o700); err != nil {
		t.Fatal(err)
	}
	_, err := s.NormalizeSecretPath("sub", "", false)
	if err != ErrTargetDirWithoutNameHint {
		t.Errorf("expected ErrTargetDirWithoutNameHint, got %v", err)
	}

	got, err := s.NormalizeSecretPath("sub", "bar", false)
	if err != nil {
		t.Fatalf("NormalizeSecretPath with hint: %v", err)
	}
	want := filepath.Join(s.Root, "sub", "bar.gpg")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCreateAliasAndReferrers(t *testing.T) {
	s := newTestStore(t)
	srcPath := filepath.Join(s.Root, "a", "b", "secret.gpg")
	if err := os.MkdirAll(filepath.Dir(srcPath), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(srcPath, []byte("ct"), 0o600); err != nil {
		t.Fatal(err)
	}
	src := Secret{Name: "a/b/secret", Path: srcPath}

	dstPath := filepath.Join(s.Root, "alias.gpg")
	if err := s.CreateAlias(src, dstPath); err != nil {
		t.Fatalf("CreateAlias: %v", err)
	}

	referrers, err := s.ReferrersOf(src)
	if err != nil {
		t.Fatalf("ReferrersOf: %v", err)
	}
	if len(referrers) != 1 || referrers[0].Path != dstPath {
		t.Errorf("unexpected referrers: %v", referrers)
	}
}

func TestRemovePrunesEmptyParents(t *testing.T) {
	s := newTestStore(t)
	secretPath := filepath.Join(s.Root, "a", "b", "secret.gpg")
	if err := os.MkdirAll(filepath.Dir(secretPath), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(secretPath, []byte("ct"), 0o600); err != nil {
		t.Fatal(err)
	}
	sec := Secret{Name: "a/b/secret", Path: secretPath}

	if err := s.Remove(sec, false); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root, "a")); !os.IsNotExist(err) {
		t.Errorf("expected empty parent directories to be pruned, got err=%v", err)
	}
}

func TestFindExactAndMany(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"web/example.gpg", "web/other.gpg"} {
		p := filepath.Join(s.Root, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("ct"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	res, err := s.Find("web/example")
	if err != nil {
		t.Fatalf("Find exact: %v", err)
	}
	if !res.Exact {
		t.Fatalf("expected exact match, got %+v", res)
	}

	res, err = s.Find("web/")
	if err != nil {
		t.Fatalf("Find many: %v", err)
	}
	if res.Exact || len(res.Many) != 2 {
		t.Errorf("expected 2 substring matches, got %+v", res)
	}
}

func TestDuplicateCopiesBytes(t *testing.T) {
	s := newTestStore(t)
	srcPath := filepath.Join(s.Root, "src.gpg")
	if err := os.WriteFile(srcPath, []byte("ciphertext-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}
	dstPath := filepath.Join(s.Root, "dst.gpg")

	if err := s.Duplicate(Secret{Path: srcPath}, Secret{Path: dstPath}); err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	got, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ciphertext-bytes" {
		t.Errorf("unexpected duplicated contents: %q", got)
	}
}
