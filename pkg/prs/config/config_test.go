package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigHasApprovedAlgorithms(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.ApprovedAlgorithms) == 0 {
		t.Fatal("DefaultConfig should carry approved algorithms")
	}
	if cfg.GPG.Program != "PATH" {
		t.Errorf("expected default GPG.Program PATH, got %q", cfg.GPG.Program)
	}
}

func TestIsAlgorithmAllowed(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		algo, curve string
		bits        int
		want        bool
	}{
		{"RSA", "", 2048, true},
		{"RSA", "", 1024, false},
		{"ECC", "P-384", 384, true},
		{"ECC", "P-192", 192, false},
		{"EdDSA", "Ed25519", 255, true},
		{"DSA", "", 2048, false},
	}
	for _, c := range cases {
		if got := cfg.IsAlgorithmAllowed(c.algo, c.bits, c.curve); got != c.want {
			t.Errorf("IsAlgorithmAllowed(%q, %d, %q) = %v, want %v", c.algo, c.bits, c.curve, got, c.want)
		}
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yml")

	cfg := DefaultConfig()
	cfg.StoreDir = "/home/user/.password-store"
	cfg.Sync.AllowDirty = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.StoreDir != cfg.StoreDir {
		t.Errorf("StoreDir round-trip mismatch: got %q", got.StoreDir)
	}
	if !got.Sync.AllowDirty {
		t.Error("Sync.AllowDirty did not round-trip")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault(filepath.Join(dir, "missing.yml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if len(cfg.ApprovedAlgorithms) == 0 {
		t.Error("expected default config for missing file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error loading empty config file")
	}
}
