// Package config loads and saves the core's YAML configuration file,
// covering store location, the GPG program to invoke, sync behavior
// flags, and the allow-list of recipient key algorithms.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ApprovedAlgorithm names one allowed recipient key algorithm family
// and its minimum strength, used to gate which public keys may be
// added to a store's recipient set.
type ApprovedAlgorithm struct {
	Algo    string   `yaml:"algo"`
	Curves  []string `yaml:"curves,omitempty"`
	MinBits int      `yaml:"min_bits"`
}

// GPGConfig holds GPG-related configuration.
type GPGConfig struct {
	// Program is the gpg executable to invoke: "PATH" to resolve via
	// $PATH, or an absolute path.
	Program string `yaml:"program,omitempty"`
	// Backend selects which crypto backend implementation to use:
	// "gopenpgp" (library-binding hybrid) or "gnupgbin" (subprocess-only).
	Backend string `yaml:"backend,omitempty"`
}

// SyncConfig holds git sync behavior flags.
type SyncConfig struct {
	// AllowDirty permits mutating operations to proceed even when the
	// store's git working tree has uncommitted changes.
	AllowDirty bool `yaml:"allow_dirty"`
	// NoSync disables git sync entirely, even when a .git directory is
	// present.
	NoSync bool `yaml:"no_sync"`
	// PushOutdatedAfterSeconds overrides the push-optimization cutoff
	// used to decide whether a push is likely needed; zero keeps the
	// package default.
	PushOutdatedAfterSeconds int `yaml:"push_outdated_after_seconds,omitempty"`
}

// Config is the core's on-disk configuration.
type Config struct {
	StoreDir           string              `yaml:"store_dir,omitempty"`
	ApprovedAlgorithms []ApprovedAlgorithm `yaml:"approved_algorithms"`
	GPG                GPGConfig           `yaml:"gpg,omitempty"`
	Sync               SyncConfig          `yaml:"sync,omitempty"`
}

// UnmarshalYAML gives a clearer error when approved_algorithms is
// malformed, rather than yaml.v3's generic type-mismatch message.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type configAlias Config
	var temp configAlias
	if err := node.Decode(&temp); err != nil {
		if strings.Contains(err.Error(), "cannot unmarshal") && strings.Contains(err.Error(), "into []config.ApprovedAlgorithm") {
			return fmt.Errorf("invalid approved_algorithms: expected a list of {algo, curves, min_bits} entries: %w", err)
		}
		return err
	}
	*c = Config(temp)
	return nil
}

// DefaultConfig returns the baseline configuration: NIST-recommended
// minimum key strengths and PATH-resolved gpg.
func DefaultConfig() Config {
	return Config{
		ApprovedAlgorithms: []ApprovedAlgorithm{
			{Algo: "ECC", Curves: []string{"P-256", "P-384", "P-521", "Curve25519"}, MinBits: 256},
			{Algo: "EdDSA", Curves: []string{"Ed25519", "Ed448"}, MinBits: 255},
			{Algo: "RSA", MinBits: 2048},
		},
		GPG: GPGConfig{Program: "PATH", Backend: "gopenpgp"},
	}
}

// Load reads the config from path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) == 0 {
		return Config{}, fmt.Errorf("config file is empty")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault reads the config from path, returning DefaultConfig()
// if the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Save writes cfg to path, creating its parent directory with
// owner-only permissions.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// IsAlgorithmAllowed reports whether algo (e.g. "RSA", "ECC", "EdDSA")
// at the given bit strength, and curve when applicable, passes the
// configured allow-list.
func (c Config) IsAlgorithmAllowed(algo string, bits int, curve string) bool {
	for _, req := range c.ApprovedAlgorithms {
		if !strings.EqualFold(algo, req.Algo) {
			continue
		}
		if bits > 0 && bits < req.MinBits {
			return false
		}
		if req.Algo == "ECC" || req.Algo == "EdDSA" {
			if len(req.Curves) == 0 {
				return false
			}
			return curveAllowed(curve, req.Curves)
		}
		return true
	}
	return false
}

func curveAllowed(curve string, allowed []string) bool {
	curve = strings.TrimSpace(curve)
	for _, c := range allowed {
		if strings.EqualFold(curve, c) {
			return true
		}
	}
	return false
}

// AllowedAlgorithmsString renders a human-readable summary of the
// configured allow-list, used in diagnostic output when a recipient
// key is rejected.
func (c Config) AllowedAlgorithmsString() string {
	var parts []string
	for _, alg := range c.ApprovedAlgorithms {
		part := fmt.Sprintf("%s (minimum %d bits", alg.Algo, alg.MinBits)
		if len(alg.Curves) > 0 {
			part += fmt.Sprintf(", curves: %s", strings.Join(alg.Curves, ", "))
		}
		part += ")"
		parts = append(parts, part)
	}
	return "Allowed algorithms: " + strings.Join(parts, ", ")
}
