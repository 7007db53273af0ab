package crypto

import (
	"fmt"
	"strings"
)

// Key represents a public key belonging to some Proto.
//
// Only the GPG variant is populated today; Proto discriminates which
// fields are meaningful, mirroring how the data model reserves space for
// other protocols without requiring every caller to type-switch.
type Key struct {
	Proto Proto

	// Fingerprint is the canonical uppercase hex fingerprint (40 hex chars
	// typical for GPG).
	Fingerprint string

	// UserIDs holds the key's user-id strings, each combining name,
	// optional comment in parentheses, and optional email in angle
	// brackets.
	UserIDs []string

	// Algo is the key's algorithm family, normalized to the vocabulary
	// config.ApprovedAlgorithm uses: "RSA", "ECC", "EdDSA", or "" when
	// unrecognized.
	Algo string

	// Bits is the key's strength in bits for RSA, or the nominal curve
	// strength for ECC/EdDSA. Zero when unknown.
	Bits int

	// Curve names the elliptic curve for ECC/EdDSA keys, normalized to
	// config.ApprovedAlgorithm's curve vocabulary (e.g. "P-256",
	// "Curve25519", "Ed25519"). Empty for RSA or when unrecognized.
	Curve string
}

// Algorithm family names, matching config.ApprovedAlgorithm.Algo.
const (
	AlgoRSA   = "RSA"
	AlgoECC   = "ECC"
	AlgoEdDSA = "EdDSA"
)

// AlgoFamilyForGPGID maps an RFC 4880 public-key algorithm id (colon
// field 4 of gpg --with-colons, or the numeric pubkey algo gpg reports)
// to its algorithm family. Unknown ids return "".
func AlgoFamilyForGPGID(id int) string {
	switch id {
	case 1, 2, 3:
		return AlgoRSA
	case 18:
		return AlgoECC
	case 19:
		return AlgoECC
	case 22:
		return AlgoEdDSA
	default:
		return ""
	}
}

// curveAliases maps the raw curve identifiers gpg emits (colon field 17,
// or the slug gpg prints in human-readable listings) to the curve names
// config.ApprovedAlgorithm expects.
var curveAliases = map[string]string{
	"nistp256":   "P-256",
	"p-256":      "P-256",
	"prime256v1": "P-256",
	"nistp384":   "P-384",
	"p-384":      "P-384",
	"nistp521":   "P-521",
	"p-521":      "P-521",
	"cv25519":    "Curve25519",
	"curve25519": "Curve25519",
	"x25519":     "Curve25519",
	"ed25519":    "Ed25519",
	"ed448":      "Ed448",
}

// NormalizeCurveName maps a raw gpg curve identifier to the curve name
// config.ApprovedAlgorithm's Curves list uses, case-insensitively.
// Unrecognized input is returned unchanged so a still-informative value
// reaches error messages even when it fails an allow-list check.
func NormalizeCurveName(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if norm, ok := curveAliases[key]; ok {
		return norm
	}
	return raw
}

// FingerprintOf returns the key's fingerprint, or its last 16 hex chars
// when short is true.
func (k Key) FingerprintOf(short bool) string {
	fp := strings.ToUpper(strings.TrimSpace(k.Fingerprint))
	if short && len(fp) > 16 {
		return fp[len(fp)-16:]
	}
	return fp
}

// DisplayUser joins the key's user ids for display.
func (k Key) DisplayUser() string {
	return strings.Join(k.UserIDs, "; ")
}

// String formats the key as "[PROTO] <short-fp> - <user-ids>".
func (k Key) String() string {
	return fmt.Sprintf("[%s] %s - %s", k.Proto.Name(), k.FingerprintOf(true), k.DisplayUser())
}

// Equal compares two keys by canonical fingerprint only.
func (k Key) Equal(other Key) bool {
	return FingerprintsEqual(k.Fingerprint, other.Fingerprint)
}

// FingerprintsEqual trims and uppercases both fingerprints before
// comparing. Two empty fingerprints never compare equal.
func FingerprintsEqual(a, b string) bool {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b
}

// KeysContainFingerprint reports whether any key in keys has the given
// fingerprint.
func KeysContainFingerprint(keys []Key, fingerprint string) bool {
	for _, k := range keys {
		if FingerprintsEqual(k.Fingerprint, fingerprint) {
			return true
		}
	}
	return false
}
