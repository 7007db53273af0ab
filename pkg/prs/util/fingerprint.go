package util

import "strings"

// NormalizeFingerprint upper-cases a key fingerprint and strips spaces,
// matching the canonical form stored in .gpg-id.
func NormalizeFingerprint(fp string) string {
	fp = strings.ToUpper(strings.TrimSpace(fp))
	return strings.ReplaceAll(fp, " ", "")
}

// ShortFingerprint returns the last n hex characters of a fingerprint,
// the conventional "short key ID" used in listings; returns fp unchanged
// if it is already shorter than n.
func ShortFingerprint(fp string, n int) string {
	fp = NormalizeFingerprint(fp)
	if len(fp) <= n {
		return fp
	}
	return fp[len(fp)-n:]
}

// FormatFingerprint inserts a space every four characters, the
// conventional human-readable grouping gpg itself prints.
func FormatFingerprint(fp string) string {
	fp = NormalizeFingerprint(fp)
	var b strings.Builder
	for i, r := range fp {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
