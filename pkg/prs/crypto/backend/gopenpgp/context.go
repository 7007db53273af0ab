// Package gopenpgp implements the crypto.Context interface by combining
// the in-process ProtonMail/gopenpgp/v3 library (for the pure-public-key
// encrypt path, which never needs gpg-agent) with the local gpg-agent for
// anything that touches secret key material (decrypt, keyring
// enumeration, import/export) — the same split the library-style client
// this package is grounded on already makes, since gpg-agent does not
// hand out raw secret key bytes.
package gopenpgp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	gcrypto "github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/ProtonMail/gopenpgp/v3/constants"
	"github.com/ProtonMail/gopenpgp/v3/profile"

	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/secretbytes"
)

func init() {
	crypto.Register(crypto.ProtoGPG, crypto.BackendLibrary, func(opts crypto.Options) (crypto.Context, error) {
		return New(opts)
	})
}

// Context is a library-binding crypto context.
type Context struct {
	pgp     *gcrypto.PGPHandle
	program string
}

// New constructs a library-binding context. opts.Program overrides the
// gpg executable used for agent-backed operations; empty resolves "gpg"
// from PATH.
//
// When opts.GPGTTY is set, GPG_TTY is exported for any pinentry the agent
// spawns, mirroring the teacher client's terminal passphrase handling.
func New(opts crypto.Options) (*Context, error) {
	if opts.GPGTTY && os.Getenv("GPG_TTY") == "" {
		if tty, err := exec.Command("tty").Output(); err == nil {
			if t := strings.TrimSpace(string(tty)); t != "" && t != "not a tty" {
				_ = os.Setenv("GPG_TTY", t)
			}
		}
	}
	program := opts.Program
	if program == "" {
		program = "gpg"
	}
	return &Context{pgp: gcrypto.PGPWithProfile(profile.RFC9580()), program: program}, nil
}

// SupportsProto reports whether p is GPG.
func (c *Context) SupportsProto(p crypto.Proto) bool {
	return p == crypto.ProtoGPG
}

// Encrypt builds an in-memory keyring from each recipient's exported
// public key and encrypts entirely in-process; no agent round-trip is
// needed since only public key material is consumed.
func (c *Context) Encrypt(recipients crypto.Recipients, plaintext secretbytes.Plaintext) (secretbytes.Ciphertext, error) {
	if recipients.Len() == 0 {
		return secretbytes.Ciphertext{}, crypto.ErrNoRecipients
	}

	keyring, err := gcrypto.NewKeyRing(nil)
	if err != nil {
		return secretbytes.Ciphertext{}, fmt.Errorf("gopenpgp: failed to create key ring: %w", err)
	}

	for _, rk := range recipients.Keys() {
		blob, err := c.exportPublicKey(rk.Fingerprint)
		if err != nil {
			return secretbytes.Ciphertext{}, fmt.Errorf("%w: %s", crypto.ErrUnknownFingerprint, rk.Fingerprint)
		}
		key, err := gcrypto.NewKey(blob)
		if err != nil {
			return secretbytes.Ciphertext{}, fmt.Errorf("gopenpgp: failed to parse recipient key %s: %w", rk.Fingerprint, err)
		}
		if !IsKeyEncryptionCapable(key) {
			return secretbytes.Ciphertext{}, fmt.Errorf("crypto: recipient %s has a signing-only key and cannot decrypt messages", rk.Fingerprint)
		}
		if err := keyring.AddKey(key); err != nil {
			return secretbytes.Ciphertext{}, fmt.Errorf("gopenpgp: failed to add recipient key: %w", err)
		}
	}

	// No compression, matching RFC 9580's mandatory AEAD framing.
	handle, err := c.pgp.Encryption().Recipients(keyring).CompressWith(constants.NoCompression).New()
	if err != nil {
		return secretbytes.Ciphertext{}, fmt.Errorf("gopenpgp: failed to create encryption handle: %w", err)
	}

	msg, err := handle.Encrypt(plaintext.Unsecure())
	if err != nil {
		return secretbytes.Ciphertext{}, fmt.Errorf("gopenpgp: encrypt failed: %w", err)
	}

	armored, err := msg.ArmorBytes()
	if err != nil {
		return secretbytes.Ciphertext{}, fmt.Errorf("gopenpgp: failed to armor message: %w", err)
	}
	return secretbytes.NewCiphertextBytes(armored), nil
}

// Decrypt shells to gpg-agent: the agent is the only holder of the raw
// secret key material, so there is no pure-library path here.
func (c *Context) Decrypt(ciphertext secretbytes.Ciphertext) (secretbytes.Plaintext, error) {
	cmd := exec.Command(c.program, "--quiet", "--decrypt")
	cmd.Stdin = bytes.NewReader(ciphertext.Unsecure())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if strings.Contains(strings.ToLower(stderr.String()), "no secret key") {
			return secretbytes.Plaintext{}, crypto.ErrNoSecretKey
		}
		return secretbytes.Plaintext{}, fmt.Errorf("gopenpgp: gpg-agent decrypt failed: %w: %s", err, stderr.String())
	}
	return secretbytes.NewPlaintextBytes(stdout.Bytes()), nil
}

// CanDecrypt inspects the ciphertext's public-key-encrypted-session-key
// packets and checks whether any of the referenced key IDs has a secret
// key present locally, without materializing the plaintext.
func (c *Context) CanDecrypt(ciphertext secretbytes.Ciphertext) (bool, error) {
	keyIDs, err := c.recipientKeyIDs(ciphertext.Unsecure())
	if err != nil {
		// Fall back to "assume possible" on parse failure; CanDecrypt
		// must never claim impossibility except on a confirmed miss.
		return true, nil
	}
	if len(keyIDs) == 0 {
		return true, nil
	}

	secretIDs, err := c.secretKeyIDs()
	if err != nil {
		return true, nil
	}
	for _, kid := range keyIDs {
		for _, sid := range secretIDs {
			if strings.HasSuffix(sid, kid) || strings.HasSuffix(kid, sid) {
				return true, nil
			}
		}
	}
	return false, nil
}

// KeysPublic enumerates encryption-capable public keys known to gpg.
func (c *Context) KeysPublic() ([]crypto.Key, error) {
	return c.listKeys("--list-public-keys")
}

// KeysPrivate enumerates encryption-capable keys with a local secret key.
func (c *Context) KeysPrivate() ([]crypto.Key, error) {
	return c.listKeys("--list-secret-keys")
}

// ImportKey imports an ASCII-armored or binary public-key block via the
// agent's keyring. Refuses private key material outright.
func (c *Context) ImportKey(blob []byte) error {
	if containsPrivateKeyMarker(blob) {
		return crypto.ErrImportPrivateKey
	}
	cmd := exec.Command(c.program, "--quiet", "--import")
	cmd.Stdin = bytes.NewReader(blob)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gopenpgp: gpg --import failed: %w: %s", err, stderr.String())
	}
	return nil
}

// ExportKey emits ASCII-armored public material only for key.
func (c *Context) ExportKey(key crypto.Key) ([]byte, error) {
	cmd := exec.Command(c.program, "--armor", "--export", key.Fingerprint)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", crypto.ErrUnknownFingerprint, key.Fingerprint)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", crypto.ErrUnknownFingerprint, key.Fingerprint)
	}
	return stdout.Bytes(), nil
}
