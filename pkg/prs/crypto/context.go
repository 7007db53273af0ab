package crypto

import (
	"fmt"
	"os"

	"github.com/prsgo/prs/pkg/prs/secretbytes"
)

// Context is the uniform operation set every crypto backend must provide.
//
// Concrete variants are the library-binding backend (crypto/backend/gopenpgp)
// and the subprocess backend (crypto/backend/gnupgbin). Selection happens at
// runtime via NewContext.
type Context interface {
	// Encrypt encrypts plaintext for recipients. Fails with ErrNoRecipients
	// when recipients is empty, ErrUnknownFingerprint if a recipient key is
	// not in the local keyring. Encryption MUST behave as if using a
	// trust-model-always disposition, so unknown-trust keys never abort.
	Encrypt(recipients Recipients, plaintext secretbytes.Plaintext) (secretbytes.Ciphertext, error)

	// Decrypt decrypts ciphertext. Fails with ErrNoSecretKey when the
	// local keyring holds none of the required secret keys.
	Decrypt(ciphertext secretbytes.Ciphertext) (secretbytes.Plaintext, error)

	// CanDecrypt reports whether Decrypt is likely to succeed, without
	// returning the plaintext. It returns false if and only if the only
	// fatal reason is a missing secret key; every other error is coerced
	// to true to preserve the possibility of success.
	CanDecrypt(ciphertext secretbytes.Ciphertext) (bool, error)

	// KeysPublic enumerates encryption-capable public keys in the keyring.
	KeysPublic() ([]Key, error)

	// KeysPrivate enumerates encryption-capable keys with a local secret
	// key.
	KeysPrivate() ([]Key, error)

	// ImportKey imports an ASCII-armored or binary public-key block.
	// MUST refuse (return a non-nil error) when given private key
	// material — importing secret keys is out of scope by design.
	ImportKey(blob []byte) error

	// ExportKey emits ASCII-armored public material only for key.
	ExportKey(key Key) ([]byte, error)

	// SupportsProto reports whether this context handles p.
	SupportsProto(p Proto) bool
}

// EncryptFile encrypts plaintext for recipients and writes the ciphertext
// to path.
func EncryptFile(ctx Context, recipients Recipients, plaintext secretbytes.Plaintext, path string) error {
	ct, err := ctx.Encrypt(recipients, plaintext)
	if err != nil {
		return err
	}
	defer ct.Close()
	return os.WriteFile(path, ct.Unsecure(), 0o600)
}

// DecryptFile reads path and decrypts its contents.
func DecryptFile(ctx Context, path string) (secretbytes.Plaintext, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return secretbytes.Plaintext{}, fmt.Errorf("crypto: failed to read ciphertext file: %w", err)
	}
	return ctx.Decrypt(secretbytes.NewCiphertextBytes(buf))
}

// CanDecryptFile reads path and reports whether it is likely decryptable.
func CanDecryptFile(ctx Context, path string) (bool, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("crypto: failed to read ciphertext file: %w", err)
	}
	return ctx.CanDecrypt(secretbytes.NewCiphertextBytes(buf))
}

// GetPublicKey resolves a single fingerprint to a Key from the keyring.
func GetPublicKey(ctx Context, fingerprint string) (Key, error) {
	keys, err := ctx.KeysPublic()
	if err != nil {
		return Key{}, err
	}
	for _, k := range keys {
		if FingerprintsEqual(k.Fingerprint, fingerprint) {
			return k, nil
		}
	}
	return Key{}, fmt.Errorf("%w: %s", ErrUnknownFingerprint, fingerprint)
}

// FindPublicKeys resolves a list of fingerprints against the local
// keyring. Fingerprints with no matching key are silently skipped.
func FindPublicKeys(ctx Context, fingerprints []string) ([]Key, error) {
	keys, err := ctx.KeysPublic()
	if err != nil {
		return nil, err
	}
	out := make([]Key, 0, len(fingerprints))
	for _, fp := range fingerprints {
		for _, k := range keys {
			if FingerprintsEqual(k.Fingerprint, fp) {
				out = append(out, k)
				break
			}
		}
	}
	return out, nil
}

// ExportKeyFile exports key's public material to path.
func ExportKeyFile(ctx Context, key Key, path string) error {
	blob, err := ctx.ExportKey(key)
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

// ImportKeyFile imports the public-key block stored at path.
func ImportKeyFile(ctx Context, path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("crypto: failed to read key file: %w", err)
	}
	return ctx.ImportKey(blob)
}
