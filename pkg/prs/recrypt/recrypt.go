// Package recrypt implements the re-encryption engine: decrypting each
// secret under the store's old recipients and writing it back encrypted
// for the current recipient set, without renaming the file so aliases
// keep working.
package recrypt

import (
	"fmt"

	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/store"
)

// Progress is called once per secret, before attempting it.
type Progress func(i, total int, name string)

// Failure pairs a secret with the error encountered while re-encrypting
// it.
type Failure struct {
	Secret store.Secret
	Err    error
}

// Run re-encrypts every secret in secrets under recipients, using ctx for
// both the decrypt and the re-encrypt. A per-secret failure is recorded
// and does not abort the batch; the caller inspects the returned slice
// (non-empty means at least one secret needs manual attention) and
// decides the resulting exit status.
func Run(ctx crypto.Context, recipients crypto.Recipients, secrets []store.Secret, progress Progress) []Failure {
	var failures []Failure
	total := len(secrets)

	for i, secret := range secrets {
		if progress != nil {
			progress(i, total, secret.Name)
		}
		if err := recryptOne(ctx, recipients, secret); err != nil {
			failures = append(failures, Failure{Secret: secret, Err: fmt.Errorf("recrypt: %s: %w", secret.Name, err)})
		}
	}
	return failures
}

// FilterRegular drops symlink aliases from secrets, since an alias has no
// ciphertext of its own to re-encrypt.
func FilterRegular(secrets []store.Secret) []store.Secret {
	out := make([]store.Secret, 0, len(secrets))
	for _, s := range secrets {
		if !s.Symlink {
			out = append(out, s)
		}
	}
	return out
}

func recryptOne(ctx crypto.Context, recipients crypto.Recipients, secret store.Secret) error {
	plaintext, err := crypto.DecryptFile(ctx, secret.Path)
	if err != nil {
		return fmt.Errorf("failed to read secret: %w", err)
	}
	defer plaintext.Close()

	if err := crypto.EncryptFile(ctx, recipients, plaintext, secret.Path); err != nil {
		return fmt.Errorf("failed to write changed secret: %w", err)
	}
	return nil
}
