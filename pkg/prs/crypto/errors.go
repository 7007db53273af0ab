package crypto

import "errors"

// Sentinel errors for the crypto context taxonomy (spec section 7).
// Backends wrap these with additional context via fmt.Errorf("...: %w", ...)
// so callers can still errors.Is against the stable sentinel.
var (
	ErrNoRecipients      = errors.New("crypto: no recipients specified")
	ErrUnknownFingerprint = errors.New("crypto: fingerprint does not match any key in the local keyring")
	ErrNoSecretKey       = errors.New("crypto: no matching secret key available to decrypt")
	ErrImportPrivateKey  = errors.New("crypto: refusing to import a private key block")
	ErrUnsupportedVersion = errors.New("crypto: gpg version is too old")
	ErrUnexpectedOutput  = errors.New("crypto: unexpected gpg output format")
)

// ErrUnsupported reports that no backend supports the requested protocol.
type ErrUnsupported struct {
	Proto Proto
}

func (e *ErrUnsupported) Error() string {
	return "crypto: protocol not supported: " + e.Proto.Name()
}
