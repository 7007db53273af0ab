// Package gnupgbin implements crypto.Context by shelling out to the gpg
// executable for every operation, grounded on the gpg-cli driver pattern:
// --keyid-format LONG key listings, --trust-model=always encryption, and a version
// gate before anything is attempted.
package gnupgbin

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/prsgo/prs/pkg/prs/crypto"
	"github.com/prsgo/prs/pkg/prs/secretbytes"
)

func init() {
	crypto.Register(crypto.ProtoGPG, crypto.BackendSubprocess, func(opts crypto.Options) (crypto.Context, error) {
		return New(opts)
	})
}

// minVersion is the oldest gpg release this backend supports: 2.0.0. Below
// it, --trust-model=always and --with-colons output formats are not
// guaranteed stable.
var minVersion = [3]int{2, 0, 0}

// Context drives the gpg binary directly, with no in-process crypto
// library involved at all.
type Context struct {
	binary string
}

// New resolves the gpg binary (opts.Program, else PATH lookup) and
// verifies its reported version meets minVersion.
func New(opts crypto.Options) (*Context, error) {
	binary := opts.Program
	if binary == "" {
		resolved, err := exec.LookPath("gpg")
		if err != nil {
			return nil, fmt.Errorf("gnupgbin: gpg not found in PATH: %w", err)
		}
		binary = resolved
	}

	c := &Context{binary: binary}
	if err := c.checkVersion(); err != nil {
		return nil, err
	}
	if opts.GPGTTY && os.Getenv("GPG_TTY") == "" {
		if tty, err := exec.Command("tty").Output(); err == nil {
			if t := strings.TrimSpace(string(tty)); t != "" && t != "not a tty" {
				_ = os.Setenv("GPG_TTY", t)
			}
		}
	}
	return c, nil
}

func (c *Context) checkVersion() error {
	out, err := c.run(nil, "--version")
	if err != nil {
		return fmt.Errorf("gnupgbin: failed to run gpg --version: %w", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "gpg ") {
			continue
		}
		fields := strings.Fields(line)
		v := parseVersion(fields[len(fields)-1])
		if compareVersion(v, minVersion) < 0 {
			return fmt.Errorf("%w: found %s, need >= %d.%d.%d", crypto.ErrUnsupportedVersion, fields[len(fields)-1], minVersion[0], minVersion[1], minVersion[2])
		}
		return nil
	}
	return crypto.ErrUnexpectedOutput
}

func parseVersion(s string) [3]int {
	var v [3]int
	parts := strings.SplitN(s, ".", 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, _ := strconv.Atoi(strings.TrimFunc(parts[i], func(r rune) bool { return r < '0' || r > '9' }))
		v[i] = n
	}
	return v
}

func compareVersion(a, b [3]int) int {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return 0
}

// run executes gpg with args, feeding stdin if non-nil, and decodes
// stdout as UTF-8 falling back to UTF-16 (some Windows gpg builds emit
// UTF-16 on redirected stdout).
func (c *Context) run(stdin []byte, args ...string) ([]byte, error) {
	env := append(os.Environ(), "LANG=en_US.UTF-8", "LANGUAGE=en_US.UTF-8")
	cmd := exec.Command(c.binary, args...)
	cmd.Env = env
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := decodeOutput(stdout.Bytes())
	if err != nil {
		return out, &execError{err: err, stderr: stderr.String()}
	}
	return out, nil
}

type execError struct {
	err    error
	stderr string
}

func (e *execError) Error() string {
	if e.stderr != "" {
		return fmt.Sprintf("%v: %s", e.err, e.stderr)
	}
	return e.err.Error()
}

func (e *execError) Unwrap() error { return e.err }

// decodeOutput returns s unchanged if already valid UTF-8, otherwise
// attempts a UTF-16 (little-endian, no BOM) reinterpretation.
func decodeOutput(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	if len(b)%2 != 0 {
		return b
	}
	u16 := make([]uint16, len(b)/2)
	for i := range u16 {
		u16[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return []byte(string(utf16.Decode(u16)))
}

// SupportsProto reports whether p is GPG.
func (c *Context) SupportsProto(p crypto.Proto) bool {
	return p == crypto.ProtoGPG
}

// Encrypt shells to `gpg --trust-model always --encrypt`, one --recipient
// flag per key, matching the gpg-cli driver's always-trust disposition.
func (c *Context) Encrypt(recipients crypto.Recipients, plaintext secretbytes.Plaintext) (secretbytes.Ciphertext, error) {
	if recipients.Len() == 0 {
		return secretbytes.Ciphertext{}, crypto.ErrNoRecipients
	}

	args := []string{"--quiet", "--openpgp", "--trust-model", "always", "--encrypt"}
	for _, k := range recipients.Keys() {
		args = append(args, "--recipient", k.Fingerprint)
	}

	out, err := c.run(plaintext.Unsecure(), args...)
	if err != nil {
		if ee, ok := err.(*execError); ok && strings.Contains(strings.ToLower(ee.stderr), "unusable public key") {
			return secretbytes.Ciphertext{}, crypto.ErrUnknownFingerprint
		}
		return secretbytes.Ciphertext{}, fmt.Errorf("gnupgbin: encrypt failed: %w", err)
	}
	return secretbytes.NewCiphertextBytes(out), nil
}

// Decrypt shells to `gpg --decrypt`.
func (c *Context) Decrypt(ciphertext secretbytes.Ciphertext) (secretbytes.Plaintext, error) {
	out, err := c.run(ciphertext.Unsecure(), "--quiet", "--decrypt")
	if err != nil {
		if ee, ok := err.(*execError); ok && strings.Contains(strings.ToLower(ee.stderr), "decryption failed: no secret key") {
			return secretbytes.Plaintext{}, crypto.ErrNoSecretKey
		}
		return secretbytes.Plaintext{}, fmt.Errorf("gnupgbin: decrypt failed: %w", err)
	}
	return secretbytes.NewPlaintextBytes(out), nil
}

// CanDecrypt reports false only on the specific "no secret key" failure
// mode; every other error is coerced to true.
func (c *Context) CanDecrypt(ciphertext secretbytes.Ciphertext) (bool, error) {
	pt, err := c.Decrypt(ciphertext)
	if err == nil {
		pt.Close()
		return true, nil
	}
	if err == crypto.ErrNoSecretKey {
		return false, nil
	}
	return true, nil
}

var (
	reFingerprint  = regexp.MustCompile(`^[0-9A-Fa-f]{16,}$`)
	reUID          = regexp.MustCompile(`^uid\s*\[[a-z ]+\]\s*(.+)$`)
	reCapabilities = regexp.MustCompile(`\[([SCEA]+)\]`)
)

// KeysPublic enumerates encryption-capable public keys via `--list-keys
// --keyid-format LONG`.
func (c *Context) KeysPublic() ([]crypto.Key, error) {
	return c.listKeys("--list-keys")
}

// KeysPrivate enumerates encryption-capable keys with a local secret key.
func (c *Context) KeysPrivate() ([]crypto.Key, error) {
	return c.listKeys("--list-secret-keys")
}

// reRSASlug matches the numeric key-size suffix of an RSA algorithm slug,
// e.g. "rsa4096" -> "4096".
var reRSASlug = regexp.MustCompile(`^rsa(\d+)$`)

// parseAlgoSlug classifies the algorithm/keysize slug gpg prints before
// the "/" in a pub/sec listing line (e.g. "rsa4096", "ed25519",
// "nistp256", "cv25519") into a family, bit strength, and curve name.
func parseAlgoSlug(slug string) (algo string, bits int, curve string) {
	lower := strings.ToLower(slug)
	if m := reRSASlug.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return crypto.AlgoRSA, n, ""
	}
	switch lower {
	case "ed25519":
		return crypto.AlgoEdDSA, 255, crypto.NormalizeCurveName(lower)
	case "ed448":
		return crypto.AlgoEdDSA, 448, crypto.NormalizeCurveName(lower)
	case "cv25519", "x25519":
		return crypto.AlgoECC, 256, crypto.NormalizeCurveName(lower)
	case "nistp256":
		return crypto.AlgoECC, 256, crypto.NormalizeCurveName(lower)
	case "nistp384":
		return crypto.AlgoECC, 384, crypto.NormalizeCurveName(lower)
	case "nistp521":
		return crypto.AlgoECC, 521, crypto.NormalizeCurveName(lower)
	default:
		return "", 0, ""
	}
}

// lineHasEncryptCapability reports whether a pub/sec/sub/ssb listing line
// carries an "E" usage flag in its bracketed capability group, e.g.
// "pub   ed25519/ABCD 2020-01-01 [SC]" or "sub   cv25519/1234 ... [E]".
func lineHasEncryptCapability(line string) bool {
	m := reCapabilities.FindStringSubmatch(line)
	return m != nil && strings.Contains(m[1], "E")
}

// listKeys parses `--list-keys`/`--list-secret-keys` output into
// encryption-capable Keys, following the record layout spec.md's
// keyring-parsing algorithm describes: two discarded header lines, then
// one record per `pub `/`sec ` line, its fingerprint, its user ids, and
// any subkey lines up to the next blank line. A key is kept only if its
// primary key or one of its subkeys carries the "E" encrypt capability
// flag; any line encountered outside of a record is UnexpectedOutput.
func (c *Context) listKeys(listFlag string) ([]crypto.Key, error) {
	out, err := c.run(nil, "--quiet", "--keyid-format", "LONG", listFlag)
	if err != nil {
		if ee, ok := err.(*execError); ok && strings.Contains(strings.ToLower(ee.stderr), "no public key") {
			return nil, nil
		}
		return nil, fmt.Errorf("gnupgbin: %s failed: %w", listFlag, err)
	}

	lines := strings.Split(string(out), "\n")
	allBlank := true
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			allBlank = false
			break
		}
	}
	if allBlank {
		return nil, nil
	}
	if len(lines) >= 2 {
		lines = lines[2:]
	}

	var keys []crypto.Key
	var current *crypto.Key
	var encCapable bool
	flush := func() {
		if current != nil && encCapable {
			keys = append(keys, *current)
		}
		current = nil
		encCapable = false
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "pub ") || strings.HasPrefix(trimmed, "sec "):
			flush()
			current = &crypto.Key{Proto: crypto.ProtoGPG}
			encCapable = lineHasEncryptCapability(trimmed)
			fields := strings.Fields(trimmed)
			if len(fields) >= 2 {
				slug := fields[1]
				if slash := strings.IndexByte(slug, '/'); slash >= 0 {
					current.Fingerprint = slug[slash+1:]
					slug = slug[:slash]
				}
				current.Algo, current.Bits, current.Curve = parseAlgoSlug(slug)
			}
		case reFingerprint.MatchString(strings.ReplaceAll(trimmed, " ", "")) && current != nil && current.Fingerprint != "" && len(strings.ReplaceAll(trimmed, " ", "")) > len(current.Fingerprint):
			current.Fingerprint = strings.ReplaceAll(trimmed, " ", "")
		case strings.HasPrefix(trimmed, "sub ") || strings.HasPrefix(trimmed, "ssb "):
			if current == nil {
				return nil, crypto.ErrUnexpectedOutput
			}
			if lineHasEncryptCapability(trimmed) {
				encCapable = true
			}
		default:
			if m := reUID.FindStringSubmatch(trimmed); m != nil && current != nil {
				current.UserIDs = append(current.UserIDs, m[1])
				continue
			}
			if current == nil {
				return nil, crypto.ErrUnexpectedOutput
			}
		}
	}
	flush()
	return keys, nil
}

// ImportKey imports an ASCII-armored or binary public-key block. Refuses
// private key material outright.
func (c *Context) ImportKey(blob []byte) error {
	if bytes.Contains(blob, []byte("BEGIN PGP PRIVATE KEY BLOCK")) {
		return crypto.ErrImportPrivateKey
	}
	_, err := c.run(blob, "--quiet", "--import")
	if err != nil {
		return fmt.Errorf("gnupgbin: import failed: %w", err)
	}
	return nil
}

// ExportKey emits ASCII-armored public material only for key.
func (c *Context) ExportKey(key crypto.Key) ([]byte, error) {
	out, err := c.run(nil, "--armor", "--export", key.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", crypto.ErrUnknownFingerprint, key.Fingerprint)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", crypto.ErrUnknownFingerprint, key.Fingerprint)
	}
	return out, nil
}
