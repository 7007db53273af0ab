// Package secretbytes provides zero-on-close byte wrappers for plaintext and
// ciphertext secret material.
package secretbytes

import (
	"runtime"
	"strings"
)

// Plaintext holds decrypted secret contents.
//
// Callers MUST call Close (or defer it right after construction) once the
// value is no longer needed. A finalizer is registered as a last-resort
// backstop, but it is not a substitute for an explicit Close.
type Plaintext struct {
	buf    []byte
	closed bool
}

// Ciphertext holds encrypted secret contents.
type Ciphertext struct {
	buf    []byte
	closed bool
}

// NewPlaintext builds a Plaintext from a string.
func NewPlaintext(s string) Plaintext {
	return NewPlaintextBytes([]byte(s))
}

// NewPlaintextBytes builds a Plaintext, taking ownership of buf.
//
// Callers should not touch buf after passing it here.
func NewPlaintextBytes(buf []byte) Plaintext {
	p := Plaintext{buf: buf}
	runtime.SetFinalizer(&p, func(p *Plaintext) { p.zero() })
	return p
}

// NewCiphertextBytes builds a Ciphertext, taking ownership of buf.
func NewCiphertextBytes(buf []byte) Ciphertext {
	c := Ciphertext{buf: buf}
	runtime.SetFinalizer(&c, func(c *Ciphertext) { c.zero() })
	return c
}

// Unsecure returns the raw bytes. Never logged, printed, or serialized by
// this package itself — callers that do so break the secret-memory
// discipline described in the design notes.
func (p Plaintext) Unsecure() []byte {
	return p.buf
}

// Unsecure returns the raw bytes.
func (c Ciphertext) Unsecure() []byte {
	return c.buf
}

// IsEmpty reports whether the plaintext has zero length.
func (p Plaintext) IsEmpty() bool {
	return len(p.buf) == 0
}

// FirstLine returns everything before the first '\n', or the whole buffer
// if there is none, with a trailing '\r' removed.
func (p Plaintext) FirstLine() Plaintext {
	buf := p.buf
	if i := indexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}
	buf = trimCR(buf)
	out := make([]byte, len(buf))
	copy(out, buf)
	return NewPlaintextBytes(out)
}

// propertyNotFoundErr is returned by Property when no matching key is
// present; IsNotFound detects it.
type propertyNotFoundErr struct{ name string }

func (e *propertyNotFoundErr) Error() string { return "property not found: " + e.name }

// IsNotFound reports whether err is a "property not found" error.
func IsNotFound(err error) bool {
	_, ok := err.(*propertyNotFoundErr)
	return ok
}

// Property scans lines for the first one of the form "name: value"
// (case-insensitive on name, whitespace tolerated around the colon) and
// returns the trimmed remainder. Returns an error satisfying IsNotFound
// when absent.
func (p Plaintext) Property(name string) (Plaintext, error) {
	lines := strings.Split(string(p.buf), "\n")
	lowerName := strings.ToLower(strings.TrimSpace(name))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		if key != lowerName {
			continue
		}
		value := strings.TrimSpace(line[idx+1:])
		return NewPlaintext(value), nil
	}
	return Plaintext{}, &propertyNotFoundErr{name: name}
}

// Append concatenates other onto p, optionally inserting a newline between
// them, and returns a new Plaintext. Neither receiver nor argument is
// mutated in place; both should still be Closed by their owners.
func (p Plaintext) Append(other Plaintext, withNewline bool) Plaintext {
	sep := 0
	if withNewline && len(p.buf) > 0 {
		sep = 1
	}
	out := make([]byte, 0, len(p.buf)+sep+len(other.buf))
	out = append(out, p.buf...)
	if sep == 1 {
		out = append(out, '\n')
	}
	out = append(out, other.buf...)
	return NewPlaintextBytes(out)
}

// Close zeroes the backing buffer. Safe to call more than once.
func (p *Plaintext) Close() {
	p.zero()
}

// Close zeroes the backing buffer. Safe to call more than once.
func (c *Ciphertext) Close() {
	c.zero()
}

func (p *Plaintext) zero() {
	if p.closed {
		return
	}
	zero(p.buf)
	p.closed = true
}

func (c *Ciphertext) zero() {
	if c.closed {
		return
	}
	zero(c.buf)
	c.closed = true
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

func indexByte(buf []byte, b byte) int {
	for i, c := range buf {
		if c == b {
			return i
		}
	}
	return -1
}

func trimCR(buf []byte) []byte {
	if len(buf) > 0 && buf[len(buf)-1] == '\r' {
		return buf[:len(buf)-1]
	}
	return buf
}
