package crypto

// Recipients is a list of Keys that all share a single Proto. A secret is
// encrypted for every recipient in the set.
type Recipients struct {
	keys []Key
}

// NewRecipients builds a Recipients set from keys.
//
// Panics if keys use more than one Proto — recipient sets are expected to
// be homogeneous; construction from a known-good source (a single store's
// .gpg-id file, always GPG today) never hits this path in practice.
func NewRecipients(keys []Key) Recipients {
	if !keysSameProto(keys) {
		panic("crypto: recipient keys must use the same protocol")
	}
	out := make([]Key, len(keys))
	copy(out, keys)
	return Recipients{keys: out}
}

// Keys returns the recipient keys.
func (r Recipients) Keys() []Key {
	return r.keys
}

// Len returns the number of recipients.
func (r Recipients) Len() int {
	return len(r.keys)
}

// Add appends a recipient.
//
// Panics if the new key uses a different protocol than the existing set.
func (r *Recipients) Add(key Key) {
	r.keys = append(r.keys, key)
	if !keysSameProto(r.keys) {
		panic("crypto: added recipient key uses a different protocol")
	}
}

// Remove drops the given key, matched by fingerprint equality.
func (r *Recipients) Remove(key Key) {
	out := r.keys[:0]
	for _, k := range r.keys {
		if !k.Equal(key) {
			out = append(out, k)
		}
	}
	r.keys = out
}

// RemoveAll drops every key in keys from the recipient set.
func (r *Recipients) RemoveAll(keys []Key) {
	out := r.keys[:0]
	for _, k := range r.keys {
		if !KeysContainFingerprint(keys, k.Fingerprint) {
			out = append(out, k)
		}
	}
	r.keys = out
}

// HasFingerprint reports whether the set contains a key with fingerprint.
func (r Recipients) HasFingerprint(fingerprint string) bool {
	return KeysContainFingerprint(r.keys, fingerprint)
}

func keysSameProto(keys []Key) bool {
	if len(keys) < 2 {
		return true
	}
	first := keys[0].Proto
	for _, k := range keys[1:] {
		if k.Proto != first {
			return false
		}
	}
	return true
}
