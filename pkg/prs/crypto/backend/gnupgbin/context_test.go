package gnupgbin

import (
	"testing"
	"unicode/utf16"
)

func TestParseVersion(t *testing.T) {
	v := parseVersion("2.4.3")
	if v != [3]int{2, 4, 3} {
		t.Errorf("got %v", v)
	}
}

func TestCompareVersion(t *testing.T) {
	if compareVersion([3]int{1, 9, 9}, minVersion) >= 0 {
		t.Error("1.9.9 should be older than minVersion")
	}
	if compareVersion([3]int{2, 0, 0}, minVersion) != 0 {
		t.Error("2.0.0 should equal minVersion")
	}
	if compareVersion([3]int{2, 4, 0}, minVersion) <= 0 {
		t.Error("2.4.0 should be newer than minVersion")
	}
}

func TestDecodeOutputUTF8Passthrough(t *testing.T) {
	in := []byte("hello world")
	if string(decodeOutput(in)) != "hello world" {
		t.Error("valid UTF-8 must pass through unchanged")
	}
}

func TestDecodeOutputUTF16Fallback(t *testing.T) {
	encoded := utf16.Encode([]rune("hi"))
	buf := make([]byte, len(encoded)*2)
	for i, u := range encoded {
		buf[2*i] = byte(u)
		buf[2*i+1] = byte(u >> 8)
	}
	// invalid UTF-8 byte sequence forces the UTF-16 path
	buf = append(buf, 0xff)
	if len(buf)%2 != 0 {
		buf = append(buf, 0x00)
	}
	got := string(decodeOutput(buf))
	if got == "" {
		t.Error("expected non-empty decode of UTF-16 fallback input")
	}
}

func TestUIDRegex(t *testing.T) {
	m := reUID.FindStringSubmatch("uid           [ultimate] Alice <alice@example.com>")
	if m == nil || m[1] != "Alice <alice@example.com>" {
		t.Errorf("unexpected uid match: %v", m)
	}
}
