package secretbytes

import "testing"

func TestFirstLine(t *testing.T) {
	p := NewPlaintext("pin: 1234\nuser: alice")
	first := p.FirstLine()
	if string(first.Unsecure()) != "pin: 1234" {
		t.Errorf("unexpected first line: %q", first.Unsecure())
	}
}

func TestFirstLineNoNewline(t *testing.T) {
	p := NewPlaintext("onlyline")
	first := p.FirstLine()
	if string(first.Unsecure()) != "onlyline" {
		t.Errorf("unexpected first line: %q", first.Unsecure())
	}
}

func TestProperty(t *testing.T) {
	p := NewPlaintext("hunter2\nUser: alice\nHost: example.com")

	v, err := p.Property("user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(v.Unsecure()) != "alice" {
		t.Errorf("got %q, want alice", v.Unsecure())
	}

	_, err = p.Property("missing")
	if !IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestAppend(t *testing.T) {
	a := NewPlaintext("foo")
	b := NewPlaintext("bar")
	out := a.Append(b, true)
	if string(out.Unsecure()) != "foo\nbar" {
		t.Errorf("got %q", out.Unsecure())
	}
}

func TestCloseZeroes(t *testing.T) {
	p := NewPlaintext("secret")
	p.Close()
	for _, b := range p.Unsecure() {
		if b != 0 {
			t.Fatal("expected buffer to be zeroed after Close")
		}
	}
}

func TestIsEmpty(t *testing.T) {
	if !(Plaintext{}).IsEmpty() {
		t.Error("zero-value Plaintext should be empty")
	}
	if NewPlaintext("x").IsEmpty() {
		t.Error("non-empty Plaintext reported as empty")
	}
}
