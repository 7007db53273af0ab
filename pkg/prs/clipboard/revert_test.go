package clipboard

import (
	"bytes"
	"testing"
	"time"
)

type fakeProvider struct {
	contents []byte
}

func (f *fakeProvider) Copy(data []byte) error {
	f.contents = append([]byte(nil), data...)
	return nil
}

func (f *fakeProvider) Paste() ([]byte, error) {
	return f.contents, nil
}

func TestRunInternalRevertClearsUnchangedClipboard(t *testing.T) {
	p := &fakeProvider{contents: []byte("secret")}
	if err := RunInternalRevert(p, []byte("secret"), time.Millisecond); err != nil {
		t.Fatalf("RunInternalRevert: %v", err)
	}
	if len(p.contents) != 0 {
		t.Errorf("expected clipboard cleared, got %q", p.contents)
	}
}

func TestRunInternalRevertLeavesChangedClipboard(t *testing.T) {
	p := &fakeProvider{contents: []byte("secret")}
	go func() {
		// Simulate the user copying something else before the timer fires.
	}()
	p.contents = []byte("something-else")
	if err := RunInternalRevert(p, []byte("secret"), time.Millisecond); err != nil {
		t.Fatalf("RunInternalRevert: %v", err)
	}
	if !bytes.Equal(p.contents, []byte("something-else")) {
		t.Errorf("expected clipboard left untouched, got %q", p.contents)
	}
}
