package prserr

import (
	"bytes"
	"errors"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	a := New(CodeSyncDirty, "store is dirty")
	b := New(CodeSyncDirty, "a different message, same code")
	if !errors.Is(a, b) {
		t.Error("expected errors with the same Code to match via errors.Is")
	}

	c := New(CodeSyncNoSync, "not a sync store")
	if errors.Is(a, c) {
		t.Error("expected errors with different Codes not to match")
	}
}

func TestErrorUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := New(CodeSecretRead, "failed to read secret").WithCause(cause)
	if !errors.Is(err, cause) {
		t.Error("expected Unwrap to expose the original cause")
	}
}

func TestPrintRendersCausedByAndHint(t *testing.T) {
	cause := errors.New("no such file")
	err := New(CodeNoRootDir, "store root does not exist").WithCause(cause).WithHint("run `prs init`")
	var buf bytes.Buffer
	code := Print(&buf, err)
	if code != ExitStoreError {
		t.Errorf("expected ExitStoreError, got %v", code)
	}
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("error: store root does not exist")) {
		t.Errorf("missing error line: %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("caused by: no such file")) {
		t.Errorf("missing caused-by line: %q", out)
	}
	if !bytes.Contains([]byte(out), []byte("hint: run `prs init`")) {
		t.Errorf("missing hint line: %q", out)
	}
}
