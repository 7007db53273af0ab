package util

import (
	"os"
	"testing"
)

func TestNormalizeFingerprint(t *testing.T) {
	if got := NormalizeFingerprint(" abcd 1234 "); got != "ABCD1234" {
		t.Errorf("got %q", got)
	}
}

func TestShortFingerprint(t *testing.T) {
	if got := ShortFingerprint("ABCD1234EF567890", 8); got != "EF567890" {
		t.Errorf("got %q", got)
	}
	if got := ShortFingerprint("AB", 8); got != "AB" {
		t.Errorf("got %q", got)
	}
}

func TestFormatFingerprint(t *testing.T) {
	if got := FormatFingerprint("ABCD1234"); got != "ABCD 1234" {
		t.Errorf("got %q", got)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := os.Getenv("HOME")
	if home == "" {
		t.Skip("no HOME set")
	}
	got, err := ExpandPath("~/foo")
	if err != nil {
		t.Fatal(err)
	}
	want := home + "/foo"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestScratchDirNonEmpty(t *testing.T) {
	if ScratchDir() == "" {
		t.Error("ScratchDir must never return empty")
	}
}
