package sync

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"

	"github.com/prsgo/prs/pkg/prs/prserr"
)

func TestSSHHostOfSCPLike(t *testing.T) {
	host, isSSH := sshHostOf("git@github.com:owner/repo.git")
	if !isSSH || host != "github.com" {
		t.Errorf("got host=%q isSSH=%v", host, isSSH)
	}
}

func TestSSHHostOfSSHScheme(t *testing.T) {
	host, isSSH := sshHostOf("ssh://git@gitlab.com:22/owner/repo.git")
	if !isSSH || host != "gitlab.com" {
		t.Errorf("got host=%q isSSH=%v", host, isSSH)
	}
}

func TestSSHHostOfHTTPSIsNotSSH(t *testing.T) {
	_, isSSH := sshHostOf("https://github.com/owner/repo.git")
	if isSSH {
		t.Error("https URL must not be classified as SSH")
	}
}

func TestReadynessString(t *testing.T) {
	cases := map[Readyness]string{
		NoSync:    "NoSync",
		Ready:     "Ready",
		Dirty:     "Dirty",
		RepoState: "RepoState",
	}
	for r, want := range cases {
		if got := r.String(); got != want {
			t.Errorf("Readyness(%d).String() = %q, want %q", r, got, want)
		}
	}
}

func TestManagerNotInitReadyness(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, ManagerOptions{})
	r, state, err := m.Readyness()
	if err != nil {
		t.Fatalf("Readyness: %v", err)
	}
	if r != NoSync || state != "" {
		t.Errorf("expected NoSync for a directory with no .git, got %v %q", r, state)
	}
}

func TestPrepareAbortsOnDirtyWorkingTree(t *testing.T) {
	dir := t.TempDir()
	if _, err := gogit.PlainInit(dir, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := NewManager(dir, ManagerOptions{})
	err := m.Prepare()
	if err == nil {
		t.Fatal("expected Prepare to abort on a dirty working tree")
	}
	var perr *prserr.Error
	if !errors.As(err, &perr) || perr.Code != prserr.CodeSyncDirty {
		t.Errorf("expected CodeSyncDirty, got %v", err)
	}
}

func TestPrepareAllowsDirtyWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	if _, err := gogit.PlainInit(dir, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := NewManager(dir, ManagerOptions{AllowDirty: true})
	if err := m.Prepare(); err != nil {
		t.Errorf("expected Prepare to proceed with AllowDirty set, got %v", err)
	}
}

func TestPrepareNoopWhenNoSync(t *testing.T) {
	dir := t.TempDir()
	if _, err := gogit.PlainInit(dir, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := NewManager(dir, ManagerOptions{NoSync: true})
	if err := m.Prepare(); err != nil {
		t.Errorf("expected Prepare to no-op with NoSync set, got %v", err)
	}
}
