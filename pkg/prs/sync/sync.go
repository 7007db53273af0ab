// Package sync implements the git-backed sync layer: readiness
// classification, prepare/finalize around mutating store actions, and
// the manual recovery operations (commit-all, reset-hard).
//
// Read-only repository queries go through go-git/v5; mutating
// operations (pull, push, commit, init, clone) shell to the system git
// binary, mirroring the split between a library-backed read path and a
// subprocess-backed write path.
package sync

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"

	"github.com/prsgo/prs/pkg/prs/prserr"
)

const (
	storeGitDir      = ".git"
	fetchHeadFile    = ".git/FETCH_HEAD"
	gitPullOutdated  = 30 * time.Second
)

// Readyness classifies a store's git state ahead of a mutating action.
type Readyness int

const (
	// NoSync means the store has no .git directory: sync is not in use.
	NoSync Readyness = iota
	// Ready means the repository is clean and the working tree has no
	// changes.
	Ready
	// Dirty means the repository is clean but the working tree has
	// modified, staged, or untracked files.
	Dirty
	// RepoState means the repository itself is mid-operation (merge,
	// rebase, cherry-pick, bisect, ...); State names it.
	RepoState
)

func (r Readyness) String() string {
	switch r {
	case NoSync:
		return "NoSync"
	case Ready:
		return "Ready"
	case Dirty:
		return "Dirty"
	case RepoState:
		return "RepoState"
	default:
		return "Unknown"
	}
}

// Manager wraps the git operations for one store root.
type Manager struct {
	root string

	mu          sync.Mutex
	sshGuessFor map[string]bool

	allowDirty        bool
	noSync            bool
	pushOutdatedAfter time.Duration
}

// ManagerOptions configures the optional behavior flags sourced from the
// on-disk config (see config.SyncConfig); the zero value reproduces the
// package's built-in defaults.
type ManagerOptions struct {
	// AllowDirty permits Prepare to proceed against a Dirty working
	// tree instead of aborting.
	AllowDirty bool
	// NoSync disables sync entirely: Prepare/Finalize become no-ops
	// even when a .git directory is present.
	NoSync bool
	// PushOutdatedAfter overrides gitPullOutdated; zero keeps the
	// package default.
	PushOutdatedAfter time.Duration
}

// NewManager constructs a sync Manager rooted at storeRoot.
func NewManager(storeRoot string, opts ManagerOptions) *Manager {
	pushOutdatedAfter := opts.PushOutdatedAfter
	if pushOutdatedAfter <= 0 {
		pushOutdatedAfter = gitPullOutdated
	}
	return &Manager{
		root:              storeRoot,
		sshGuessFor:       map[string]bool{},
		allowDirty:        opts.AllowDirty,
		noSync:            opts.NoSync,
		pushOutdatedAfter: pushOutdatedAfter,
	}
}

func (m *Manager) isInit() bool {
	info, err := os.Stat(filepath.Join(m.root, storeGitDir))
	return err == nil && info.IsDir()
}

func (m *Manager) openRepo() (*gogit.Repository, error) {
	return gogit.PlainOpen(m.root)
}

// Readyness classifies the store's current sync state.
func (m *Manager) Readyness() (Readyness, string, error) {
	if !m.isInit() {
		return NoSync, "", nil
	}

	repo, err := m.openRepo()
	if err != nil {
		return 0, "", fmt.Errorf("sync: failed to open repository: %w", err)
	}

	if state := repoState(m.root); state != "" {
		return RepoState, state, nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return 0, "", fmt.Errorf("sync: failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return 0, "", fmt.Errorf("sync: failed to read status: %w", err)
	}
	if !status.IsClean() {
		return Dirty, "", nil
	}
	return Ready, "", nil
}

// repoState reports a non-empty string when the repository's plumbing
// directory shows an in-progress merge/rebase/cherry-pick/bisect,
// mirroring git2::RepositoryState's detection via marker files since
// go-git does not expose this directly.
func repoState(root string) string {
	markers := map[string]string{
		"MERGE_HEAD":       "merge",
		"REBASE_HEAD":      "rebase",
		"CHERRY_PICK_HEAD": "cherry-pick",
		"BISECT_LOG":       "bisect",
		"REVERT_HEAD":      "revert",
	}
	for file, state := range markers {
		if _, err := os.Stat(filepath.Join(root, storeGitDir, file)); err == nil {
			return state
		}
	}
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if info, err := os.Stat(filepath.Join(root, storeGitDir, dir)); err == nil && info.IsDir() {
			return "rebase"
		}
	}
	return ""
}

// Prepare is called before a mutating action: a no-op when sync is not
// initialized or disabled via NoSync; otherwise it aborts with a
// CodeSyncDirty/CodeSyncRepoState error when the repository is
// non-clean (unless AllowDirty is set, which only waives the Dirty
// case — a repository mid-merge/rebase/etc. always aborts), and
// finally pulls from the remote if one is configured.
func (m *Manager) Prepare() error {
	if !m.isInit() || m.noSync {
		return nil
	}

	ready, state, err := m.Readyness()
	if err != nil {
		return err
	}
	switch ready {
	case RepoState:
		return prserr.New(prserr.CodeSyncRepoState, fmt.Sprintf("repository has a %s in progress", state))
	case Dirty:
		if !m.allowDirty {
			return prserr.New(prserr.CodeSyncDirty, "repository has uncommitted changes").
				WithHint("commit or stash them first, or set sync.allow_dirty in the config")
		}
	}

	hasRemote, err := m.HasRemote()
	if err != nil {
		return err
	}
	if hasRemote {
		return m.pull()
	}
	return nil
}

// Finalize is called after a mutating action: a no-op when sync is not
// initialized or disabled via NoSync; otherwise it commits a dirty
// working tree with msg, then pushes if a remote is configured and the
// push-optimization heuristic says a push is needed.
func (m *Manager) Finalize(msg string) error {
	if !m.isInit() || m.noSync {
		return nil
	}

	ready, _, err := m.Readyness()
	if err != nil {
		return err
	}
	if ready == Dirty {
		if err := m.CommitAll(msg, false); err != nil {
			return err
		}
	}

	hasRemote, err := m.HasRemote()
	if err != nil {
		return err
	}
	if hasRemote && m.needToPush() {
		return m.push()
	}
	return nil
}

func (m *Manager) runGit(args ...string) ([]byte, error) {
	cmd := exec.Command("git", append([]string{"-C", m.root}, args...)...)
	cmd.Env = append(os.Environ(), m.sshCommandEnv()...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func (m *Manager) pull() error {
	_, err := m.runGit("pull", "-q")
	return err
}

func (m *Manager) push() error {
	_, err := m.runGit("push", "-q")
	return err
}

// CommitAll stages every path (including dotfiles like .gpg-id and
// .public-keys/) and commits with msg. When force is set, an empty-index
// commit is still created, used by the manual "sync commit" recovery
// path.
func (m *Manager) CommitAll(msg string, force bool) error {
	if _, err := m.runGit("add", "-A"); err != nil {
		return err
	}
	args := []string{"commit", "-q", "-m", msg}
	if force {
		args = append(args, "--allow-empty")
	}
	_, err := m.runGit(args...)
	if err != nil && !force && strings.Contains(err.Error(), "nothing to commit") {
		return nil
	}
	return err
}

// ResetHardAll hard-resets the working tree to HEAD, discarding
// uncommitted changes.
func (m *Manager) ResetHardAll() error {
	_, err := m.runGit("reset", "--hard", "HEAD")
	return err
}

// ChangedFilesRaw returns a verbatim `git status` snapshot, short-form
// when quiet is set.
func (m *Manager) ChangedFilesRaw(quiet bool) (string, error) {
	args := []string{"status"}
	if quiet {
		args = append(args, "--short")
	}
	out, err := m.runGit(args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Status wraps ChangedFilesRaw under the name used elsewhere in the
// sync vocabulary for the same git-status snapshot.
func (m *Manager) Status(quiet bool) (string, error) {
	return m.ChangedFilesRaw(quiet)
}

// HasRemote reports whether at least one remote is configured.
func (m *Manager) HasRemote() (bool, error) {
	if !m.isInit() {
		return false, nil
	}
	repo, err := m.openRepo()
	if err != nil {
		return false, fmt.Errorf("sync: failed to open repository: %w", err)
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return false, fmt.Errorf("sync: failed to list remotes: %w", err)
	}
	return len(remotes) > 0, nil
}

// RemoteGetURL returns the URL of the named remote (defaults to
// "origin" when name is empty).
func (m *Manager) RemoteGetURL(name string) (string, error) {
	if name == "" {
		name = "origin"
	}
	out, err := m.runGit("remote", "get-url", name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RemoteSetURL sets the URL of the named remote, adding it if absent.
func (m *Manager) RemoteSetURL(name, url string) error {
	if name == "" {
		name = "origin"
	}
	if _, err := m.runGit("remote", "set-url", name, url); err != nil {
		if _, addErr := m.runGit("remote", "add", name, url); addErr != nil {
			return addErr
		}
		return nil
	}
	return nil
}

// Init runs `git init` and creates an initial commit of the store's
// current contents. Idempotent on re-init.
func (m *Manager) Init() error {
	if _, err := m.runGit("init"); err != nil {
		return err
	}
	return m.CommitAll("Initialize password store", true)
}

// Clone clones url into the store root, which must be empty.
func (m *Manager) Clone(url string, quiet bool) error {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return fmt.Errorf("sync: failed to read store root: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("sync: store root must be empty to clone into")
	}

	args := []string{"clone"}
	if quiet {
		args = append(args, "-q")
	}
	args = append(args, url, m.root)

	cmd := exec.Command("git", args...)
	cmd.Env = append(os.Environ(), m.sshCommandEnv()...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sync: git clone failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
