package sync

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// multiplexableHosts is the small whitelist of SSH hosts known to
// support ControlMaster multiplexing without surprises.
var multiplexableHosts = map[string]bool{
	"github.com": true,
	"gitlab.com": true,
}

// needToPush reports whether a push is needed: true whenever the
// computation cannot be completed conservatively, true unconditionally
// if the last fetch is older than m.pushOutdatedAfter, and otherwise based
// on comparing the current branch's hash against its upstream.
func (m *Manager) needToPush() bool {
	if m.pullIsOutdated() {
		return true
	}

	branch, err := m.runGitTrim("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || branch == "" {
		return true
	}
	upstream, err := m.runGitTrim("rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil || upstream == "" {
		return true
	}

	localHash, err := m.runGitTrim("rev-parse", branch)
	if err != nil {
		return true
	}
	remoteHash, err := m.runGitTrim("rev-parse", upstream)
	if err != nil {
		return true
	}
	return localHash != remoteHash
}

func (m *Manager) runGitTrim(args ...string) (string, error) {
	out, err := m.runGit(args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (m *Manager) pullIsOutdated() bool {
	info, err := os.Stat(filepath.Join(m.root, fetchHeadFile))
	if err != nil {
		// No FETCH_HEAD at all (never pulled, or pulled via a method
		// that doesn't write it): conservatively treat as outdated.
		return true
	}
	return time.Since(info.ModTime()) > m.pushOutdatedAfter
}

// sshCommandEnv returns the extra environment variables to pass to a git
// subprocess. When GIT_SSH_COMMAND is not already set by the user, on
// Unix, and every SSH remote host is in multiplexableHosts, it sets a
// ControlMaster-enabled SSH command to reuse connections across the
// several git invocations one sync cycle makes.
func (m *Manager) sshCommandEnv() []string {
	if runtime.GOOS == "windows" {
		return nil
	}
	if os.Getenv("GIT_SSH_COMMAND") != "" {
		return nil
	}

	if !m.allRemoteHostsMultiplexable() {
		return nil
	}

	cmd := "ssh -o ControlMaster=auto -o ControlPath=/tmp/.prs-session--%r@%h:%p -o ControlPersist=1h -o ConnectTimeout=10"
	return []string{"GIT_SSH_COMMAND=" + cmd}
}

// allRemoteHostsMultiplexable reports whether every SSH remote URL
// configured for the repository names a host in the whitelist. The
// result is memoized per remote URL in m.sshGuessFor, scoped to this
// Manager rather than process-global.
func (m *Manager) allRemoteHostsMultiplexable() bool {
	urls, err := m.remoteURLs()
	if err != nil || len(urls) == 0 {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	allOK := true
	for _, url := range urls {
		host, isSSH := sshHostOf(url)
		if !isSSH {
			continue
		}
		if cached, ok := m.sshGuessFor[url]; ok {
			if !cached {
				allOK = false
			}
			continue
		}
		ok := multiplexableHosts[host]
		m.sshGuessFor[url] = ok
		if !ok {
			allOK = false
		}
	}
	return allOK
}

func (m *Manager) remoteURLs() ([]string, error) {
	repo, err := m.openRepo()
	if err != nil {
		return nil, err
	}
	remotes, err := repo.Remotes()
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, r := range remotes {
		urls = append(urls, r.Config().URLs...)
	}
	return urls, nil
}

// sshHostOf extracts the host from an SSH-style remote URL, supporting
// both "ssh://user@host/path" and "user@host:path" scp-like forms.
// Returns isSSH=false for non-SSH URLs (https://, file://, ...).
func sshHostOf(url string) (host string, isSSH bool) {
	switch {
	case strings.HasPrefix(url, "ssh://"):
		rest := strings.TrimPrefix(url, "ssh://")
		if at := strings.Index(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			rest = rest[:slash]
		}
		if colon := strings.IndexByte(rest, ':'); colon >= 0 {
			rest = rest[:colon]
		}
		return rest, true
	case strings.Contains(url, "@") && strings.Contains(url, ":") && !strings.Contains(url, "://"):
		at := strings.Index(url, "@")
		rest := url[at+1:]
		if colon := strings.IndexByte(rest, ':'); colon >= 0 {
			return rest[:colon], true
		}
		return "", false
	default:
		return "", false
	}
}
