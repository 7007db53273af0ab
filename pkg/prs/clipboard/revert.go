package clipboard

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// internalRevertFlag is the hidden CLI subcommand name the binary
// re-execs itself with to perform a detached clipboard revert. cmd/prs
// wires this to a cobra command of the same name.
const internalRevertFlag = "internal-clip-revert"

// Manager copies secret data to the clipboard and, when asked, arranges
// for it to be cleared again after a timeout without blocking the
// calling process.
type Manager struct {
	provider Provider
	// selfPath is the executable to re-exec for a detached revert;
	// defaults to os.Executable().
	selfPath string
	notify   func(string)
}

// NewManager constructs a Manager using the platform's detected
// clipboard provider.
func NewManager() (*Manager, error) {
	p, err := DetectProvider()
	if err != nil {
		return nil, err
	}
	self, err := os.Executable()
	if err != nil {
		self = ""
	}
	return &Manager{provider: p, selfPath: self, notify: notifyDesktop}, nil
}

// CopyTimeout copies data to the clipboard and, if timeout is positive,
// spawns a detached subprocess that clears the clipboard after timeout
// elapses, but only if the clipboard still holds what we put there, so it
// never clobbers something the user copied afterward. The clipboard
// contents from before the copy are not captured or restored; the revert
// always leaves the clipboard empty.
func (m *Manager) CopyTimeout(data []byte, timeout time.Duration) error {
	if err := m.provider.Copy(data); err != nil {
		return fmt.Errorf("clipboard: copy failed: %w", err)
	}
	if m.notify != nil {
		m.notify("Copied to clipboard")
	}
	if timeout <= 0 {
		return nil
	}
	return m.spawnRevert(data, timeout)
}

// spawnRevert launches a detached copy of the current binary that
// sleeps for timeout and then clears the clipboard, guarded against
// clobbering a newer clipboard entry.
func (m *Manager) spawnRevert(data []byte, timeout time.Duration) error {
	if m.selfPath == "" {
		return fmt.Errorf("clipboard: cannot locate executable for detached revert")
	}

	cmd := exec.Command(m.selfPath, internalRevertFlag, timeout.String())
	cmd.Stdin = bytes.NewReader(data)
	cmd.SysProcAttr = detachedAttr()
	return cmd.Start()
}

// RunInternalRevert implements the internal-clip-revert subcommand: given
// the bytes that were copied (which the subcommand reads from stdin), sleep
// for duration, then clear the clipboard only if it still holds them.
func RunInternalRevert(provider Provider, expected []byte, duration time.Duration) error {
	time.Sleep(duration)
	current, err := provider.Paste()
	if err != nil {
		return nil
	}
	if !bytes.Equal(current, expected) {
		// Clipboard changed since we copied: leave it alone.
		return nil
	}
	return provider.Copy(nil)
}

func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

// notifyDesktop is a best-effort desktop notification; failures are
// silently ignored since the clipboard copy itself already succeeded.
func notifyDesktop(message string) {
	for _, tool := range [][]string{
		{"notify-send", "prs", message},
		{"osascript", "-e", fmt.Sprintf("display notification %q with title \"prs\"", message)},
	} {
		if _, err := exec.LookPath(tool[0]); err == nil {
			_ = exec.Command(tool[0], tool[1:]...).Run()
			return
		}
	}
}
