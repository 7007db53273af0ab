// Package viewer renders a secret's plaintext in the terminal's
// alternate screen: raw mode, hidden cursor, scrollable, with an
// optional countdown timeout. It supports bypassing entirely in favor
// of an external pager named by PRS_PAGER.
package viewer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/term"
)

// ErrNotTTY is returned when the viewer is invoked without a usable
// terminal.
var ErrNotTTY = errors.New("viewer: no terminal available")

const (
	altScreenEnter = "\033[?1049h"
	altScreenExit  = "\033[?1049l"
	hideCursor     = "\033[?25l"
	showCursor     = "\033[?25h"
	clearScreen    = "\033[2J\033[H"
	enableMouse    = "\033[?1000h"
	disableMouse   = "\033[?1000l"
)

// Action is a user input decoded from the terminal.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionRedraw
	ActionScrollUp
	ActionScrollDown
	ActionScrollLeft
	ActionScrollRight
)

// Options configures one View invocation.
type Options struct {
	AppName    string
	SecretName string
	// Timeout closes the viewer automatically at this deadline if
	// non-zero.
	Timeout time.Duration
}

// View renders plaintext in the alternate screen until the user quits or
// the timeout elapses. It opens /dev/tty directly so it works even when
// stdin is piped, matching the rest of the core's interactive prompts.
func View(plaintext string, opts Options) error {
	if pager := os.Getenv("PRS_PAGER"); pager != "" {
		return runPager(pager, plaintext)
	}

	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotTTY, err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTTY
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("viewer: failed to set raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	lines := strings.Split(strings.ReplaceAll(plaintext, "\r\n", "\n"), "\n")

	fmt.Fprint(tty, altScreenEnter+hideCursor+enableMouse)
	defer fmt.Fprint(tty, disableMouse+showCursor+altScreenExit)
	setWindowTitle(tty, opts.AppName, opts.SecretName)

	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	x, y := 0, 0
	width, height := termSize(fd)

	render(tty, lines, x, y, width, height, deadline)

	reader := bufio.NewReaderSize(tty, 16)
	for {
		if !deadline.IsZero() {
			_ = tty.SetReadDeadline(deadline)
		}
		action, dx, dy := readAction(reader)
		switch action {
		case ActionQuit:
			return nil
		case ActionRedraw:
			width, height = termSize(fd)
		case ActionScrollUp:
			y = max0(y + dy)
		case ActionScrollDown:
			y += dy
		case ActionScrollLeft:
			x = max0(x + dx)
		case ActionScrollRight:
			x += dx
		case ActionNone:
			_ = dx
			_ = dy
			if !deadline.IsZero() && time.Now().After(deadline) {
				return nil
			}
			continue
		}
		render(tty, lines, x, y, width, height, deadline)
	}
}

func max0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// runPager spawns the PRS_PAGER command with plaintext piped to its
// stdin and propagates its exit status.
func runPager(pager string, plaintext string) error {
	cmd := exec.Command("sh", "-c", pager)
	cmd.Stdin = strings.NewReader(plaintext)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func setWindowTitle(w io.Writer, app, secret string) {
	fmt.Fprintf(w, "\033]0;%s: %s\007", app, secret)
}

func termSize(fd int) (int, int) {
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

func render(w io.Writer, lines []string, x, y, width, height int, deadline time.Time) {
	fmt.Fprint(w, clearScreen)
	visibleRows := height - 1
	if visibleRows < 1 {
		visibleRows = 1
	}
	for i := 0; i < visibleRows && y+i < len(lines); i++ {
		line := lines[y+i]
		if x < len(line) {
			line = line[x:]
		} else {
			line = ""
		}
		if len(line) > width {
			line = line[:width]
		}
		fmt.Fprintf(w, "%s\r\n", line)
	}
	footer := "q: quit  h/j/k/l, arrows: scroll"
	if !deadline.IsZero() {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		footer = fmt.Sprintf("%s  closing in %ds", footer, int(remaining.Seconds()+0.5))
	}
	fmt.Fprint(w, footer)
}

// readAction decodes one terminal input event: q/Esc/Ctrl-C quit,
// h/j/k/l and arrow keys scroll by one, a bare ESC-[ mouse-wheel report
// scrolls by three lines.
func readAction(r *bufio.Reader) (Action, int, int) {
	b, err := r.ReadByte()
	if err != nil {
		return ActionNone, 0, 0
	}
	switch b {
	case 'q', 3: // q or Ctrl-C
		return ActionQuit, 0, 0
	case 'h':
		return ActionScrollLeft, -1, 0
	case 'l':
		return ActionScrollRight, 1, 0
	case 'j':
		return ActionScrollDown, 0, 1
	case 'k':
		return ActionScrollUp, 0, -1
	case 27: // ESC: either a bare Escape, or the start of an arrow/mouse sequence
		next, err := r.ReadByte()
		if err != nil {
			return ActionQuit, 0, 0
		}
		if next != '[' {
			return ActionQuit, 0, 0
		}
		seq, err := r.ReadByte()
		if err != nil {
			return ActionNone, 0, 0
		}
		switch seq {
		case 'A':
			return ActionScrollUp, 0, -1
		case 'B':
			return ActionScrollDown, 0, 1
		case 'C':
			return ActionScrollRight, 1, 0
		case 'D':
			return ActionScrollLeft, -1, 0
		case 'M': // X10 mouse report: button byte, x, y follow
			button, _ := r.ReadByte()
			_, _ = r.ReadByte()
			_, _ = r.ReadByte()
			switch button & 0x43 {
			case 0x40:
				return ActionScrollUp, 0, -3
			case 0x41:
				return ActionScrollDown, 0, 3
			}
			return ActionNone, 0, 0
		default:
			return ActionRedraw, 0, 0
		}
	default:
		return ActionNone, 0, 0
	}
}
