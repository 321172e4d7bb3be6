package display

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	enterAltScreen = "\x1b[?1049h"
	exitAltScreen  = "\x1b[?1049l"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
	// Button press/release reporting in SGR encoding
	enableMouse  = "\x1b[?1000h\x1b[?1006h"
	disableMouse = "\x1b[?1006l\x1b[?1000l"
)

// Terminal is a terminal switched into raw mode on the alternate screen
type Terminal struct {
	fd    int
	out   io.Writer
	saved *term.State
}

// OpenTerminal puts in into raw mode and prepares out for drawing. Call
// Restore before exiting.
func OpenTerminal(in *os.File, out io.Writer) (*Terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", in.Name())
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw mode: %w", err)
	}

	if _, err := io.WriteString(out, enterAltScreen+hideCursor+enableMouse); err != nil {
		_ = term.Restore(fd, saved)
		return nil, fmt.Errorf("preparing screen: %w", err)
	}
	return &Terminal{fd: fd, out: out, saved: saved}, nil
}

// Size returns the terminal size, or the frame size if it cannot be read
func (t *Terminal) Size() (int, int) {
	w, h, err := term.GetSize(t.fd)
	if err != nil {
		return Width, Height
	}
	return w, h
}

// Restore puts the terminal back the way OpenTerminal found it
func (t *Terminal) Restore() error {
	_, writeErr := io.WriteString(t.out, disableMouse+showCursor+exitAltScreen)
	if err := term.Restore(t.fd, t.saved); err != nil {
		return fmt.Errorf("restoring terminal: %w", err)
	}
	return writeErr
}
