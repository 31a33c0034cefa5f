// Package clipboard copies text to the user's clipboard through the terminal
// with OSC 52, which also works over SSH.
package clipboard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Terminal writes OSC 52 sequences to a terminal.
type Terminal struct {
	open   func() (io.WriteCloser, error)
	getenv func(string) string
}

// New returns a Terminal that writes to the controlling tty.
func New() *Terminal {
	return &Terminal{
		open: func() (io.WriteCloser, error) {
			return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		},
		getenv: os.Getenv,
	}
}

// NewWriter returns a Terminal that writes to w instead of the tty.
func NewWriter(w io.Writer, getenv func(string) string) *Terminal {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Terminal{
		open:   func() (io.WriteCloser, error) { return nopCloser{w}, nil },
		getenv: getenv,
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (t *Terminal) inTmux() bool {
	term := t.getenv("TERM")
	return t.getenv("TMUX") != "" || strings.HasPrefix(term, "tmux") || strings.HasPrefix(term, "screen")
}

// Copy sets the clipboard to text. Under tmux the sequence is sent both
// through DCS passthrough and directly, so either tmux clipboard mode works.
func (t *Terminal) Copy(text string) error {
	w, err := t.open()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer w.Close()

	seq := osc52.New(text)
	if t.inTmux() {
		if _, err := seq.Tmux().WriteTo(w); err != nil {
			return fmt.Errorf("write clipboard sequence: %w", err)
		}
	}
	if _, err := seq.WriteTo(w); err != nil {
		return fmt.Errorf("write clipboard sequence: %w", err)
	}
	return nil
}
