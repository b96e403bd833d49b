package session

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// TTY drives a real terminal: escape sequences go to out, raw mode is set on in.
type TTY struct {
	in    *os.File
	out   io.Writer
	state *term.State
}

// NewTTY returns a backend for the process's stdin/stdout.
func NewTTY() *TTY {
	return &TTY{in: os.Stdin, out: os.Stdout}
}

// NewTTYWith returns a backend for explicit files.
func NewTTYWith(in *os.File, out io.Writer) *TTY {
	return &TTY{in: in, out: out}
}

func (t *TTY) csi(seq string) error {
	_, err := io.WriteString(t.out, termenv.CSI+seq)
	return err
}

func (t *TTY) EnterAltScreen() error { return t.csi(termenv.AltScreenSeq) }
func (t *TTY) LeaveAltScreen() error { return t.csi(termenv.ExitAltScreenSeq) }
func (t *TTY) HideCursor() error     { return t.csi(termenv.HideCursorSeq) }
func (t *TTY) ShowCursor() error     { return t.csi(termenv.ShowCursorSeq) }

func (t *TTY) ClearScreen() error {
	return t.csi(fmt.Sprintf(termenv.EraseDisplaySeq, 2))
}

func (t *TTY) MoveCursorHome() error {
	return t.csi(fmt.Sprintf(termenv.CursorPositionSeq, 1, 1))
}

func (t *TTY) EnableRawMode() error {
	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	st, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	t.state = st
	return nil
}

func (t *TTY) DisableRawMode() error {
	if t.state == nil {
		return nil
	}
	err := term.Restore(int(t.in.Fd()), t.state)
	if err == nil {
		t.state = nil
	}
	return err
}

func (t *TTY) Output() io.Writer { return t.out }

func (t *TTY) Size() (int, int, error) {
	if f, ok := t.out.(*os.File); ok {
		return term.GetSize(int(f.Fd()))
	}
	return term.GetSize(int(t.in.Fd()))
}
