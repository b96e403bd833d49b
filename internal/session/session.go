// Package session owns the terminal for the lifetime of the dashboard.
//
// Acquire switches the terminal into dashboard mode (alternate screen, hidden
// cursor, cleared, raw input) and returns a Handle; Handle.Release puts it
// back. Callers pair them with defer, or use With.
package session

import (
	"io"

	"github.com/Dicklesworthstone/cpugrid/internal/errors"
)

// Backend performs the individual terminal operations.
type Backend interface {
	EnterAltScreen() error
	LeaveAltScreen() error
	HideCursor() error
	ShowCursor() error
	ClearScreen() error
	MoveCursorHome() error
	EnableRawMode() error
	DisableRawMode() error
	// Output is where frames are written while the session is held.
	Output() io.Writer
	// Size returns the terminal size in columns and rows.
	Size() (width, height int, err error)
}

// State tracks which terminal modes are currently active.
type State struct {
	AltScreen    bool
	CursorHidden bool
	RawMode      bool
}

// Active reports whether any mode is still switched on.
func (s State) Active() bool { return s.AltScreen || s.CursorHidden || s.RawMode }

// Handle is exclusive ownership of the terminal.
type Handle struct {
	backend  Backend
	state    State
	released bool
}

type step struct {
	name string
	do   func() error
	mark func(*State)
	undo func() error
}

// Acquire enters the alternate screen, hides the cursor, clears the screen,
// and enables raw input, in that order. If a step fails, the steps that
// succeeded are undone before the error is returned.
func Acquire(b Backend) (*Handle, error) {
	h := &Handle{backend: b}

	steps := []step{
		{"enter alternate screen", b.EnterAltScreen, func(s *State) { s.AltScreen = true }, b.LeaveAltScreen},
		{"hide cursor", b.HideCursor, func(s *State) { s.CursorHidden = true }, b.ShowCursor},
		{"clear screen", b.ClearScreen, func(*State) {}, nil},
		{"enable raw mode", b.EnableRawMode, func(s *State) { s.RawMode = true }, b.DisableRawMode},
	}

	for i, st := range steps {
		if err := st.do(); err != nil {
			failed := errors.WrapWithCode(err, errors.ErrTerminal,
				"Couldn't "+st.name,
				"Run cpugrid from an interactive terminal")
			undoErrs := []error{failed}
			for j := i - 1; j >= 0; j-- {
				if steps[j].undo == nil {
					continue
				}
				if uerr := steps[j].undo(); uerr != nil {
					undoErrs = append(undoErrs, errors.WrapWithCode(uerr, errors.ErrTerminal,
						"Couldn't undo "+steps[j].name, ""))
				}
			}
			h.released = true
			return nil, errors.Join(undoErrs...)
		}
		st.mark(&h.state)
	}
	return h, nil
}

// Release homes the cursor, clears the screen, leaves the alternate screen,
// shows the cursor, and disables raw mode. Every step runs even if an
// earlier one fails. Calls after the first are no-ops.
func (h *Handle) Release() error {
	if h == nil || h.released {
		return nil
	}
	h.released = true

	b := h.backend
	var errs []error
	attempt := func(name string, fn func() error) {
		if err := fn(); err != nil {
			errs = append(errs, errors.WrapWithCode(err, errors.ErrTerminal,
				"Couldn't "+name+" while restoring the terminal",
				"Run `reset` if the terminal looks wrong"))
		}
	}

	attempt("move the cursor home", b.MoveCursorHome)
	attempt("clear the screen", b.ClearScreen)
	attempt("leave the alternate screen", b.LeaveAltScreen)
	h.state.AltScreen = false
	attempt("show the cursor", b.ShowCursor)
	h.state.CursorHidden = false
	attempt("disable raw mode", b.DisableRawMode)
	h.state.RawMode = false

	return errors.Join(errs...)
}

// State returns the modes currently held.
func (h *Handle) State() State { return h.state }

// Released reports whether Release has run.
func (h *Handle) Released() bool { return h.released }

// Output is the writer frames are drawn to.
func (h *Handle) Output() io.Writer { return h.backend.Output() }

// Size returns the terminal size.
func (h *Handle) Size() (int, int, error) { return h.backend.Size() }

// With acquires the terminal, runs fn, and always releases, joining any
// release error with fn's error.
func With(b Backend, fn func(*Handle) error) (err error) {
	h, err := Acquire(b)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := h.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn(h)
}
