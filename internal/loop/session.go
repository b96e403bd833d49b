package loop

import (
	"context"

	"github.com/Dicklesworthstone/cpugrid/internal/errors"
	"github.com/Dicklesworthstone/cpugrid/internal/input"
	"github.com/Dicklesworthstone/cpugrid/internal/render"
	"github.com/Dicklesworthstone/cpugrid/internal/session"
)

// PollCloser is an input source that must be closed when the session ends.
type PollCloser interface {
	input.Poller
	Close() error
}

// InputOpener opens keyboard input once the terminal is in raw mode.
type InputOpener func() (PollCloser, error)

// RunSession holds the terminal for the lifetime of l and releases it
// exactly once, however l stops.
func RunSession(ctx context.Context, b session.Backend, l *Loop, open InputOpener) error {
	return session.With(b, func(h *session.Handle) error {
		in, err := open()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrTerminal, "Couldn't open keyboard input", "")
		}
		defer in.Close()

		surf := render.NewTerminalSurface(h.Output(), h.Size)
		return l.Run(ctx, in, surf)
	})
}
