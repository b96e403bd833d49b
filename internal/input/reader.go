package input

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/muesli/cancelreader"
)

// Poller waits a bounded time for the next key event.
type Poller interface {
	// Poll returns the next event and true, or false when timeout passes
	// with no input. It never blocks longer than timeout.
	Poll(ctx context.Context, timeout time.Duration) (Event, bool, error)
}

// Reader polls key events from a terminal. A single goroutine reads the
// device and hands decoded events over a channel; Close cancels the read.
type Reader struct {
	cr     cancelreader.CancelReader
	events chan Event
	errs   chan error
	done   chan struct{}
}

// NewReader starts reading r.
func NewReader(r io.Reader) (*Reader, error) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		return nil, err
	}
	rd := &Reader{
		cr:     cr,
		events: make(chan Event, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go rd.readLoop()
	return rd, nil
}

func (r *Reader) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := r.cr.Read(buf)
		for _, ev := range Decode(buf[:n]) {
			select {
			case r.events <- ev:
			case <-r.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, cancelreader.ErrCanceled) {
				r.errs <- err
			}
			return
		}
	}
}

func (r *Reader) Poll(ctx context.Context, timeout time.Duration) (Event, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-r.events:
		return ev, true, nil
	case err := <-r.errs:
		return Event{}, false, err
	case <-timer.C:
		return Event{}, false, nil
	case <-ctx.Done():
		return Event{}, false, ctx.Err()
	}
}

// Close stops the read goroutine and releases the device.
func (r *Reader) Close() error {
	r.cr.Cancel()
	close(r.done)
	return r.cr.Close()
}
