// Package testing provides test doubles for the session package.
package testing

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Operation names recorded by FakeBackend.
const (
	OpEnterAltScreen = "enter-alt-screen"
	OpLeaveAltScreen = "leave-alt-screen"
	OpHideCursor     = "hide-cursor"
	OpShowCursor     = "show-cursor"
	OpClearScreen    = "clear-screen"
	OpMoveCursorHome = "move-cursor-home"
	OpEnableRawMode  = "enable-raw-mode"
	OpDisableRawMode = "disable-raw-mode"
)

// AcquireSequence is the order Acquire performs its steps.
var AcquireSequence = []string{OpEnterAltScreen, OpHideCursor, OpClearScreen, OpEnableRawMode}

// ReleaseSequence is the order Release performs its steps.
var ReleaseSequence = []string{OpMoveCursorHome, OpClearScreen, OpLeaveAltScreen, OpShowCursor, OpDisableRawMode}

// FakeBackend records every terminal operation in call order.
type FakeBackend struct {
	mu sync.Mutex

	// Configuration
	FailOn map[string]error // operation -> error returned (every time)
	Width  int
	Height int

	// Call tracking
	Calls []string
	Out   bytes.Buffer
}

// NewFakeBackend creates a backend that succeeds by default with an 80x24 screen.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		FailOn: make(map[string]error),
		Width:  80,
		Height: 24,
	}
}

// Fail makes op return an error.
func (f *FakeBackend) Fail(op string) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailOn[op] = fmt.Errorf("fake %s failure", op)
	return f
}

func (f *FakeBackend) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, op)
	return f.FailOn[op]
}

func (f *FakeBackend) EnterAltScreen() error { return f.record(OpEnterAltScreen) }
func (f *FakeBackend) LeaveAltScreen() error { return f.record(OpLeaveAltScreen) }
func (f *FakeBackend) HideCursor() error     { return f.record(OpHideCursor) }
func (f *FakeBackend) ShowCursor() error     { return f.record(OpShowCursor) }
func (f *FakeBackend) ClearScreen() error    { return f.record(OpClearScreen) }
func (f *FakeBackend) MoveCursorHome() error { return f.record(OpMoveCursorHome) }
func (f *FakeBackend) EnableRawMode() error  { return f.record(OpEnableRawMode) }
func (f *FakeBackend) DisableRawMode() error { return f.record(OpDisableRawMode) }

func (f *FakeBackend) Output() io.Writer { return &f.Out }

func (f *FakeBackend) Size() (int, int, error) { return f.Width, f.Height, nil }

// Recorded returns a copy of the calls so far.
func (f *FakeBackend) Recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// Count returns how many times op was called.
func (f *FakeBackend) Count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// ReleaseCount counts release sequences; only Release homes the cursor.
func (f *FakeBackend) ReleaseCount() int {
	return f.Count(OpMoveCursorHome)
}
