package session_test

import (
	"errors"
	"testing"

	cgerrors "github.com/Dicklesworthstone/cpugrid/internal/errors"
	"github.com/Dicklesworthstone/cpugrid/internal/session"
	sessiontest "github.com/Dicklesworthstone/cpugrid/internal/session/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestAcquireRelease_Order(t *testing.T) {
	fb := sessiontest.NewFakeBackend()

	h, err := session.Acquire(fb)
	require.NoError(t, err)
	assert.Equal(t, session.State{AltScreen: true, CursorHidden: true, RawMode: true}, h.State())
	assert.Equal(t, sessiontest.AcquireSequence, fb.Recorded())

	require.NoError(t, h.Release())
	assert.False(t, h.State().Active())
	assert.True(t, h.Released())
	assert.Equal(t, seq(sessiontest.AcquireSequence, sessiontest.ReleaseSequence), fb.Recorded())
}

func TestRelease_Idempotent(t *testing.T) {
	fb := sessiontest.NewFakeBackend()
	h, err := session.Acquire(fb)
	require.NoError(t, err)

	require.NoError(t, h.Release())
	require.NoError(t, h.Release())
	assert.Equal(t, 1, fb.ReleaseCount())

	var nilHandle *session.Handle
	assert.NoError(t, nilHandle.Release())
}

func TestRelease_AttemptsEveryStep(t *testing.T) {
	fb := sessiontest.NewFakeBackend()
	h, err := session.Acquire(fb)
	require.NoError(t, err)

	fb.Fail(sessiontest.OpMoveCursorHome).Fail(sessiontest.OpLeaveAltScreen)
	err = h.Release()
	require.Error(t, err)
	assert.True(t, cgerrors.IsCode(err, cgerrors.ErrTerminal))
	assert.Contains(t, err.Error(), "move the cursor home")
	assert.Contains(t, err.Error(), "leave the alternate screen")

	assert.Equal(t, seq(sessiontest.AcquireSequence, sessiontest.ReleaseSequence), fb.Recorded())
	assert.False(t, h.State().Active())
}

func TestAcquire_PartialFailureUndoes(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
		want   []string
	}{
		{
			name:   "alt screen fails",
			failOn: sessiontest.OpEnterAltScreen,
			want:   []string{sessiontest.OpEnterAltScreen},
		},
		{
			name:   "hide cursor fails",
			failOn: sessiontest.OpHideCursor,
			want: []string{
				sessiontest.OpEnterAltScreen, sessiontest.OpHideCursor,
				sessiontest.OpLeaveAltScreen,
			},
		},
		{
			name:   "clear fails",
			failOn: sessiontest.OpClearScreen,
			want: []string{
				sessiontest.OpEnterAltScreen, sessiontest.OpHideCursor, sessiontest.OpClearScreen,
				sessiontest.OpShowCursor, sessiontest.OpLeaveAltScreen,
			},
		},
		{
			name:   "raw mode fails",
			failOn: sessiontest.OpEnableRawMode,
			want: []string{
				sessiontest.OpEnterAltScreen, sessiontest.OpHideCursor, sessiontest.OpClearScreen,
				sessiontest.OpEnableRawMode,
				sessiontest.OpShowCursor, sessiontest.OpLeaveAltScreen,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := sessiontest.NewFakeBackend().Fail(tt.failOn)

			h, err := session.Acquire(fb)
			require.Error(t, err)
			assert.Nil(t, h)
			assert.True(t, cgerrors.IsCode(err, cgerrors.ErrTerminal))
			assert.Equal(t, tt.want, fb.Recorded())
		})
	}
}

func TestAcquire_UndoFailureIsReported(t *testing.T) {
	fb := sessiontest.NewFakeBackend().
		Fail(sessiontest.OpEnableRawMode).
		Fail(sessiontest.OpShowCursor)

	_, err := session.Acquire(fb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enable raw mode")
	assert.Contains(t, err.Error(), "undo hide cursor")
	// leaving the alternate screen is still attempted after show-cursor failed
	assert.Equal(t, 1, fb.Count(sessiontest.OpLeaveAltScreen))
}

func TestWith_ReleasesOnEveryPath(t *testing.T) {
	boom := errors.New("provider exploded")

	tests := []struct {
		name    string
		fn      func(*session.Handle) error
		wantErr error
	}{
		{"success", func(*session.Handle) error { return nil }, nil},
		{"error", func(*session.Handle) error { return boom }, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := sessiontest.NewFakeBackend()
			err := session.With(fb, tt.fn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, fb.ReleaseCount())
			assert.Equal(t, seq(sessiontest.AcquireSequence, sessiontest.ReleaseSequence), fb.Recorded())
		})
	}
}

func TestWith_ReleasesOnPanic(t *testing.T) {
	fb := sessiontest.NewFakeBackend()
	assert.Panics(t, func() {
		_ = session.With(fb, func(*session.Handle) error { panic("draw failed") })
	})
	assert.Equal(t, 1, fb.ReleaseCount())
}

func TestWith_JoinsReleaseError(t *testing.T) {
	boom := errors.New("boom")
	fb := sessiontest.NewFakeBackend().Fail(sessiontest.OpDisableRawMode)

	err := session.With(fb, func(*session.Handle) error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, cgerrors.IsCode(err, cgerrors.ErrTerminal))
}

func TestWith_AcquireFailureSkipsFn(t *testing.T) {
	fb := sessiontest.NewFakeBackend().Fail(sessiontest.OpEnterAltScreen)
	called := false
	err := session.With(fb, func(*session.Handle) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, 0, fb.ReleaseCount())
}

func TestHandle_OutputAndSize(t *testing.T) {
	fb := sessiontest.NewFakeBackend()
	fb.Width, fb.Height = 120, 40
	h, err := session.Acquire(fb)
	require.NoError(t, err)
	defer h.Release()

	_, err = h.Output().Write([]byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, "frame", fb.Out.String())

	w, ht, err := h.Size()
	require.NoError(t, err)
	assert.Equal(t, 120, w)
	assert.Equal(t, 40, ht)
}
