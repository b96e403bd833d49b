package loop

import (
	"context"
	"errors"
	"testing"

	cgerrors "github.com/Dicklesworthstone/cpugrid/internal/errors"
	sessiontest "github.com/Dicklesworthstone/cpugrid/internal/session/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opener(p *scriptedPoller) InputOpener {
	return func() (PollCloser, error) { return p, nil }
}

func TestRunSession_QuitReleasesOnce(t *testing.T) {
	fb := sessiontest.NewFakeBackend()
	_, in, s, _ := newFixture([]pollResult{{}, {key: "q"}})
	l, err := New(Options{CoreCount: 4, Width: 5}, s, nil)
	require.NoError(t, err)

	require.NoError(t, RunSession(context.Background(), fb, l, opener(in)))

	assert.Equal(t, 1, fb.ReleaseCount())
	assert.Equal(t, 1, fb.Count(sessiontest.OpEnableRawMode))
	assert.Equal(t, 1, fb.Count(sessiontest.OpDisableRawMode))
	assert.True(t, in.closed)
	assert.Equal(t, Terminating, l.State())
	assert.Contains(t, fb.Out.String(), "CPU3")

	calls := fb.Recorded()
	assert.Equal(t, sessiontest.AcquireSequence, calls[:4])
	assert.Equal(t, sessiontest.ReleaseSequence, calls[len(calls)-5:])
}

func TestRunSession_ReleasesOnEveryExitPath(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		script   []pollResult
		errs     []error
		maxFails int
		openErr  error
		cancel   bool
		wantCode string
	}{
		{
			name:   "quit key",
			script: []pollResult{{key: "q"}},
		},
		{
			name:     "provider error",
			script:   []pollResult{{}, {}},
			errs:     []error{boom, boom},
			maxFails: 2,
			wantCode: cgerrors.ErrProvider,
		},
		{
			name:     "terminal error",
			script:   []pollResult{{err: boom}},
			wantCode: cgerrors.ErrTerminal,
		},
		{
			name:     "input open error",
			openErr:  boom,
			wantCode: cgerrors.ErrTerminal,
		},
		{
			name:   "interrupted",
			script: []pollResult{{}},
			cancel: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := sessiontest.NewFakeBackend()
			_, in, s, _ := newFixture(tt.script)
			s.errs = tt.errs
			l, err := New(Options{CoreCount: 4, Width: 5, MaxProviderFailures: tt.maxFails}, s, nil)
			require.NoError(t, err)

			open := opener(in)
			if tt.openErr != nil {
				open = func() (PollCloser, error) { return nil, tt.openErr }
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			err = RunSession(ctx, fb, l, open)
			switch {
			case tt.wantCode != "":
				require.Error(t, err)
				assert.True(t, cgerrors.IsCode(err, tt.wantCode))
			case tt.cancel:
				assert.ErrorIs(t, err, context.Canceled)
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, fb.ReleaseCount())
			assert.Equal(t, 1, fb.Count(sessiontest.OpDisableRawMode))
		})
	}
}

func TestRunSession_AcquireFailureNeverRuns(t *testing.T) {
	fb := sessiontest.NewFakeBackend().Fail(sessiontest.OpEnableRawMode)
	_, in, s, _ := newFixture([]pollResult{{}})
	l, err := New(Options{CoreCount: 4, Width: 5}, s, nil)
	require.NoError(t, err)

	err = RunSession(context.Background(), fb, l, opener(in))
	require.Error(t, err)
	assert.True(t, cgerrors.IsCode(err, cgerrors.ErrTerminal))
	assert.Equal(t, 0, s.calls)
	assert.Equal(t, 0, fb.ReleaseCount())
	assert.Equal(t, 1, fb.Count(sessiontest.OpLeaveAltScreen), "partial acquire undone")
}

func TestRunSession_ReleaseFailureIsReported(t *testing.T) {
	fb := sessiontest.NewFakeBackend().Fail(sessiontest.OpShowCursor)
	_, in, s, _ := newFixture([]pollResult{{key: "q"}})
	l, err := New(Options{CoreCount: 4, Width: 5}, s, nil)
	require.NoError(t, err)

	err = RunSession(context.Background(), fb, l, opener(in))
	require.Error(t, err)
	assert.True(t, cgerrors.IsCode(err, cgerrors.ErrTerminal))
	assert.Equal(t, 1, fb.Count(sessiontest.OpDisableRawMode), "raw mode still restored")
}
