// Package loop runs the dashboard: poll for a key with a bounded wait, sample,
// lay out, draw, repeat. Everything happens on one goroutine; the poll is the
// only place the loop waits, so it also sets the frame rate.
package loop

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/Dicklesworthstone/cpugrid/internal/errors"
	"github.com/Dicklesworthstone/cpugrid/internal/grid"
	"github.com/Dicklesworthstone/cpugrid/internal/input"
	"github.com/Dicklesworthstone/cpugrid/internal/logger"
	"github.com/Dicklesworthstone/cpugrid/internal/model"
	"github.com/Dicklesworthstone/cpugrid/internal/render"
	"github.com/Dicklesworthstone/cpugrid/internal/sampler"
)

// State is the loop's lifecycle state.
type State int

const (
	Running State = iota
	Terminating
)

func (s State) String() string {
	if s == Terminating {
		return "terminating"
	}
	return "running"
}

// DefaultPollTimeout is how long each tick waits for a key.
const DefaultPollTimeout = time.Second

// SampleSource is what the loop needs from the sampler.
type SampleSource interface {
	Sample(ctx context.Context) (model.Sample, error)
	Last() (model.Sample, bool)
	Temperature(ctx context.Context) (float64, error)
}

// Options configure a Loop.
type Options struct {
	CoreCount           int
	Width               int
	ExtraRows           int
	PollTimeout         time.Duration
	Border              render.Border
	Policy              grid.EdgePolicy
	MaxProviderFailures int // consecutive failures before giving up; 0 never gives up
}

// Stats are the counters printed in debug mode.
type Stats struct {
	Ticks          int
	Keys           int
	Frames         int
	StaleFrames    int
	SkippedFrames  int
	ProviderErrors int
}

func (s Stats) String() string {
	return fmt.Sprintf("ticks=%d keys=%d frames=%d stale=%d skipped=%d provider_errors=%d",
		s.Ticks, s.Keys, s.Frames, s.StaleFrames, s.SkippedFrames, s.ProviderErrors)
}

// Loop is the render loop state machine.
type Loop struct {
	opts    Options
	sampler SampleSource
	log     logger.Logger
	spec    grid.Spec

	state       State
	stats       Stats
	consecutive int
	tempLogged  bool
}

// New plans the grid up front so bad layout options fail before the
// terminal is touched.
func New(opts Options, s SampleSource, log logger.Logger) (*Loop, error) {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}
	spec, err := grid.Plan(opts.CoreCount, opts.Width, opts.ExtraRows)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Noop()
	}
	log.Debug("layout: %d cores, %d rows x %d cols, +%d extra rows, cell %d%% x %d%%",
		spec.CoreCount, spec.RowCount, spec.ColumnsPerRow, spec.ExtraRows,
		spec.CellWidthPercent, spec.CellHeightPercent)
	return &Loop{opts: opts, sampler: s, log: log, spec: spec}, nil
}

func (l *Loop) State() State    { return l.state }
func (l *Loop) Stats() Stats    { return l.stats }
func (l *Loop) Spec() grid.Spec { return l.spec }

// Stop moves the loop to Terminating. Front ends that handle keys themselves
// call it on quit; Run returns before its next tick.
func (l *Loop) Stop() { l.state = Terminating }

// PollTimeout is the per-tick wait, after defaults are applied.
func (l *Loop) PollTimeout() time.Duration { return l.opts.PollTimeout }

// Run ticks until a quit key, a fatal error, or ctx is done. A quit key
// returns nil; cancellation returns ctx.Err().
func (l *Loop) Run(ctx context.Context, in input.Poller, surf render.Surface) error {
	for l.state == Running {
		l.stats.Ticks++

		ev, ok, err := in.Poll(ctx, l.opts.PollTimeout)
		if err != nil {
			l.state = Terminating
			if ctxErr := ctx.Err(); ctxErr != nil {
				l.log.Debug("context done: %v", ctxErr)
				return ctxErr
			}
			return errors.WrapWithCode(err, errors.ErrTerminal,
				"Couldn't read keyboard input", "")
		}
		if ok {
			l.stats.Keys++
			if input.IsQuit(ev) {
				l.log.Debug("quit key %q", ev.Key)
				l.state = Terminating
				return nil
			}
		}

		if err := l.Step(ctx, surf); err != nil {
			l.state = Terminating
			return err
		}
	}
	return nil
}

// Step samples once and draws one full frame. Run calls it after every
// poll that did not see a quit key; other front ends call it on their own timer.
func (l *Loop) Step(ctx context.Context, surf render.Surface) error {
	samp, err := l.sampler.Sample(ctx)
	if stderrors.Is(err, sampler.ErrWarmingUp) {
		l.log.Debug("sampler warming up, frame skipped")
		l.stats.SkippedFrames++
		return nil
	}
	if err != nil {
		l.stats.ProviderErrors++
		l.consecutive++
		l.log.Warn("sample failed (%d in a row): %v", l.consecutive, err)
		if l.opts.MaxProviderFailures > 0 && l.consecutive >= l.opts.MaxProviderFailures {
			return errors.WrapWithCode(err, errors.ErrProvider,
				fmt.Sprintf("CPU sampling failed %d times in a row", l.consecutive),
				"Raise --max-provider-failures or check system counters")
		}
		last, ok := l.sampler.Last()
		if !ok {
			l.stats.SkippedFrames++
			return nil
		}
		samp = last
		l.stats.StaleFrames++
	} else {
		l.consecutive = 0
	}

	frame := render.BuildFrame(l.spec, samp, render.Options{
		Border:      l.opts.Border,
		Policy:      l.opts.Policy,
		SummaryNote: l.summaryNote(ctx, samp),
	})
	if err := surf.Draw(frame); err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal, "Couldn't draw the dashboard", "")
	}
	l.stats.Frames++
	return nil
}

func (l *Loop) summaryNote(ctx context.Context, samp model.Sample) string {
	if l.spec.ExtraRows == 0 {
		return ""
	}
	temp, err := l.sampler.Temperature(ctx)
	if err != nil && !l.tempLogged {
		l.log.Debug("temperature: %v", err)
		l.tempLogged = true
	}
	return render.SummaryNote(samp.Load, temp, err == nil)
}
