package sampler

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/cpugrid/internal/model"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
)

// ErrWarmingUp is returned by a Read that only recorded the baseline counters.
// There is no interval to measure yet, so the tick has no fresh data.
var ErrWarmingUp = errors.New("cpu counters baseline recorded, no interval yet")

type timesFunc func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)

// SystemProvider reads CPU times from the OS via gopsutil and derives
// utilization from the delta against the previous call.
type SystemProvider struct {
	times     timesFunc
	prevTotal cpu.TimesStat
	prevCore  []cpu.TimesStat
	primed    bool
}

// NewSystemProvider records the baseline counters so the first Read already
// covers a real interval.
func NewSystemProvider() *SystemProvider {
	return newSystemProvider(cpu.TimesWithContext)
}

func newSystemProvider(times timesFunc) *SystemProvider {
	p := &SystemProvider{times: times}
	// A failed baseline is retried by the first Read.
	_ = p.prime(context.Background())
	return p
}

func (p *SystemProvider) snapshot(ctx context.Context) (cpu.TimesStat, []cpu.TimesStat, error) {
	times, err := p.times(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, nil, err
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, nil, fmt.Errorf("no aggregate cpu times")
	}
	coreTimes, err := p.times(ctx, true)
	if err != nil {
		return cpu.TimesStat{}, nil, err
	}
	return times[0], coreTimes, nil
}

func (p *SystemProvider) prime(ctx context.Context) error {
	total, cores, err := p.snapshot(ctx)
	if err != nil {
		return err
	}
	p.prevTotal, p.prevCore, p.primed = total, cores, true
	return nil
}

// Read returns utilization percentages since the previous call. Without a
// baseline it records one and returns ErrWarmingUp.
func (p *SystemProvider) Read(ctx context.Context) (Reading, error) {
	if !p.primed {
		if err := p.prime(ctx); err != nil {
			return Reading{}, err
		}
		return Reading{}, ErrWarmingUp
	}

	cur, coreTimes, err := p.snapshot(ctx)
	if err != nil {
		return Reading{}, err
	}

	r := Reading{Total: busyPercent(p.prevTotal, cur)}
	p.prevTotal = cur

	r.PerCore = make([]float64, len(coreTimes))
	for i, c := range coreTimes {
		// A core that appeared since the last read has no baseline.
		if i >= len(p.prevCore) {
			continue
		}
		r.PerCore[i] = busyPercent(p.prevCore[i], c)
	}
	p.prevCore = coreTimes

	// Load averages are best-effort; not every platform has them.
	if avg, err := load.AvgWithContext(ctx); err == nil && avg != nil {
		r.Load = model.LoadAverage{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15}
	}
	return r, nil
}

// Count returns the number of logical cores.
func (p *SystemProvider) Count(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}

func busyPercent(prev, cur cpu.TimesStat) float64 {
	dt := cur.Total() - prev.Total()
	di := (cur.Idle + cur.Iowait) - (prev.Idle + prev.Iowait)
	if dt <= 0 {
		return 0
	}
	return 100 * (1 - di/dt)
}
