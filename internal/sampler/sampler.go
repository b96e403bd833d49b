package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dicklesworthstone/cpugrid/internal/errors"
	"github.com/Dicklesworthstone/cpugrid/internal/model"
)

// Reading is one raw provider observation, in percent (0-100).
type Reading struct {
	PerCore []float64
	Total   float64
	Load    model.LoadAverage
}

// Provider is the OS metrics source. Read is stateful (it computes deltas
// between calls) and must be called at most once per tick.
type Provider interface {
	Read(ctx context.Context) (Reading, error)
	Count(ctx context.Context) (int, error)
}

// Sampler turns provider readings into clamped samples and remembers the last good one.
type Sampler struct {
	provider      Provider
	coreOverride  int
	now           func() time.Time
	last          model.Sample
	hasLast       bool
	sensorFilters []string
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithCoreCount makes CoreCount report n instead of the detected count.
// Zero keeps detection. Sample is unaffected.
func WithCoreCount(n int) Option {
	return func(s *Sampler) { s.coreOverride = n }
}

// WithSensorLabels records sensor label filters for the temperature readout.
func WithSensorLabels(labels ...string) Option {
	return func(s *Sampler) {
		for _, l := range labels {
			if l != "" {
				s.sensorFilters = append(s.sensorFilters, l)
			}
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

func New(p Provider, opts ...Option) *Sampler {
	s := &Sampler{provider: p, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample reads the provider once and returns a fresh sample.
func (s *Sampler) Sample(ctx context.Context) (model.Sample, error) {
	r, err := s.provider.Read(ctx)
	if err != nil {
		return model.Sample{}, errors.WrapWithCode(err, errors.ErrProvider,
			"Couldn't read CPU utilization",
			"Check that the process can read the system CPU counters")
	}
	if len(r.PerCore) == 0 {
		return model.Sample{}, errors.New(errors.ErrProvider,
			"CPU provider returned no per-core readings",
			"This platform may not expose per-core counters")
	}

	samp := model.FromPercents(s.now(), r.PerCore, r.Total)
	samp.Load = r.Load
	s.last, s.hasLast = samp, true
	return samp, nil
}

// Last returns the most recent good sample, marked stale.
func (s *Sampler) Last() (model.Sample, bool) {
	if !s.hasLast {
		return model.Sample{}, false
	}
	samp := s.last
	samp.Stale = true
	return samp, true
}

// CoreCount returns the number of cores to lay out, honoring the override.
func (s *Sampler) CoreCount(ctx context.Context) (int, error) {
	if s.coreOverride > 0 {
		return s.coreOverride, nil
	}
	n, err := s.provider.Count(ctx)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrProvider,
			"Couldn't detect the number of CPU cores",
			"Pass --sim-core-count to lay out a fixed number of gauges")
	}
	if n < 1 {
		return 0, errors.New(errors.ErrProvider,
			fmt.Sprintf("CPU provider reported %d cores", n),
			"Pass --sim-core-count to lay out a fixed number of gauges")
	}
	return n, nil
}

// Temperature is a placeholder for the thermal readout; it is not implemented.
func (s *Sampler) Temperature(ctx context.Context) (float64, error) {
	capability := "temperature readout"
	if len(s.sensorFilters) > 0 {
		capability = fmt.Sprintf("temperature readout (sensors %v)", s.sensorFilters)
	}
	return 0, errors.NewUnsupported(capability)
}
