package model

import "time"

// CoreReading is the utilization of one logical core for a single tick.
type CoreReading struct {
	Index       int     // 0-based, stable for the process lifetime
	Utilization float64 // ratio 0-1
}

// AggregateReading is whole-machine utilization for a single tick.
type AggregateReading struct {
	Utilization float64 // ratio 0-1
}

// LoadAverage carries the 1/5/15 minute run-queue averages. Zero when unavailable.
type LoadAverage struct {
	Load1  float64
	Load5  float64
	Load15 float64
}

// Sample is the snapshot exchanged between sampler, loop, and renderer.
type Sample struct {
	Taken     time.Time
	Cores     []CoreReading
	Aggregate AggregateReading
	Load      LoadAverage
	// Stale marks a sample reused because the provider failed this tick.
	Stale bool
}

// Zero returns an empty sample for initialization.
func Zero() Sample { return Sample{Taken: time.Now()} }

// Ratio returns the utilization of core i and whether the sample holds it.
func (s Sample) Ratio(i int) (float64, bool) {
	if i < 0 || i >= len(s.Cores) {
		return 0, false
	}
	return s.Cores[i].Utilization, true
}

// Clamp bounds r to [0, 1]. NaN becomes 0.
func Clamp(r float64) float64 {
	if r != r || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// FromPercents builds a sample from provider percentages (0-100), clamping each ratio.
func FromPercents(taken time.Time, perCore []float64, total float64) Sample {
	cores := make([]CoreReading, len(perCore))
	for i, p := range perCore {
		cores[i] = CoreReading{Index: i, Utilization: Clamp(p / 100)}
	}
	return Sample{
		Taken:     taken,
		Cores:     cores,
		Aggregate: AggregateReading{Utilization: Clamp(total / 100)},
	}
}
