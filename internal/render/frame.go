// Package render builds gauge frames from a layout and a sample, and paints
// them with lipgloss.
package render

import (
	"fmt"

	"github.com/Dicklesworthstone/cpugrid/internal/grid"
	"github.com/Dicklesworthstone/cpugrid/internal/model"
)

// Border selects the gauge border style.
type Border int

const (
	BorderNone Border = iota
	BorderAll
)

// AggregateTitle labels cells that show whole-machine load.
const AggregateTitle = "AVG"

// Gauge is one draw call: a titled, optionally bordered box filled to Ratio.
type Gauge struct {
	Title  string
	Border Border
	Ratio  float64 // 0-1
}

// Row is a horizontal strip of gauges, each WidthPercent wide.
type Row struct {
	HeightPercent int
	WidthPercent  int
	Gauges        []Gauge
}

// Frame is a full screen of gauges in row-major order.
type Frame struct {
	Rows  []Row
	Stale bool
}

// Gauges flattens the frame in draw order.
func (f Frame) Gauges() []Gauge {
	var out []Gauge
	for _, r := range f.Rows {
		out = append(out, r.Gauges...)
	}
	return out
}

// Options control frame construction.
type Options struct {
	Border Border
	Policy grid.EdgePolicy
	// SummaryNote is appended to the title of the full-width auxiliary rows.
	SummaryNote string
}

// CoreTitle is the gauge title for core i.
func CoreTitle(i int) string { return fmt.Sprintf("CPU%d", i) }

// BuildFrame lays samp out according to spec. Core rows come first; every
// auxiliary row is a single full-width summary gauge.
func BuildFrame(spec grid.Spec, samp model.Sample, opts Options) Frame {
	f := Frame{Stale: samp.Stale}
	suffix := ""
	if samp.Stale {
		suffix = " (stale)"
	}
	agg := model.Clamp(samp.Aggregate.Utilization)

	rows := make([]Row, spec.RowCount)
	for i := range rows {
		rows[i] = Row{HeightPercent: spec.CellHeightPercent, WidthPercent: spec.CellWidthPercent}
	}

	for _, c := range grid.Cells(spec, len(samp.Cores), opts.Policy) {
		g := Gauge{Title: AggregateTitle + suffix, Border: opts.Border, Ratio: agg}
		if c.Kind == grid.CellCore {
			ratio, _ := samp.Ratio(c.Index)
			g = Gauge{Title: CoreTitle(c.Index) + suffix, Border: opts.Border, Ratio: model.Clamp(ratio)}
		}
		rows[c.Row].Gauges = append(rows[c.Row].Gauges, g)
	}

	for i := 0; i < spec.ExtraRows; i++ {
		title := "TOTAL"
		if opts.SummaryNote != "" {
			title += "  " + opts.SummaryNote
		}
		rows = append(rows, Row{
			HeightPercent: spec.CellHeightPercent,
			WidthPercent:  100,
			Gauges:        []Gauge{{Title: title + suffix, Border: opts.Border, Ratio: agg}},
		})
	}

	f.Rows = rows
	return f
}

// SummaryNote formats load averages and an optional temperature for the summary row.
func SummaryNote(load model.LoadAverage, tempC float64, haveTemp bool) string {
	note := fmt.Sprintf("load %.2f %.2f %.2f", load.Load1, load.Load5, load.Load15)
	if haveTemp {
		note += fmt.Sprintf("  %.0f°C", tempC)
	} else {
		note += "  temp n/a"
	}
	return note
}
