package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dicklesworthstone/cpugrid/internal/grid"
	"github.com/Dicklesworthstone/cpugrid/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plan(t *testing.T, cores, width, extra int) grid.Spec {
	t.Helper()
	spec, err := grid.Plan(cores, width, extra)
	require.NoError(t, err)
	return spec
}

func percents(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func titles(gs []Gauge) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.Title
	}
	return out
}

func TestBuildFrame_FourCoresWidthFive(t *testing.T) {
	samp := model.FromPercents(time.Now(), []float64{10, 20, 30, 40}, 25)
	f := BuildFrame(plan(t, 4, 5, 0), samp, Options{Border: BorderAll})

	require.Len(t, f.Rows, 1)
	assert.Equal(t, 20, f.Rows[0].WidthPercent)
	assert.Equal(t, 100, f.Rows[0].HeightPercent)
	gs := f.Gauges()
	assert.Equal(t, []string{"CPU0", "CPU1", "CPU2", "CPU3", "AVG"}, titles(gs))
	assert.InDelta(t, 0.4, gs[3].Ratio, 1e-9)
	assert.InDelta(t, 0.25, gs[4].Ratio, 1e-9)
	for _, g := range gs {
		assert.Equal(t, BorderAll, g.Border)
	}
}

func TestBuildFrame_TwentyFourCores(t *testing.T) {
	samp := model.FromPercents(time.Now(), percents(24, 50), 50)
	f := BuildFrame(plan(t, 24, 5, 0), samp, Options{})

	require.Len(t, f.Rows, 5)
	for i := 0; i < 4; i++ {
		assert.Len(t, f.Rows[i].Gauges, 5)
	}
	last := titles(f.Rows[4].Gauges)
	assert.Equal(t, []string{"CPU20", "CPU21", "CPU22", "CPU23", "AVG"}, last)
}

func TestBuildFrame_ClampsRatio(t *testing.T) {
	samp := model.Sample{
		Cores:     []model.CoreReading{{Index: 0, Utilization: 1.37}},
		Aggregate: model.AggregateReading{Utilization: -0.5},
	}
	f := BuildFrame(plan(t, 1, 2, 0), samp, Options{})
	gs := f.Gauges()
	require.Len(t, gs, 2)
	assert.Equal(t, 1.0, gs[0].Ratio)
	assert.Equal(t, 0.0, gs[1].Ratio)
}

func TestBuildFrame_FirstGapPolicy(t *testing.T) {
	samp := model.FromPercents(time.Now(), percents(2, 10), 10)
	f := BuildFrame(plan(t, 2, 5, 0), samp, Options{Policy: grid.EdgeFirstGap})
	assert.Equal(t, []string{"CPU0", "CPU1", "AVG"}, titles(f.Gauges()))
}

func TestBuildFrame_SimulatedCoresBeyondSample(t *testing.T) {
	samp := model.FromPercents(time.Now(), percents(2, 10), 30)
	f := BuildFrame(plan(t, 6, 3, 0), samp, Options{})
	assert.Equal(t, []string{"CPU0", "CPU1", "AVG", "AVG", "AVG", "AVG"}, titles(f.Gauges()))
}

func TestBuildFrame_SummaryRow(t *testing.T) {
	samp := model.FromPercents(time.Now(), percents(3, 10), 40)
	f := BuildFrame(plan(t, 3, 3, 1), samp, Options{SummaryNote: "load 1.00 0.50 0.25"})

	require.Len(t, f.Rows, 2)
	summary := f.Rows[1]
	assert.Equal(t, 100, summary.WidthPercent)
	assert.Equal(t, 50, summary.HeightPercent)
	require.Len(t, summary.Gauges, 1)
	assert.Equal(t, "TOTAL  load 1.00 0.50 0.25", summary.Gauges[0].Title)
	assert.InDelta(t, 0.4, summary.Gauges[0].Ratio, 1e-9)
}

func TestBuildFrame_StaleMarksTitles(t *testing.T) {
	samp := model.FromPercents(time.Now(), percents(1, 10), 10)
	samp.Stale = true
	f := BuildFrame(plan(t, 1, 2, 0), samp, Options{})
	assert.True(t, f.Stale)
	assert.Equal(t, []string{"CPU0 (stale)", "AVG (stale)"}, titles(f.Gauges()))
}

func TestSummaryNote(t *testing.T) {
	load := model.LoadAverage{Load1: 1, Load5: 0.5, Load15: 0.25}
	assert.Equal(t, "load 1.00 0.50 0.25  temp n/a", SummaryNote(load, 0, false))
	assert.Equal(t, "load 1.00 0.50 0.25  55°C", SummaryNote(load, 55, true))
}

func TestGaugeBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50.0%", gaugeBar(0.5, 17))
	assert.Equal(t, "░░░░░░░░░░   0.0%", gaugeBar(-1, 17))
	assert.Equal(t, "██████████ 100.0%", gaugeBar(2, 17))
	assert.Equal(t, "50.0%", gaugeBar(0.5, 5))
	assert.Equal(t, "", gaugeBar(0.5, 0))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "CPU12", truncate("CPU12", 5))
	assert.Equal(t, "CPU…", truncate("CPU12", 4))
	assert.Equal(t, "C", truncate("CPU12", 1))
	assert.Equal(t, "", truncate("CPU12", 0))
}

func TestCompose_FitsTerminal(t *testing.T) {
	sizes := []struct{ w, h int }{{80, 24}, {120, 40}, {40, 10}, {20, 6}}
	for _, cores := range []int{1, 4, 24, 64} {
		samp := model.FromPercents(time.Now(), percents(cores, 33), 33)
		f := BuildFrame(plan(t, cores, 5, 1), samp, Options{Border: BorderAll})
		for _, sz := range sizes {
			out := Compose(f, sz.w, sz.h)
			assert.LessOrEqual(t, lipgloss.Width(out), sz.w, "cores=%d size=%v", cores, sz)
			assert.LessOrEqual(t, lipgloss.Height(out), sz.h, "cores=%d size=%v", cores, sz)
		}
	}
}

func TestCompose_ShowsTitles(t *testing.T) {
	samp := model.FromPercents(time.Now(), []float64{10, 90}, 50)
	f := BuildFrame(plan(t, 2, 3, 0), samp, Options{Border: BorderAll})
	out := Compose(f, 80, 24)
	assert.Contains(t, out, "CPU0")
	assert.Contains(t, out, "CPU1")
	assert.Contains(t, out, "AVG")
	assert.Contains(t, out, "90.0%")
}

func TestCompose_TooSmall(t *testing.T) {
	assert.Equal(t, "", Compose(Frame{}, 2, 2))
}

func TestTerminalSurface_Draw(t *testing.T) {
	var buf bytes.Buffer
	s := NewTerminalSurface(&buf, func() (int, int, error) { return 60, 12, nil })

	samp := model.FromPercents(time.Now(), []float64{10, 20}, 15)
	require.NoError(t, s.Draw(BuildFrame(plan(t, 2, 5, 0), samp, Options{Border: BorderAll})))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\x1b[1;1H"))
	assert.Contains(t, out, "CPU1")
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n", "every newline is CRLF")
}

func TestTerminalSurface_SizeError(t *testing.T) {
	boom := errors.New("no tty")
	s := NewTerminalSurface(&bytes.Buffer{}, func() (int, int, error) { return 0, 0, boom })
	assert.ErrorIs(t, s.Draw(Frame{}), boom)
}
