package grid

import (
	"fmt"
	"strings"
)

// EdgePolicy decides what happens to cells past the last real core in a row.
type EdgePolicy int

const (
	// EdgeFill puts an aggregate gauge in every cell without a core.
	EdgeFill EdgePolicy = iota
	// EdgeFirstGap puts one aggregate gauge at the first gap and leaves the rest of the row empty.
	EdgeFirstGap
)

// String returns the flag spelling of the policy.
func (p EdgePolicy) String() string {
	switch p {
	case EdgeFirstGap:
		return "first-gap"
	default:
		return "fill"
	}
}

// ParseEdgePolicy accepts "fill" and "first-gap".
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fill":
		return EdgeFill, nil
	case "first-gap", "firstgap", "stop":
		return EdgeFirstGap, nil
	default:
		return EdgeFill, fmt.Errorf("unknown edge policy %q (want fill or first-gap)", s)
	}
}

// CellKind says what a cell shows.
type CellKind int

const (
	CellCore CellKind = iota
	CellAggregate
)

// Cell is one gauge slot in the core rows.
type Cell struct {
	Row   int
	Col   int
	Index int // linear index; names a core only when Kind is CellCore
	Kind  CellKind
}

// Cells enumerates the core-row cells of spec in row-major order.
// available is the number of readings the sampler actually returned; an index
// must be below both spec.CoreCount and available to be drawn as a core.
func Cells(spec Spec, available int, policy EdgePolicy) []Cell {
	cells := make([]Cell, 0, spec.Slots())
	for row := 0; row < spec.RowCount; row++ {
		for col := 0; col < spec.ColumnsPerRow; col++ {
			idx := LinearIndex(row, col, spec.ColumnsPerRow)
			if IsValidIndex(idx, spec.CoreCount) && IsValidIndex(idx, available) {
				cells = append(cells, Cell{Row: row, Col: col, Index: idx, Kind: CellCore})
				continue
			}
			cells = append(cells, Cell{Row: row, Col: col, Index: idx, Kind: CellAggregate})
			if policy == EdgeFirstGap {
				break
			}
		}
	}
	return cells
}
