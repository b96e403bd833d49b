// Package grid maps a linear core index onto rows and columns of gauges.
//
// Everything here is pure: the same inputs always give the same Spec.
package grid

import (
	"fmt"

	"github.com/Dicklesworthstone/cpugrid/internal/errors"
)

// Spec is the derived layout for one core count and row width.
type Spec struct {
	CoreCount         int
	RowCount          int // rows holding core gauges, >= 1
	ColumnsPerRow     int // configured minimum width, >= 1
	ExtraRows         int // auxiliary full-width rows appended after the core rows
	CellWidthPercent  int
	CellHeightPercent int
}

// TotalRows is RowCount plus the auxiliary rows.
func (s Spec) TotalRows() int { return s.RowCount + s.ExtraRows }

// Slots is the number of core-row cells.
func (s Spec) Slots() int { return s.RowCount * s.ColumnsPerRow }

// RowCount returns how many rows are needed to give every core a cell.
func RowCount(coreCount, minWidth int) int {
	if minWidth < 1 || coreCount < minWidth {
		return 1
	}
	rows := (coreCount + minWidth - 1) / minWidth
	if rows < 1 {
		return 1
	}
	return rows
}

// CellPercent splits 100% into n parts with truncating division, so the
// parts may sum to slightly less than 100.
func CellPercent(n int) int {
	if n < 1 {
		return 100
	}
	p := 100 / n
	if p < 1 {
		return 1
	}
	return p
}

// LinearIndex maps a (row, col) cell to a core index.
func LinearIndex(row, col, minWidth int) int {
	return row*minWidth + col
}

// Position is the inverse of LinearIndex. A width below 1 is treated as a
// single column.
func Position(index, minWidth int) (row, col int) {
	if minWidth < 1 {
		minWidth = 1
	}
	return index / minWidth, index % minWidth
}

// IsValidIndex reports whether index names a real core.
func IsValidIndex(index, coreCount int) bool {
	return index >= 0 && index < coreCount
}

// Plan computes the layout for coreCount cores, minWidth gauges per row, and
// extraRows auxiliary rows.
func Plan(coreCount, minWidth, extraRows int) (Spec, error) {
	if minWidth < 1 {
		return Spec{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Row width must be at least 1 (got %d)", minWidth),
			"Pass --width with a positive number of gauges per row")
	}
	if coreCount < 0 {
		return Spec{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Core count can't be negative (got %d)", coreCount), "")
	}
	if extraRows < 0 {
		return Spec{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Extra rows can't be negative (got %d)", extraRows), "")
	}

	rows := RowCount(coreCount, minWidth)
	return Spec{
		CoreCount:         coreCount,
		RowCount:          rows,
		ColumnsPerRow:     minWidth,
		ExtraRows:         extraRows,
		CellWidthPercent:  CellPercent(minWidth),
		CellHeightPercent: CellPercent(rows + extraRows),
	}, nil
}
