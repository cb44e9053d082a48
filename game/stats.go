package game

import (
	"gonum.org/v1/gonum/stat"

	"github.com/stackedcrooked/tetris-ai/board"
)

// LineClearPoints is the classic single-clear scoring table, indexed by
// the number of rows cleared in one placement (1..4).
var LineClearPoints = [5]int{0: 0, 1: 40, 2: 100, 3: 300, 4: 1200}

// Stats accumulates the cumulative line-clear counters and the derived
// board heuristics carried by a GameState. Stats is a plain value: every
// GameState transition produces a new Stats rather than mutating one.
type Stats struct {
	Singles, Doubles, Triples, Tetrises int
	LinesCleared                       int
	Score                               int

	MaxColumnHeight int
	HoleCount       int
	AggregateHeight int
	Bumpiness       int
	ColumnVariance  float64
}

// deriveFrom recomputes the board-derived fields of Stats from g, leaving
// the cumulative counters untouched.
func (s Stats) deriveFrom(g board.Grid) Stats {
	heights := g.ColumnHeights()
	maxHeight := 0
	floats := make([]float64, len(heights))
	for i, h := range heights {
		if h > maxHeight {
			maxHeight = h
		}
		floats[i] = float64(h)
	}
	s.MaxColumnHeight = maxHeight
	s.HoleCount = g.HoleCount()
	s.AggregateHeight = g.AggregateHeight()
	s.Bumpiness = g.Bumpiness()
	// stat.Variance wants at least one sample; an empty grid still has
	// width-many (all zero) column heights, so this is never called with
	// a zero-length slice.
	s.ColumnVariance = stat.Variance(floats, nil)
	return s
}

// withClear returns a copy of s with the cumulative counters advanced by
// clearing `lines` rows in a single placement (0 if none were cleared).
func (s Stats) withClear(lines int) Stats {
	switch lines {
	case 1:
		s.Singles++
	case 2:
		s.Doubles++
	case 3:
		s.Triples++
	case 4:
		s.Tetrises++
	}
	s.LinesCleared += lines
	s.Score += LineClearPoints[lines]
	return s
}
