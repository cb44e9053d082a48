package board

import (
	"testing"

	"github.com/matryer/is"

	"github.com/stackedcrooked/tetris-ai/tetromino"
)

func TestEmptyGridIsAllEmpty(t *testing.T) {
	is := is.New(t)
	g := New(10, 20)
	is.Equal(g.Width(), 10)
	is.Equal(g.Height(), 20)
	is.True(g.IsEmpty(0, 0))
	is.True(g.IsEmpty(19, 9))
}

func TestFitsRejectsOutOfBounds(t *testing.T) {
	is := is.New(t)
	g := New(4, 4)
	is.True(!g.Fits(Block{Type: tetromino.O, Row: 0, Col: 3}))
	is.True(g.Fits(Block{Type: tetromino.O, Row: 0, Col: 0}))
}

func TestFitsRejectsCollision(t *testing.T) {
	is := is.New(t)
	g := New(4, 4)
	g = g.Set(1, 1, tetromino.Z)
	is.True(!g.Fits(Block{Type: tetromino.O, Row: 0, Col: 0}))
}

func TestPlacePanicsOnIllegalBlock(t *testing.T) {
	is := is.New(t)
	defer func() {
		is.True(recover() != nil)
	}()
	g := New(2, 2)
	g.Place(Block{Type: tetromino.O, Row: 0, Col: 5})
}

func TestClearFullRowsRemovesOnlyFullRows(t *testing.T) {
	is := is.New(t)
	g := New(4, 3)
	// Fill the bottom row entirely, leave others with a gap.
	for col := 0; col < 4; col++ {
		g = g.Set(2, col, tetromino.I)
	}
	g = g.Set(1, 0, tetromino.I)
	g = g.Set(1, 1, tetromino.I)
	g = g.Set(1, 2, tetromino.I)

	out, cleared, rows := g.ClearFullRows()
	is.Equal(cleared, 1)
	is.Equal(rows, []int{2})
	is.True(out.IsEmpty(2, 3)) // bottom row is now the old middle row, which had a gap at column 3
	is.True(!out.IsEmpty(2, 1))
}

func TestClearFullRowsIsIdempotent(t *testing.T) {
	is := is.New(t)
	g := New(4, 3)
	for col := 0; col < 4; col++ {
		g = g.Set(2, col, tetromino.I)
	}
	once, _, _ := g.ClearFullRows()
	twice, clearedAgain, _ := once.ClearFullRows()
	is.Equal(clearedAgain, 0)
	is.True(once.Equal(twice))
}

func TestDropRowRestsOnStack(t *testing.T) {
	is := is.New(t)
	g := New(4, 6)
	for col := 0; col < 4; col++ {
		g = g.Set(5, col, tetromino.I)
	}
	row, ok := g.DropRow(tetromino.O, tetromino.R0, 0)
	is.True(ok)
	is.Equal(row, 3) // O piece occupies rows {row, row+1}; rests just above row 5
}

func TestDropRowHonorsOverhang(t *testing.T) {
	is := is.New(t)
	g := New(4, 6)
	// Block row 4 in every column, leaving the empty row 5 below it
	// unreachable.
	g = g.Set(4, 0, tetromino.T)
	g = g.Set(4, 1, tetromino.T)
	g = g.Set(4, 2, tetromino.T)
	g = g.Set(4, 3, tetromino.T)

	// The vertical I mask's filled column sits at offset 2 within its 4x4
	// box, so Col=-2 targets absolute column 0.
	row, ok := g.DropRow(tetromino.I, tetromino.R90, -2)
	is.True(ok)
	// The vertical I piece must rest on top of the overhang at row 4,
	// not fall through to the empty row beneath it.
	is.True(row+3 < 4)
}

func TestBumpinessAndAggregateHeight(t *testing.T) {
	is := is.New(t)
	g := New(3, 4)
	g = g.Set(3, 0, tetromino.I) // column 0 height 1
	g = g.Set(2, 1, tetromino.I)
	g = g.Set(3, 1, tetromino.I) // column 1 height 2
	// column 2 height 0

	heights := g.ColumnHeights()
	is.Equal(heights, []int{1, 2, 0})
	is.Equal(g.AggregateHeight(), 3)
	is.Equal(g.Bumpiness(), 1+2) // |1-2| + |2-0|
}

func TestHoleCount(t *testing.T) {
	is := is.New(t)
	g := New(1, 4)
	g = g.Set(0, 0, tetromino.I)
	// rows 1 and 3 are empty beneath a filled row 0 -> two holes.
	g = g.Set(2, 0, tetromino.I)
	is.Equal(g.HoleCount(), 2)
}
