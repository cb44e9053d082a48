package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

func TestChildrenOnEmptyBoardPlacesOPieceCentered(t *testing.T) {
	root := New(10, 20)
	children := root.Children(tetromino.O, nil)
	require.NotEmpty(t, children)

	ev := NewBalanced()
	best := children[0]
	for _, c := range children[1:] {
		if c.Next.Quality(ev) > best.Next.Quality(ev) {
			best = c
		}
	}
	assert.Equal(t, 0, best.LinesCleared)
	assert.Greater(t, best.Next.Quality(ev), root.Quality(ev))

	// Every legal placement of the O piece on an empty board leaves a
	// two-tall, two-wide footprint and clears nothing; the best child is
	// whichever minimizes bumpiness, which on an empty board favors a wall
	// rather than the interior.
	heights := best.Next.Grid().ColumnHeights()
	occupied := 0
	for _, h := range heights {
		if h == 2 {
			occupied++
		} else {
			assert.Equal(t, 0, h)
		}
	}
	assert.Equal(t, 2, occupied)
}

func TestChildrenClearingFourRowsScoresATetris(t *testing.T) {
	g := board.New(10, 20)
	for row := 16; row <= 19; row++ {
		for col := 1; col < 10; col++ {
			g = g.Set(row, col, tetromino.J)
		}
	}
	root := GameState{grid: g, stats: Stats{}.deriveFrom(g), cache: newQualityCache()}

	children := root.Children(tetromino.I, nil)
	var tetris *Transition
	for i := range children {
		if children[i].LinesCleared == 4 {
			tetris = &children[i]
			break
		}
	}
	require.NotNil(t, tetris, "expected a placement of the vertical I in column 0 to clear 4 rows")
	assert.Equal(t, 1, tetris.Next.Stats().Tetrises)
	assert.Equal(t, LineClearPoints[4], tetris.Next.Stats().Score-root.Stats().Score)
}

func TestChildrenReturnsNilWhenNoLegalPlacement(t *testing.T) {
	g := board.New(4, 2)
	for col := 0; col < 4; col++ {
		g = g.Set(0, col, tetromino.I)
		g = g.Set(1, col, tetromino.I)
	}
	root := GameState{grid: g, stats: Stats{}.deriveFrom(g), cache: newQualityCache()}
	children := root.Children(tetromino.O, nil)
	assert.Empty(t, children)
}

func TestChildLinesClearedDeltaIsBoundedByZeroToFour(t *testing.T) {
	root := New(10, 20)
	for _, p := range tetromino.NonemptyTypes {
		for _, c := range root.Children(p, nil) {
			delta := c.Next.Stats().LinesCleared - root.Stats().LinesCleared
			assert.GreaterOrEqual(t, delta, 0)
			assert.LessOrEqual(t, delta, 4)
		}
	}
}

func TestQualityCacheIsPerEvaluator(t *testing.T) {
	root := New(10, 20)
	bal := NewBalanced()
	seek := NewTetrisSeeking()
	q1 := root.Quality(bal)
	q2 := root.Quality(seek)
	// Both evaluators see the same empty board; re-fetching must return
	// the same memoized values, not recompute into the wrong slot.
	assert.Equal(t, q1, root.Quality(bal))
	assert.Equal(t, q2, root.Quality(seek))
}
