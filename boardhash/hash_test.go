package boardhash

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

func TestHashIsStableForIdenticalGrids(t *testing.T) {
	table := NewTable(4, 4)
	a := board.New(4, 4).Set(0, 0, tetromino.T)
	b := board.New(4, 4).Set(0, 0, tetromino.T)
	assert.Equal(t, table.Hash(a, tetromino.Empty), table.Hash(b, tetromino.Empty))
}

func TestHashDiffersForDifferentOccupancy(t *testing.T) {
	table := NewTable(4, 4)
	empty := board.New(4, 4)
	occupied := board.New(4, 4).Set(0, 0, tetromino.T)
	assert.NotEqual(t, table.Hash(empty, tetromino.Empty), table.Hash(occupied, tetromino.Empty))
}

func TestHashDiffersForDifferentActivePiece(t *testing.T) {
	table := NewTable(4, 4)
	g := board.New(4, 4)
	assert.NotEqual(t, table.Hash(g, tetromino.I), table.Hash(g, tetromino.O))
}

func TestIndependentTablesAreNotComparable(t *testing.T) {
	a := NewTable(4, 4)
	b := NewTable(4, 4)
	g := board.New(4, 4).Set(1, 1, tetromino.S)
	// Not a correctness guarantee, just documents that two tables are
	// independently seeded and so do not agree in general.
	assert.NotEqual(t, a.Hash(g, tetromino.Empty), b.Hash(g, tetromino.Empty))
}
