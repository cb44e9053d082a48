// Package boardhash provides a Zobrist-style fingerprint over a GameState's
// grid and active piece, for determinism tests and for correlating repeated
// positions across log lines without serializing the whole grid.
package boardhash

import (
	"lukechampine.com/frand"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

const bignum = 1<<63 - 2

// Table holds the random per-(row, col, piece-type) keys XORed together to
// fingerprint a grid. A Table is immutable once built and safe for
// concurrent use by any number of callers.
type Table struct {
	cellKeys  [][]uint64 // [row*width+col][tetromino type, 1-indexed]
	activeKey []uint64   // [tetromino type, 1-indexed] for the active piece
	width     int
}

// NewTable builds a fresh table of random keys sized for a grid of the given
// dimensions. Each call produces an independent table; two Tables built
// from separate calls are not comparable, so a single Table must be shared
// by every caller that wants to compare hashes.
func NewTable(width, height int) *Table {
	numTypes := int(tetromino.Z) + 1 // Empty..Z, indexed directly by Type
	t := &Table{
		cellKeys:  make([][]uint64, width*height),
		activeKey: make([]uint64, numTypes),
		width:     width,
	}
	for i := range t.cellKeys {
		t.cellKeys[i] = make([]uint64, numTypes)
		for j := range t.cellKeys[i] {
			t.cellKeys[i][j] = frand.Uint64n(bignum) + 1
		}
	}
	for i := range t.activeKey {
		t.activeKey[i] = frand.Uint64n(bignum) + 1
	}
	return t
}

// Hash folds every occupied cell of g, keyed by the piece tag it holds,
// plus the active piece's type (Empty included), into a single uint64. Two
// grids holding the same tags in the same cells, with the same active piece
// type, hash identically under one Table regardless of their history;
// hashes from distinct Tables are not comparable.
func (t *Table) Hash(g board.Grid, active tetromino.Type) uint64 {
	var key uint64
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			if g.IsEmpty(row, col) {
				continue
			}
			tag := g.At(row, col)
			key ^= t.cellKeys[row*t.width+col][int(tag)]
		}
	}
	key ^= t.activeKey[int(active)]
	return key
}
