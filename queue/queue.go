// Package queue models the finite piece sequence a NodeCalculator searches
// against. The actual random-bag shuffling that produces piece types is an
// external collaborator (a GUI, a game loop, a test harness); this package
// only defines the callback shape and the snapshotting behavior that makes
// a search's branching deterministic once launched.
package queue

import (
	"fmt"

	"lukechampine.com/frand"

	"github.com/stackedcrooked/tetris-ai/tetromino"
)

// Generator yields the next piece type in an infinite sequence. A
// NodeCalculator never calls a Generator directly; it consumes a
// PieceQueue taken by Snapshot at launch time so every task in the search
// sees the same sequence regardless of when it runs.
type Generator func() tetromino.Type

// PieceQueue is an immutable, ordered sequence of piece types, long enough
// to cover a search of some depth D. Index d gives the piece that will
// branch every node at search depth d.
type PieceQueue struct {
	pieces []tetromino.Type
}

// Snapshot pulls n pieces from gen and freezes them into a PieceQueue. n
// must be at least 1.
func Snapshot(gen Generator, n int) (PieceQueue, error) {
	if n < 1 {
		return PieceQueue{}, fmt.Errorf("tetris-ai: queue snapshot length must be >= 1, got %d", n)
	}
	pieces := make([]tetromino.Type, n)
	for i := range pieces {
		pieces[i] = gen()
	}
	return PieceQueue{pieces: pieces}, nil
}

// Len returns the number of pieces frozen into q.
func (q PieceQueue) Len() int { return len(q.pieces) }

// At returns the piece type at depth d. Panics if d is out of range; a
// caller must never search deeper than the queue it snapshotted.
func (q PieceQueue) At(d int) tetromino.Type {
	return q.pieces[d]
}

// NewBagGenerator returns a Generator backed by the classic "7-bag"
// shuffle: every piece type appears exactly once per bag, with the bag
// order re-shuffled once exhausted, so no piece is ever starved for more
// than 2*len(NonemptyTypes)-1 draws in a row.
func NewBagGenerator() Generator {
	var bag []tetromino.Type
	refill := func() {
		bag = append(bag[:0], tetromino.NonemptyTypes[:]...)
		frand.Shuffle(len(bag), func(i, j int) {
			bag[i], bag[j] = bag[j], bag[i]
		})
	}
	return func() tetromino.Type {
		if len(bag) == 0 {
			refill()
		}
		next := bag[0]
		bag = bag[1:]
		return next
	}
}
