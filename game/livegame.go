package game

import (
	"sync"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

// LiveGame is the mutable, single-mutex-guarded board a BlockMover actuates
// in real time. Every field access goes through the lock; callers never see
// a torn read between the grid and the active block.
type LiveGame struct {
	mu sync.Mutex

	grid        board.Grid
	activeBlock board.Block
	gameOver    bool
	stats       Stats
}

// NewLiveGame returns a fresh LiveGame over an empty grid of the given
// dimensions, with no active block set. The caller must SetActiveBlock
// before the first Move/Rotate/Drop.
func NewLiveGame(width, height int) *LiveGame {
	g := board.New(width, height)
	return &LiveGame{
		grid:  g,
		stats: Stats{}.deriveFrom(g),
	}
}

// Grid returns a value copy of the current board.
func (lg *LiveGame) Grid() board.Grid {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.grid
}

// ActiveBlock returns the block currently under player/AI control.
func (lg *LiveGame) ActiveBlock() board.Block {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.activeBlock
}

// GameOver reports whether the active block could not be placed when it
// spawned.
func (lg *LiveGame) GameOver() bool {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.gameOver
}

// Score returns the cumulative score.
func (lg *LiveGame) Score() int {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.stats.Score
}

// SetActiveBlock installs b as the active block. If b does not fit the
// current grid, the game is marked over and b is still recorded (so the
// caller can render the failed spawn) but no further Move/Rotate/Drop calls
// will move it.
func (lg *LiveGame) SetActiveBlock(b board.Block) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.activeBlock = b
	if !lg.grid.Fits(b) {
		lg.gameOver = true
	}
}

// Move shifts the active block by (rowDelta, colDelta) if the result still
// fits; otherwise it is a no-op. Returns whether the block moved.
func (lg *LiveGame) Move(rowDelta, colDelta int) bool {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.gameOver {
		return false
	}
	candidate := lg.activeBlock
	candidate.Row += rowDelta
	candidate.Col += colDelta
	if !lg.grid.Fits(candidate) {
		return false
	}
	lg.activeBlock = candidate
	return true
}

// Rotate steps the active block to its next (clockwise=true) or previous
// (clockwise=false) distinct rotation, leaving it in place if the rotated
// mask still fits; otherwise it is a no-op. Returns whether the block
// rotated.
func (lg *LiveGame) Rotate(clockwise bool) bool {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.gameOver {
		return false
	}
	n := tetromino.DistinctRotations(lg.activeBlock.Type)
	candidate := lg.activeBlock
	delta := 1
	if !clockwise {
		delta = n - 1
	}
	candidate.Rotation = tetromino.Rotation((int(candidate.Rotation) + delta) % n)
	if !lg.grid.Fits(candidate) {
		return false
	}
	lg.activeBlock = candidate
	return true
}

// CommitIfLanded checks whether the active block can still fall one more
// row; if it can, it is a no-op. If it cannot, the block is merged into the
// grid, full rows are cleared, stats are updated, and true is returned so
// the caller knows to spawn the next block.
func (lg *LiveGame) CommitIfLanded() bool {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.gameOver {
		return false
	}
	resting := lg.activeBlock
	resting.Row++
	if lg.grid.Fits(resting) {
		return false
	}
	lg.grid = lg.grid.Place(lg.activeBlock)
	cleared, lines, _ := lg.grid.ClearFullRows()
	lg.grid = cleared
	lg.stats = lg.stats.withClear(lines).deriveFrom(lg.grid)
	return true
}

// Drop moves the active block straight down to its resting row without
// committing it; a following CommitIfLanded call merges it into the grid.
func (lg *LiveGame) Drop() {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	if lg.gameOver {
		return
	}
	for {
		next := lg.activeBlock
		next.Row++
		if !lg.grid.Fits(next) {
			return
		}
		lg.activeBlock = next
	}
}

// Snapshot returns a value-copied view of the whole game under a single
// lock acquisition, for callers (loggers, renderers) that need a
// consistent point-in-time read of more than one field.
type Snapshot struct {
	Grid        board.Grid
	ActiveBlock board.Block
	GameOver    bool
	Stats       Stats
}

// Snapshot returns the current state of lg as a single consistent value.
func (lg *LiveGame) Snapshot() Snapshot {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return Snapshot{
		Grid:        lg.grid,
		ActiveBlock: lg.activeBlock,
		GameOver:    lg.gameOver,
		Stats:       lg.stats,
	}
}
