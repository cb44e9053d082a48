// Package game implements the immutable board-transition semantics the
// search operates over (GameState), the pluggable quality function
// (Evaluator), and the mutable, mutex-guarded live game a BlockMover
// actuates (LiveGame).
package game

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

// GameState is an immutable, post-placement board snapshot plus the stats
// accumulated to reach it. Once constructed, a GameState is never mutated;
// every transition in Children produces a new GameState.
type GameState struct {
	grid      board.Grid
	lastBlock board.Block
	stats     Stats

	cache *qualityCache
}

// qualityCache memoizes the scalar quality of a GameState per Evaluator
// identity. It is shared by pointer across value copies of one GameState,
// since the board and stats never change once computed — only the set of
// evaluators that have scored it grows. Every state produced by Children
// starts with a fresh, empty cache.
type qualityCache struct {
	mu     sync.RWMutex
	values map[string]int
	group  singleflight.Group
}

func newQualityCache() *qualityCache {
	return &qualityCache{values: make(map[string]int)}
}

// New returns the root GameState for an empty grid of the given
// dimensions.
func New(width, height int) GameState {
	return GameState{
		grid:  board.New(width, height),
		stats: Stats{}.deriveFrom(board.New(width, height)),
		cache: newQualityCache(),
	}
}

// FromGrid returns a root GameState seeded from an externally tracked grid
// and stats, for restarting a search mid-game from a LiveGame's current
// board rather than an empty one.
func FromGrid(grid board.Grid, stats Stats) GameState {
	return GameState{grid: grid, stats: stats, cache: newQualityCache()}
}

// Grid returns the current board.
func (s GameState) Grid() board.Grid { return s.grid }

// LastBlock returns the placement that produced this state. The zero
// Block for the root state.
func (s GameState) LastBlock() board.Block { return s.lastBlock }

// Stats returns the cumulative counters and derived heuristics.
func (s GameState) Stats() Stats { return s.stats }

// Transition is one legal placement of a piece from a GameState, and the
// GameState it produces.
type Transition struct {
	Block        board.Block
	LinesCleared int
	Next         GameState
}

// Children enumerates every legal placement of piece `t` on s's grid: for
// each of the piece's distinct rotations, for each column the rotated
// mask can occupy, the drop row reachable by gravity alone. Each
// placement yields one Transition. If no legal placement exists (the
// piece cannot be placed anywhere), Children returns nil — the caller's
// subtree is terminal along this path.
//
// checkInterrupt is polled once per column tried (spec.md §4.4: long scan
// loops must poll the worker pool's interrupt flag at least once per
// column iteration); pass a function that always returns false if no
// cooperative cancellation is needed.
func (s GameState) Children(t tetromino.Type, checkInterrupt func() bool) []Transition {
	var out []Transition
	for r := 0; r < tetromino.DistinctRotations(t); r++ {
		rot := tetromino.Rotation(r)
		for _, col := range s.grid.LegalColumns(t, rot) {
			if checkInterrupt != nil && checkInterrupt() {
				return out
			}
			row, ok := s.grid.DropRow(t, rot, col)
			if !ok {
				continue
			}
			block := board.Block{Type: t, Rotation: rot, Row: row, Col: col}
			placed := s.grid.Place(block)
			cleared, lines, _ := placed.ClearFullRows()
			next := GameState{
				grid:      cleared,
				lastBlock: block,
				stats:     s.stats.withClear(lines).deriveFrom(cleared),
				cache:     newQualityCache(),
			}
			out = append(out, Transition{Block: block, LinesCleared: lines, Next: next})
		}
	}
	return out
}

// Quality returns s's scalar quality under ev, computing and memoizing it
// on first use. Concurrent callers requesting the same (state, evaluator)
// pair collapse onto a single evaluation via singleflight, since many
// sibling search tasks may score a shared ancestor while comparing
// candidates during pruning.
func (s GameState) Quality(ev Evaluator) int {
	key := ev.ID()
	s.cache.mu.RLock()
	if v, ok := s.cache.values[key]; ok {
		s.cache.mu.RUnlock()
		return v
	}
	s.cache.mu.RUnlock()

	v, _, _ := s.cache.group.Do(key, func() (interface{}, error) {
		s.cache.mu.RLock()
		if cached, ok := s.cache.values[key]; ok {
			s.cache.mu.RUnlock()
			return cached, nil
		}
		s.cache.mu.RUnlock()

		computed := ev.Evaluate(s)
		s.cache.mu.Lock()
		s.cache.values[key] = computed
		s.cache.mu.Unlock()
		return computed, nil
	})
	return v.(int)
}
