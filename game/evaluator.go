package game

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Kind tags the small, closed set of Evaluator variants this package
// ships, per the design note favoring tagged variants over a virtual
// dispatch hierarchy (spec.md §9).
type Kind uint8

const (
	// Balanced penalizes height, holes and bumpiness, and rewards line
	// clears. It is the general-purpose default.
	Balanced Kind = iota
	// TetrisSeeking additionally penalizes filling the right-most column
	// unless a four-line clear is immediately available, to bias play
	// toward stacking for tetrises.
	TetrisSeeking
	// Scripted delegates quality to an embedded Lua function, letting an
	// embedder tune weights without recompiling.
	Scripted
)

func (k Kind) String() string {
	switch k {
	case Balanced:
		return "balanced"
	case TetrisSeeking:
		return "tetris-seeking"
	case Scripted:
		return "scripted"
	default:
		return "unknown"
	}
}

// Evaluator is a pure, stateless, concurrency-safe scalar quality
// function over a GameState: higher is better. Implementations must not
// be swapped mid-search — a NodeCalculator captures its Evaluator when
// NewCalculator constructs it and uses it for the lifetime of the search.
type Evaluator interface {
	// Kind identifies which variant this is.
	Kind() Kind
	// ID is a stable identity string used to key GameState's quality
	// cache; two Evaluator values that could ever score a shared
	// GameState differently must return different IDs.
	ID() string
	// Evaluate computes the quality of s. Must be safe to call
	// concurrently from multiple goroutines.
	Evaluate(s GameState) int
}

// Balanced evaluator weights. These are the qualitative defaults this
// module ships; spec.md mandates only the qualitative behavior (penalize
// height/holes/bumpiness, reward clears), not a canonical weight set.
const (
	balancedHeightWeight    = -4
	balancedHoleWeight      = -24
	balancedBumpinessWeight = -2
	balancedClearWeight     = 8
)

type balancedEvaluator struct{}

// NewBalanced returns the balanced Evaluator.
func NewBalanced() Evaluator { return balancedEvaluator{} }

func (balancedEvaluator) Kind() Kind   { return Balanced }
func (balancedEvaluator) ID() string   { return "balanced" }
func (balancedEvaluator) Evaluate(s GameState) int {
	st := s.Stats()
	return balancedHeightWeight*st.AggregateHeight +
		balancedHoleWeight*st.HoleCount +
		balancedBumpinessWeight*st.Bumpiness +
		balancedClearWeight*st.LinesCleared
}

// Tetris-seeking evaluator weights, tunable and explicitly non-canonical
// (spec.md §9 Open Question 2).
const (
	tetrisSeekingRightColumnPenalty = -40
	tetrisSeekingTetrisBonus        = 200
)

type tetrisSeekingEvaluator struct {
	base Evaluator
}

// NewTetrisSeeking returns an Evaluator that otherwise scores like
// Balanced but penalizes filling the right-most column unless a
// four-line clear is available this placement.
func NewTetrisSeeking() Evaluator {
	return tetrisSeekingEvaluator{base: balancedEvaluator{}}
}

func (tetrisSeekingEvaluator) Kind() Kind { return TetrisSeeking }
func (tetrisSeekingEvaluator) ID() string { return "tetris-seeking" }

func (e tetrisSeekingEvaluator) Evaluate(s GameState) int {
	score := e.base.Evaluate(s)
	st := s.Stats()
	rightCol := s.Grid().Width() - 1
	heights := s.Grid().ColumnHeights()
	if st.Tetrises > 0 {
		score += tetrisSeekingTetrisBonus
	} else if heights[rightCol] > 0 {
		score += tetrisSeekingRightColumnPenalty
	}
	return score
}

// scriptedEvaluator runs a Lua script once per Evaluate call. *lua.LState
// is not safe for concurrent use, so each call gets its own fresh state
// rather than sharing one across goroutines.
type scriptedEvaluator struct {
	id     string
	source string
}

// NewScripted compiles no code up front; it validates that source parses
// by running it once against an empty GameState-shaped table, and returns
// an Evaluator that re-runs source on every Evaluate call. id must be
// unique per distinct script for GameState's quality cache to key
// correctly.
func NewScripted(id, source string) (Evaluator, error) {
	e := scriptedEvaluator{id: id, source: source}
	if _, err := e.run(Stats{}); err != nil {
		return nil, fmt.Errorf("tetris-ai: invalid evaluator script %q: %w", id, err)
	}
	return e, nil
}

func (e scriptedEvaluator) Kind() Kind { return Scripted }
func (e scriptedEvaluator) ID() string { return "scripted:" + e.id }

func (e scriptedEvaluator) Evaluate(s GameState) int {
	v, err := e.run(s.Stats())
	if err != nil {
		// A script that fails at runtime after having validated at
		// construction is a programmer error in the embedder's script;
		// score it as the worst possible quality rather than panicking
		// inside a search worker.
		return -1 << 30
	}
	return v
}

func (e scriptedEvaluator) run(st Stats) (int, error) {
	L := lua.NewState()
	defer L.Close()

	stats := L.NewTable()
	stats.RawSetString("singles", lua.LNumber(st.Singles))
	stats.RawSetString("doubles", lua.LNumber(st.Doubles))
	stats.RawSetString("triples", lua.LNumber(st.Triples))
	stats.RawSetString("tetrises", lua.LNumber(st.Tetrises))
	stats.RawSetString("lines_cleared", lua.LNumber(st.LinesCleared))
	stats.RawSetString("score", lua.LNumber(st.Score))
	stats.RawSetString("max_column_height", lua.LNumber(st.MaxColumnHeight))
	stats.RawSetString("hole_count", lua.LNumber(st.HoleCount))
	stats.RawSetString("aggregate_height", lua.LNumber(st.AggregateHeight))
	stats.RawSetString("bumpiness", lua.LNumber(st.Bumpiness))
	stats.RawSetString("column_variance", lua.LNumber(st.ColumnVariance))
	L.SetGlobal("stats", stats)

	if err := L.DoString(e.source); err != nil {
		return 0, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	num, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("script must leave a number on the stack, got %s", ret.Type())
	}
	return int(num), nil
}
