package actuator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/config"
	"github.com/stackedcrooked/tetris-ai/game"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

// fixedPathSource publishes a constant best path, standing in for a
// NodeCalculator in tests that only need BlockMover's reaction to one
// target placement.
type fixedPathSource struct {
	path []game.GameState
}

func (f fixedPathSource) CurrentBestPath() []game.GameState { return f.path }

func pathTargeting(t *testing.T, block board.Block) []game.GameState {
	t.Helper()
	root := game.New(10, 20)
	children := root.Children(block.Type, nil)
	for _, c := range children {
		if c.Block.Rotation == block.Rotation && c.Block.Col == block.Col {
			return []game.GameState{root, c.Next}
		}
	}
	t.Fatalf("no child placement matches rotation=%v col=%d", block.Rotation, block.Col)
	return nil
}

func TestTickMovesColumnBeforeDropping(t *testing.T) {
	live := game.NewLiveGame(10, 20)
	live.SetActiveBlock(board.Block{Type: tetromino.O, Rotation: tetromino.R0, Row: 0, Col: 0})

	target := board.Block{Type: tetromino.O, Rotation: tetromino.R0, Col: 4}
	mover := NewBlockMover(live, config.MoveDownMove)
	mover.SetSource(fixedPathSource{path: pathTargeting(t, target)})

	mover.Tick()
	assert.Equal(t, 1, live.ActiveBlock().Col)
}

func TestTickRotatesBeforeMovingColumn(t *testing.T) {
	live := game.NewLiveGame(10, 20)
	live.SetActiveBlock(board.Block{Type: tetromino.J, Rotation: tetromino.R0, Row: 0, Col: 0})

	target := board.Block{Type: tetromino.J, Rotation: tetromino.R180, Col: 5}
	mover := NewBlockMover(live, config.MoveDownMove)
	mover.SetSource(fixedPathSource{path: pathTargeting(t, target)})

	mover.Tick()
	assert.NotEqual(t, tetromino.R0, live.ActiveBlock().Rotation)
	assert.Equal(t, 0, live.ActiveBlock().Col, "column should not move until rotation matches")
}

func TestTickIsNoOpWithoutSource(t *testing.T) {
	live := game.NewLiveGame(10, 20)
	live.SetActiveBlock(board.Block{Type: tetromino.O, Row: 0, Col: 0})
	mover := NewBlockMover(live, config.MoveDownMove)
	require.NotPanics(t, mover.Tick)
}

func TestTickIsNoOpWhenTargetPieceAlreadyCommitted(t *testing.T) {
	live := game.NewLiveGame(10, 20)
	live.SetActiveBlock(board.Block{Type: tetromino.T, Row: 0, Col: 2})

	target := board.Block{Type: tetromino.O, Rotation: tetromino.R0, Col: 4}
	mover := NewBlockMover(live, config.MoveDownMove)
	mover.SetSource(fixedPathSource{path: pathTargeting(t, target)})

	before := live.ActiveBlock()
	mover.Tick()
	assert.Equal(t, before, live.ActiveBlock())
}
