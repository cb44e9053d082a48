package actuator

import (
	"sync"
	"sync/atomic"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/config"
	"github.com/stackedcrooked/tetris-ai/game"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

// BestPathSource is whatever currently publishes a best path to steer
// toward — normally a *search.NodeCalculator, abstracted here so
// BlockMover does not import the search package directly.
type BestPathSource interface {
	CurrentBestPath() []game.GameState
}

// BlockMover periodically reads a BestPathSource's published path and
// drives a LiveGame one physical step closer to the target placement for
// its depth-1 state. It never touches the grid directly; every step goes
// through the live game's own input methods, which enforce legality.
type BlockMover struct {
	mu       sync.Mutex
	source   BestPathSource
	live     *game.LiveGame
	behavior atomic.Int32 // config.MoveDownBehavior
}

// NewBlockMover returns a BlockMover driving live from whatever path
// source is currently installed; call SetSource after each search restart.
func NewBlockMover(live *game.LiveGame, behavior config.MoveDownBehavior) *BlockMover {
	m := &BlockMover{live: live}
	m.behavior.Store(int32(behavior))
	return m
}

// SetSource installs the path source a subsequent Tick reads from. Called
// by Computer each time it restarts the NodeCalculator for a newly spawned
// piece.
func (m *BlockMover) SetSource(source BestPathSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = source
}

// SetMoveDownBehavior changes what Tick does once the active piece is
// already aligned on rotation and column.
func (m *BlockMover) SetMoveDownBehavior(b config.MoveDownBehavior) {
	m.behavior.Store(int32(b))
}

// Tick performs at most one physical move: a rotation step, a horizontal
// step, or the configured move-down action, whichever the active piece
// still needs to reach the target placement. If there is no published
// path yet, or the path's target piece type no longer matches the live
// active piece (it already committed), Tick is a no-op.
func (m *BlockMover) Tick() {
	m.mu.Lock()
	source := m.source
	m.mu.Unlock()
	if source == nil {
		return
	}
	path := source.CurrentBestPath()
	if len(path) < 2 {
		return
	}
	target := path[1].LastBlock()

	active := m.live.ActiveBlock()
	if active.Type != target.Type {
		return
	}

	if active.Rotation != target.Rotation {
		m.rotateToward(active, target)
		return
	}
	if active.Col != target.Col {
		if active.Col < target.Col {
			m.live.Move(0, 1)
		} else {
			m.live.Move(0, -1)
		}
		return
	}

	switch config.MoveDownBehavior(m.behavior.Load()) {
	case config.MoveDownMove:
		m.live.Move(1, 0)
	case config.MoveDownDrop:
		m.live.Drop()
	case config.MoveDownNone:
	}
}

// rotateToward emits a single rotation step toward target's orientation,
// taking the shorter of the clockwise/counterclockwise walk and ties
// breaking clockwise.
func (m *BlockMover) rotateToward(active, target board.Block) {
	n := tetromino.DistinctRotations(active.Type)
	clockwiseSteps := (int(target.Rotation) - int(active.Rotation) + n) % n
	counterSteps := n - clockwiseSteps
	m.live.Rotate(clockwiseSteps <= counterSteps)
}
