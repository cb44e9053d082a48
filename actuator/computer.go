package actuator

import (
	"errors"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog/log"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/config"
	"github.com/stackedcrooked/tetris-ai/game"
	"github.com/stackedcrooked/tetris-ai/queue"
	"github.com/stackedcrooked/tetris-ai/search"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

// spawnRow and spawnRotation are the classic values every spawned piece
// starts at; only its column depends on the board width.
const spawnRow = 0

var spawnRotation = tetromino.R0

// Computer is the facade that binds a LiveGame, a piece generator, a
// WorkerPool, and a BlockMover into a running AI: every time the active
// piece lands, it spawns the next one and restarts a NodeCalculator over
// the freshly committed board, then steers the new active piece toward
// that calculator's published best path one tick at a time.
type Computer struct {
	mu sync.Mutex

	live      *game.LiveGame
	pool      *search.WorkerPool
	cfg       config.Config
	evaluator game.Evaluator
	nextPiece queue.Generator

	mover      *BlockMover
	moverTimer *Timer

	calc *search.NodeCalculator
}

// NewComputer constructs a Computer over live, ready to drive it once
// Start is called. pieceGen supplies piece types the same way it would to
// an external bag shuffler; cfg.Workers workers are started immediately.
func NewComputer(live *game.LiveGame, cfg config.Config, evaluator game.Evaluator, pieceGen queue.Generator) *Computer {
	c := &Computer{
		live:      live,
		pool:      search.NewWorkerPool(cfg.Workers),
		cfg:       cfg,
		evaluator: evaluator,
		nextPiece: pieceGen,
	}
	c.mover = NewBlockMover(live, cfg.MoveDownBehavior)
	c.moverTimer = NewTimer(0, tickPeriod(cfg.MoverSpeed))
	return c
}

func tickPeriod(speed int) time.Duration {
	if speed < 1 {
		speed = 1
	}
	return time.Second / time.Duration(speed)
}

// ErrSpawnBlocked is returned by Start if the very first piece cannot be
// placed on the board at all, e.g. the configured grid is narrower than
// every piece's spawn footprint.
var ErrSpawnBlocked = errors.New("tetris-ai: initial spawn is blocked")

// Start spawns the first piece, launches a search over it, and begins
// ticking the BlockMover. Start may only be called once.
func (c *Computer) Start() error {
	c.mu.Lock()
	if !c.spawnNextLocked() {
		c.mu.Unlock()
		return ErrSpawnBlocked
	}
	c.restartCalculatorLocked()
	c.mu.Unlock()

	c.moverTimer.Start(c.tick)
	return nil
}

// Stop halts the mover timer and any in-flight search. The underlying
// LiveGame is left exactly as it was at the moment of the last completed
// tick.
func (c *Computer) Stop() {
	c.moverTimer.Stop()
	c.mu.Lock()
	if c.calc != nil {
		c.calc.Stop()
	}
	c.mu.Unlock()
}

func (c *Computer) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.live.GameOver() {
		return
	}
	c.mover.Tick()
	if !c.live.CommitIfLanded() {
		return
	}
	if c.live.GameOver() {
		return
	}
	if !c.spawnNextLocked() {
		return
	}
	c.restartCalculatorLocked()
}

// spawnNextLocked draws the next piece and installs it as the live game's
// active block, centered on the board. Returns false if the spawn itself
// is already blocked (game over).
func (c *Computer) spawnNextLocked() bool {
	t := c.nextPiece()
	width := c.live.Grid().Width()
	col := width/2 - 2
	c.live.SetActiveBlock(board.Block{Type: t, Rotation: spawnRotation, Row: spawnRow, Col: col})
	return !c.live.GameOver()
}

// restartCalculatorLocked stops any running search, snapshots a fresh
// piece queue starting with the piece that was just spawned, and starts a
// new NodeCalculator over the live game's current board. Starting a
// calculator can transiently fail with search.ErrPoolDraining while the
// previous search's WorkerPool is still draining interrupted tasks;
// retry.Do absorbs that window with a short bounded backoff rather than
// giving up immediately, matching how flaky external calls are retried
// elsewhere in the teacher pack.
func (c *Computer) restartCalculatorLocked() {
	if c.calc != nil {
		c.calc.Stop()
	}

	snap := c.live.Snapshot()
	active := snap.ActiveBlock.Type
	drawn := false
	gen := func() tetromino.Type {
		if !drawn {
			drawn = true
			return active
		}
		return c.nextPiece()
	}
	pieces, err := queue.Snapshot(gen, c.cfg.Depth)
	if err != nil {
		log.Error().Err(err).Msg("computer-queue-snapshot-failed")
		return
	}

	root := game.FromGrid(snap.Grid, snap.Stats)

	var calc *search.NodeCalculator
	err = retry.Do(
		func() error {
			var buildErr error
			calc, buildErr = search.NewCalculator(root, pieces, c.cfg.Widths, c.evaluator, c.pool, search.PruneGlobal)
			if buildErr != nil {
				return retry.Unrecoverable(buildErr)
			}
			startErr := calc.Start()
			if startErr != nil && !errors.Is(startErr, search.ErrPoolDraining) {
				return retry.Unrecoverable(startErr)
			}
			return startErr
		},
		retry.Attempts(5),
		retry.Delay(2*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
	)
	if err != nil {
		log.Error().Err(err).Msg("computer-calculator-restart-failed")
		return
	}

	c.calc = calc
	c.mover.SetSource(calc)
}
