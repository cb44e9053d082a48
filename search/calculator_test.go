package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackedcrooked/tetris-ai/boardhash"
	"github.com/stackedcrooked/tetris-ai/game"
	"github.com/stackedcrooked/tetris-ai/queue"
	"github.com/stackedcrooked/tetris-ai/tetromino"
)

func waitForStatus(t *testing.T, c *NodeCalculator, want Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Status() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, want, c.Status())
}

func fixedQueue(t *testing.T, pieces ...tetromino.Type) queue.PieceQueue {
	i := 0
	gen := func() tetromino.Type {
		p := pieces[i%len(pieces)]
		i++
		return p
	}
	q, err := queue.Snapshot(gen, len(pieces))
	require.NoError(t, err)
	return q
}

func TestNewCalculatorRejectsPerParentPruning(t *testing.T) {
	root := game.New(10, 20)
	pool := NewWorkerPool(2)
	defer pool.Resize(0)
	_, err := NewCalculator(root, fixedQueue(t, tetromino.O), []int{8}, game.NewBalanced(), pool, PrunePerParent)
	assert.ErrorIs(t, err, ErrUnsupportedPruning)
}

func TestCalculatorRunsToFinishedAndPublishesProgress(t *testing.T) {
	root := game.New(10, 20)
	pool := NewWorkerPool(4)
	defer pool.Resize(0)

	q := fixedQueue(t, tetromino.O, tetromino.I, tetromino.T)
	calc, err := NewCalculator(root, q, []int{8, 8, 8}, game.NewBalanced(), pool, PruneGlobal)
	require.NoError(t, err)

	require.NoError(t, calc.Start())
	waitForStatus(t, calc, StatusFinished)

	assert.Equal(t, 3, calc.CurrentDepth())
	path := calc.CurrentBestPath()
	require.Len(t, path, 4) // root + 3 layers
	assert.Greater(t, path[3].Quality(game.NewBalanced()), path[0].Quality(game.NewBalanced()))
}

func TestCalculatorStopIsGraceful(t *testing.T) {
	root := game.New(10, 20)
	pool := NewWorkerPool(2)
	defer pool.Resize(0)

	pieces := make([]tetromino.Type, 0, len(tetromino.NonemptyTypes)*2)
	for i := 0; i < 2; i++ {
		pieces = append(pieces, tetromino.NonemptyTypes[:]...)
	}
	q := fixedQueue(t, pieces...)
	widths := make([]int, q.Len())
	for i := range widths {
		widths[i] = 64
	}
	calc, err := NewCalculator(root, q, widths, game.NewBalanced(), pool, PruneGlobal)
	require.NoError(t, err)
	require.NoError(t, calc.Start())

	calc.Stop()
	waitForStatus(t, calc, StatusFinished)
}

// TestCalculatorResultIsDeterministicAcrossWorkerCounts checks the search's
// one testable determinism property: global top-W pruning with stable
// ties means the winning path depends only on the pieces and widths, never
// on how many workers happened to race through expanding each layer.
// boardhash fingerprints the final board so two runs can be compared
// without a field-by-field Grid equality check.
func TestCalculatorResultIsDeterministicAcrossWorkerCounts(t *testing.T) {
	pieces := []tetromino.Type{tetromino.O, tetromino.I, tetromino.T, tetromino.S}
	widths := []int{16, 16, 16, 16}
	table := boardhash.NewTable(10, 20)

	var hashes []uint64
	for _, workers := range []int{1, 4} {
		root := game.New(10, 20)
		pool := NewWorkerPool(workers)
		q := fixedQueue(t, pieces...)
		calc, err := NewCalculator(root, q, widths, game.NewBalanced(), pool, PruneGlobal)
		require.NoError(t, err)
		require.NoError(t, calc.Start())
		waitForStatus(t, calc, StatusFinished)

		path := calc.CurrentBestPath()
		final := path[len(path)-1]
		hashes = append(hashes, table.Hash(final.Grid(), final.LastBlock().Type))
		pool.Resize(0)
	}

	assert.Equal(t, hashes[0], hashes[1], "winning board should be identical regardless of worker count")
}

func TestExportDOTProducesNonEmptyGraph(t *testing.T) {
	root := game.New(6, 12)
	pool := NewWorkerPool(2)
	defer pool.Resize(0)
	calc, err := NewCalculator(root, fixedQueue(t, tetromino.O), []int{8}, game.NewBalanced(), pool, PruneGlobal)
	require.NoError(t, err)
	require.NoError(t, calc.Start())
	waitForStatus(t, calc, StatusFinished)

	dot, err := calc.ExportDOT()
	require.NoError(t, err)
	assert.Contains(t, dot, "digraph")
}
