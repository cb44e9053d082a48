package search

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/awalterschulze/gographviz"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/stackedcrooked/tetris-ai/game"
	"github.com/stackedcrooked/tetris-ai/queue"
	"github.com/stackedcrooked/tetris-ai/syncutil"
)

// throughputLogInterval is how often a running search logs its worker
// pool's tasks-per-second throughput.
const throughputLogInterval = time.Second

// Status is a NodeCalculator's lifecycle stage. Transitions only ever move
// forward through this list, except that Start puts a calculator back to
// StatusInitial when the pool cannot take the search; Error and Finished
// are both terminal.
type Status int32

const (
	StatusInitial Status = iota
	StatusStarting
	StatusWorking
	StatusStopping
	StatusFinished
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "initial"
	case StatusStarting:
		return "starting"
	case StatusWorking:
		return "working"
	case StatusStopping:
		return "stopping"
	case StatusFinished:
		return "finished"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// PruningPolicy selects how a layer's survivors are chosen. PruneGlobal —
// the global top W[d+1] nodes across the entire layer, regardless of which
// parent produced them — is this calculator's only supported policy: it is
// the search's defining property (width shrinks aggressively, depth grows)
// and the per-parent alternative was considered and rejected (see the
// project's design notes).
type PruningPolicy int

const (
	PruneGlobal PruningPolicy = iota
	PrunePerParent
)

// ErrUnsupportedPruning is returned by NewCalculator when asked for a
// pruning policy other than PruneGlobal.
var ErrUnsupportedPruning = errors.New("tetris-ai: only global top-W pruning is supported")

// ErrPoolDraining is returned by Start if the WorkerPool still has tasks
// in flight from a previous search that has not finished draining, or has
// no workers at all.
var ErrPoolDraining = errors.New("tetris-ai: worker pool is still draining a previous search")

// NodeCalculator coordinates a layer-by-layer, best-first expansion of a
// root GameState against a snapshotted PieceQueue, pruning each layer down
// to its configured width before moving to the next.
type NodeCalculator struct {
	arena  *arena
	rootID nodeID

	pieces    queue.PieceQueue
	widths    []int
	evaluator game.Evaluator
	pool      *WorkerPool

	status atomic.Int32

	currentDepth atomic.Int32
	bestPath     *syncutil.Synchronized[[]game.GameState]

	errMu sync.Mutex
	err   *multierror.Error

	runDone chan struct{}
}

// NewCalculator constructs a calculator over root, ready to search
// pieces[0..depth) where depth = pieces.Len(), pruning layer d+1 down to
// widths[d] survivors. policy must be PruneGlobal.
func NewCalculator(root game.GameState, pieces queue.PieceQueue, widths []int, ev game.Evaluator, pool *WorkerPool, policy PruningPolicy) (*NodeCalculator, error) {
	if policy != PruneGlobal {
		return nil, ErrUnsupportedPruning
	}
	a := newArena()
	rootID := a.addRoot(searchNode{parent: noParent, depth: 0, state: root, quality: root.Quality(ev)})
	c := &NodeCalculator{
		arena:     a,
		rootID:    rootID,
		pieces:    pieces,
		widths:    widths,
		evaluator: ev,
		pool:      pool,
		bestPath:  syncutil.NewSynchronized([]game.GameState{root}),
		runDone:   make(chan struct{}),
	}
	c.status.Store(int32(StatusInitial))
	return c, nil
}

// Status returns the calculator's current lifecycle stage.
func (c *NodeCalculator) Status() Status {
	return Status(c.status.Load())
}

// ErrorMessage returns the aggregated worker-failure text once Status is
// StatusError; empty otherwise.
func (c *NodeCalculator) ErrorMessage() string {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		return ""
	}
	return c.err.Error()
}

// CurrentDepth returns the greatest layer fully completed so far.
func (c *NodeCalculator) CurrentDepth() int {
	return int(c.currentDepth.Load())
}

// CurrentBestPath returns the GameStates from root to the top-ranked
// survivor of the deepest completed layer, inclusive. The returned slice is
// a past publication's value and is never mutated after being published, so
// it's safe to hand out without copying.
func (c *NodeCalculator) CurrentBestPath() []game.GameState {
	return c.bestPath.Get()
}

// Start launches the search on a new goroutine and returns immediately.
// Start may only be called once per calculator; construct a fresh
// NodeCalculator (over a fresh WorkerPool or the same drained one) to run
// another search.
func (c *NodeCalculator) Start() error {
	if !c.status.CompareAndSwap(int32(StatusInitial), int32(StatusStarting)) {
		return fmt.Errorf("tetris-ai: calculator already started")
	}
	if c.pool.Size() == 0 || c.pool.inFlight.Load() > 0 {
		// No run() goroutine is going to start, so leave status where Stop
		// can recognize it as never-started rather than hanging on runDone.
		c.status.Store(int32(StatusInitial))
		return ErrPoolDraining
	}
	// A pool is reused across successive searches (Computer restarts a
	// calculator on the same pool every time a piece lands), and a prior
	// search's Stop left the pool's cancellation flag set; clear it before
	// this search schedules a single task, or every expandLayer call would
	// see ShouldInterrupt true from its very first layer and expand nothing.
	c.pool.ResetInterrupt()
	c.pool.StartThroughputLogging(throughputLogInterval)
	go c.run()
	return nil
}

// Stop requests cooperative cancellation and blocks until the coordinator
// goroutine has actually returned: workers finish or abandon their current
// task, no further layers begin, and Status becomes StatusFinished (not
// StatusError — cancellation is graceful) before Stop returns.
func (c *NodeCalculator) Stop() {
	if Status(c.status.Load()) == StatusInitial {
		return
	}
	c.status.CompareAndSwap(int32(StatusStarting), int32(StatusStopping))
	c.status.CompareAndSwap(int32(StatusWorking), int32(StatusStopping))
	c.pool.InterruptAndClear()
	<-c.runDone
}

func (c *NodeCalculator) run() {
	defer close(c.runDone)
	// Stop() may race ahead of this goroutine's first tick and already have
	// moved status to Stopping; only claim Working if it is still where
	// Start() left it, so a racing Stop() is never clobbered back to
	// Working.
	c.status.CompareAndSwap(int32(StatusStarting), int32(StatusWorking))
	defer c.pool.StopThroughputLogging()
	survivors := []nodeID{c.rootID}

	for d := 0; d < c.pieces.Len(); d++ {
		if c.pool.ShouldInterrupt() {
			break
		}
		next, err := c.expandLayer(d, survivors)
		if err != nil {
			c.errMu.Lock()
			c.err = multierror.Append(c.err, err)
			c.errMu.Unlock()
			c.status.Store(int32(StatusError))
			return
		}
		survivors = next
		c.publish(d+1, survivors)
		if len(survivors) == 0 {
			break
		}
	}

	if c.status.Load() == int32(StatusStopping) {
		c.status.Store(int32(StatusFinished))
		return
	}
	c.status.CompareAndSwap(int32(StatusWorking), int32(StatusFinished))
}

// expandLayer generates, evaluates, and globally prunes depth d+1's
// children of every surviving node at depth d. Each survivor's expansion
// runs as one WorkerPool task, fanned out and awaited through an
// errgroup.Group — mirroring the teacher's lazy-SMP iterative-deepening
// barrier — so no depth-(d+1) work starts until every depth-d task has
// finished, been interrupted, or (via ScheduleAndWait's panic recovery)
// failed.
func (c *NodeCalculator) expandLayer(d int, survivors []nodeID) ([]nodeID, error) {
	piece := c.pieces.At(d)

	perParent := make([][]nodeID, len(survivors))

	var g errgroup.Group
	for i, parentID := range survivors {
		i, parentID := i, parentID
		g.Go(func() error {
			return c.pool.ScheduleAndWait(func() error {
				parentState := c.arena.node(parentID).state
				transitions := parentState.Children(piece, c.pool.ShouldInterrupt)

				var childIDs []nodeID
				for _, tr := range transitions {
					if c.pool.ShouldInterrupt() {
						break
					}
					id := c.arena.addChild(parentID, searchNode{
						depth:   d + 1,
						state:   tr.Next,
						block:   tr.Block,
						quality: tr.Next.Quality(c.evaluator),
					})
					childIDs = append(childIDs, id)
				}

				perParent[i] = childIDs
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		// A task dropped, still queued, by an InterruptAndClear surfaces
		// here as ErrInterrupted — that is Stop() doing its job, not a
		// worker failure, so it ends this layer the same way ShouldInterrupt
		// does below rather than tripping run() into StatusError.
		if errors.Is(err, ErrInterrupted) {
			return nil, nil
		}
		return nil, err
	}

	for _, parentID := range survivors {
		c.arena.sortChildrenByQuality(parentID)
	}

	if c.pool.ShouldInterrupt() {
		return nil, nil
	}

	// Concatenate in survivor order, each parent's children in enumeration
	// order, so ties are broken the same way whatever order tasks finished in.
	var candidates []nodeID
	for _, ids := range perParent {
		candidates = append(candidates, ids...)
	}

	width := c.widths[d]
	return c.globalTopW(candidates, width), nil
}

// globalTopW sorts candidates by descending quality (ties broken by their
// existing relative order — sort.SliceStable preserves insertion order)
// and keeps the first width of them.
func (c *NodeCalculator) globalTopW(candidates []nodeID, width int) []nodeID {
	sort.SliceStable(candidates, func(i, j int) bool {
		return c.arena.quality(candidates[i]) > c.arena.quality(candidates[j])
	})
	if width >= len(candidates) {
		return candidates
	}
	return lo.Subset(candidates, 0, uint(width))
}

func (c *NodeCalculator) publish(depth int, survivors []nodeID) {
	if len(survivors) == 0 {
		return
	}
	best := survivors[0]
	for _, id := range survivors[1:] {
		if c.arena.quality(id) > c.arena.quality(best) {
			best = id
		}
	}
	path := c.arena.path(best)

	c.currentDepth.Store(int32(depth))
	c.bestPath.Set(path)
}

// ExportDOT renders the full search tree built so far as Graphviz DOT, for
// offline debugging of a run's pruning decisions. Not part of the hot
// path; safe to call once the calculator has finished or been stopped.
func (c *NodeCalculator) ExportDOT() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("search"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	for id := 1; id < c.arena.count(); id++ {
		n := c.arena.node(nodeID(id))
		name := fmt.Sprintf("n%d", n.id)
		attrs := map[string]string{"label": fmt.Sprintf("\"d=%d q=%d\"", n.depth, n.quality)}
		if err := g.AddNode("search", name, attrs); err != nil {
			return "", err
		}
		if n.parent != noParent && n.parent != 0 {
			if err := g.AddEdge(fmt.Sprintf("n%d", n.parent), name, true, nil); err != nil {
				return "", err
			}
		}
	}
	return g.String(), nil
}
