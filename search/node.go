// Package search implements the layered, best-first game-tree search: an
// arena of SearchNodes, a WorkerPool of FIFO-queued worker goroutines, and
// the NodeCalculator that coordinates layer-by-layer expansion and global
// top-W pruning across them.
package search

import (
	"sort"
	"sync"

	"github.com/stackedcrooked/tetris-ai/board"
	"github.com/stackedcrooked/tetris-ai/game"
)

// nodeID indexes into a calculator's node arena. The zero value never
// refers to a real node; the root is always id 1.
type nodeID int32

const noParent nodeID = -1

// searchNode is one vertex of the search tree. Nodes are never freed
// individually; the whole arena is dropped when the calculator that owns
// it is discarded. A node's children are stored as ids into the same
// arena, sorted by descending quality, rather than as pointers. Pruning
// removes nothing: a node that does not survive its layer stays in the
// arena and in its parent's children slice until the arena is dropped.
type searchNode struct {
	id       nodeID
	parent   nodeID
	depth    int
	state    game.GameState
	block    board.Block // the placement that produced this node; zero for the root
	quality  int
	children []nodeID
}

// arena owns every searchNode ever created during one calculator run, and
// the single mutex that serializes every mutation of it. Many worker
// goroutines expand distinct parents concurrently within a layer, so
// appends (which can reallocate the backing slice) and per-parent
// children-list updates all go through this lock rather than through
// pointers handed out to callers — a pointer into a growable slice would
// go stale the instant another goroutine's append reallocates it.
type arena struct {
	mu    sync.Mutex
	nodes []searchNode
}

func newArena() *arena {
	// id 0 is reserved/unused so the zero nodeID can serve as a sentinel.
	return &arena{nodes: make([]searchNode, 1, 64)}
}

// addRoot inserts n (expected to have no parent) before any concurrent
// access begins; it is only ever called once, from NewCalculator.
func (a *arena) addRoot(n searchNode) nodeID {
	n.id = nodeID(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return n.id
}

// addChild appends n to the arena and records its id on parentID's
// children list, atomically with respect to every other goroutine calling
// addChild concurrently.
func (a *arena) addChild(parentID nodeID, n searchNode) nodeID {
	a.mu.Lock()
	defer a.mu.Unlock()
	n.id = nodeID(len(a.nodes))
	n.parent = parentID
	a.nodes = append(a.nodes, n)
	a.nodes[parentID].children = append(a.nodes[parentID].children, n.id)
	return n.id
}

// node returns a value copy of the node at id, safe to read after
// concurrent addChild calls elsewhere have returned.
func (a *arena) node(id nodeID) searchNode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nodes[id]
}

// count returns the number of nodes in the arena, including the reserved
// id 0.
func (a *arena) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodes)
}

func (a *arena) quality(id nodeID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nodes[id].quality
}

// sortChildrenByQuality orders id's children by strictly descending
// quality, ties broken by insertion order (sort.SliceStable preserves the
// slice's existing relative order, which is insertion order). Called only
// from the single coordinator goroutine after a layer's barrier, so no
// concurrent addChild calls can be in flight.
func (a *arena) sortChildrenByQuality(id nodeID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	children := a.nodes[id].children
	sort.SliceStable(children, func(i, j int) bool {
		return a.nodes[children[i]].quality > a.nodes[children[j]].quality
	})
}

// path walks parent links from id back to the root and returns the
// GameStates in root-to-id order.
func (a *arena) path(id nodeID) []game.GameState {
	a.mu.Lock()
	defer a.mu.Unlock()
	var reversed []game.GameState
	for cur := id; cur != noParent && cur != 0; cur = a.nodes[cur].parent {
		reversed = append(reversed, a.nodes[cur].state)
	}
	out := make([]game.GameState, len(reversed))
	for i, s := range reversed {
		out[len(out)-1-i] = s
	}
	return out
}
