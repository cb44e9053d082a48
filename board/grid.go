// Package board implements the Tetris playing field: a fixed-size 2-D cell
// buffer with value semantics, and the placement rules (fits, place,
// clear-full-rows) that GameState transitions are built from.
package board

import (
	"fmt"
	"strings"

	"github.com/stackedcrooked/tetris-ai/tetromino"
)

// Grid is a fixed W x H buffer of piece tags. Grid is a value type: Set,
// Place and ClearFullRows return a new Grid rather than
// editing in place, so a Grid can be shared freely between GameStates
// without defensive copying by the caller.
type Grid struct {
	width, height int
	cells         []tetromino.Type
}

// New returns an empty grid of the given dimensions. width and height must
// both be positive; New panics otherwise, since a misconfigured grid is a
// programmer error caught at construction time by the config package, not
// a runtime condition a Grid user can recover from.
func New(width, height int) Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("board: invalid dimensions %dx%d", width, height))
	}
	return Grid{
		width:  width,
		height: height,
		cells:  make([]tetromino.Type, width*height),
	}
}

func (g Grid) Width() int  { return g.width }
func (g Grid) Height() int { return g.height }

func (g Grid) index(row, col int) int { return row*g.width + col }

func (g Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// IsEmpty reports whether (row, col) holds no piece. Coordinates outside
// the grid are never empty.
func (g Grid) IsEmpty(row, col int) bool {
	if !g.inBounds(row, col) {
		return false
	}
	return g.cells[g.index(row, col)] == tetromino.Empty
}

// At returns the tag occupying (row, col).
func (g Grid) At(row, col int) tetromino.Type {
	if !g.inBounds(row, col) {
		return tetromino.Empty
	}
	return g.cells[g.index(row, col)]
}

// Set returns a copy of g with (row, col) holding tag.
func (g Grid) Set(row, col int, tag tetromino.Type) Grid {
	out := g.clone()
	out.cells[out.index(row, col)] = tag
	return out
}

func (g Grid) clone() Grid {
	cells := make([]tetromino.Type, len(g.cells))
	copy(cells, g.cells)
	return Grid{width: g.width, height: g.height, cells: cells}
}

// Equal reports value equality of two grids.
func (g Grid) Equal(other Grid) bool {
	if g.width != other.width || g.height != other.height {
		return false
	}
	for i, c := range g.cells {
		if other.cells[i] != c {
			return false
		}
	}
	return true
}

// Block is a piece type placed at a rotation and a position. Row/Col is
// the offset of the 4x4 mask's top-left corner within the grid: the
// mask's own cells may therefore land outside [0, width) x [0, height)
// even though the piece's filled cells do not.
type Block struct {
	Type     tetromino.Type
	Rotation tetromino.Rotation
	Row, Col int
}

// cellsAt returns the absolute (row, col) grid coordinates of b's filled
// cells.
func (b Block) cellsAt() [][2]int {
	rel := tetromino.Cells(b.Type, b.Rotation)
	abs := make([][2]int, len(rel))
	for i, c := range rel {
		abs[i] = [2]int{b.Row + c[0], b.Col + c[1]}
	}
	return abs
}

// Fits reports whether every filled cell of b lands inside the grid and
// on an empty cell.
func (g Grid) Fits(b Block) bool {
	if b.Type == tetromino.Empty {
		return false
	}
	for _, c := range b.cellsAt() {
		if !g.inBounds(c[0], c[1]) {
			return false
		}
		if !g.IsEmpty(c[0], c[1]) {
			return false
		}
	}
	return true
}

// Place stamps b's mask onto the grid. Place requires Fits(b); it panics
// otherwise, since an illegal placement reaching Place is always a caller
// bug in this module (illegal-move rejection happens earlier, at the
// LiveGame/placement-enumeration boundary).
func (g Grid) Place(b Block) Grid {
	if !g.Fits(b) {
		panic(fmt.Sprintf("board: Place called with a non-fitting block %+v", b))
	}
	out := g.clone()
	for _, c := range b.cellsAt() {
		out.cells[out.index(c[0], c[1])] = b.Type
	}
	return out
}

// ClearFullRows removes every row whose cells are all non-Empty, shifting
// the rows above it downward by one for each row removed, and returns the
// resulting grid, the count of rows cleared, and their original indices
// (top-to-bottom, as they appeared before the shift).
func (g Grid) ClearFullRows() (result Grid, linesCleared int, clearedRows []int) {
	keep := make([]int, 0, g.height)
	for row := 0; row < g.height; row++ {
		if g.rowFull(row) {
			clearedRows = append(clearedRows, row)
			continue
		}
		keep = append(keep, row)
	}
	if len(clearedRows) == 0 {
		return g, 0, nil
	}
	out := New(g.width, g.height)
	destRow := g.height - 1
	for i := len(keep) - 1; i >= 0; i-- {
		srcRow := keep[i]
		for col := 0; col < g.width; col++ {
			out.cells[out.index(destRow, col)] = g.cells[g.index(srcRow, col)]
		}
		destRow--
	}
	return out, len(clearedRows), clearedRows
}

func (g Grid) rowFull(row int) bool {
	for col := 0; col < g.width; col++ {
		if g.IsEmpty(row, col) {
			return false
		}
	}
	return true
}

// ColumnHeights returns, for each column, the number of rows from the
// first occupied cell down to the floor (0 if the column is empty).
func (g Grid) ColumnHeights() []int {
	heights := make([]int, g.width)
	for col := 0; col < g.width; col++ {
		for row := 0; row < g.height; row++ {
			if !g.IsEmpty(row, col) {
				heights[col] = g.height - row
				break
			}
		}
	}
	return heights
}

// AggregateHeight is the sum of ColumnHeights, a standard component of
// Tetris board-quality heuristics.
func (g Grid) AggregateHeight() int {
	total := 0
	for _, h := range g.ColumnHeights() {
		total += h
	}
	return total
}

// Bumpiness is the sum of absolute height differences between adjacent
// columns.
func (g Grid) Bumpiness() int {
	heights := g.ColumnHeights()
	total := 0
	for i := 1; i < len(heights); i++ {
		d := heights[i] - heights[i-1]
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// HoleCount returns the number of empty cells that have at least one
// non-empty cell somewhere above them in the same column.
func (g Grid) HoleCount() int {
	holes := 0
	for col := 0; col < g.width; col++ {
		seenBlock := false
		for row := 0; row < g.height; row++ {
			if !g.IsEmpty(row, col) {
				seenBlock = true
			} else if seenBlock {
				holes++
			}
		}
	}
	return holes
}

// String renders the grid as a human-readable block, one character per
// cell, mostly useful in test failure output and debug logs.
func (g Grid) String() string {
	var sb strings.Builder
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			sb.WriteString(g.At(row, col).String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
