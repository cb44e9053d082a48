package board

import "github.com/stackedcrooked/tetris-ai/tetromino"

// DropRow simulates gravity: starting from row 0 (the top of the grid,
// which includes any hidden spawn rows), it walks the block downward one
// row at a time and returns the last row at which it still Fits. ok is
// false if the block does not even fit at row 0, meaning the column is
// already blocked all the way to the top and no legal placement exists
// there.
func (g Grid) DropRow(t tetromino.Type, rot tetromino.Rotation, col int) (row int, ok bool) {
	b := Block{Type: t, Rotation: rot, Row: 0, Col: col}
	if !g.Fits(b) {
		return 0, false
	}
	for g.Fits(Block{Type: t, Rotation: rot, Row: b.Row + 1, Col: col}) {
		b.Row++
	}
	return b.Row, true
}

// LegalColumns returns every column at which the rotated mask stays within
// the grid's horizontal bounds, regardless of vertical collisions. This
// bounds the column search space before DropRow is tried per-column.
func (g Grid) LegalColumns(t tetromino.Type, rot tetromino.Rotation) []int {
	cells := tetromino.Cells(t, rot)
	minOff, maxOff := cells[0][1], cells[0][1]
	for _, c := range cells {
		if c[1] < minOff {
			minOff = c[1]
		}
		if c[1] > maxOff {
			maxOff = c[1]
		}
	}
	var cols []int
	for col := -minOff; col+maxOff < g.width; col++ {
		cols = append(cols, col)
	}
	return cols
}
