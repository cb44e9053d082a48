// Package tetromino holds the static piece and rotation tables: the seven
// Tetris piece types and the 4x4 masks for each of their rotations.
package tetromino

import "fmt"

// Type is one of the seven Tetris piece shapes, or Empty for an unoccupied
// cell.
type Type uint8

const (
	Empty Type = iota
	I
	J
	L
	O
	S
	T
	Z
)

// NonemptyTypes lists every real piece type, in a stable order used
// wherever a deterministic enumeration is needed (e.g. bag generation).
var NonemptyTypes = [7]Type{I, J, L, O, S, T, Z}

func (t Type) String() string {
	switch t {
	case Empty:
		return "."
	case I:
		return "I"
	case J:
		return "J"
	case L:
		return "L"
	case O:
		return "O"
	case S:
		return "S"
	case T:
		return "T"
	case Z:
		return "Z"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Rotation is one of the four orientations of a piece, normalized modulo
// the piece's symmetry class by Normalize.
type Rotation uint8

const (
	R0 Rotation = iota
	R90
	R180
	R270
)

// distinctRotations records, per piece type, how many of the four Rotation
// values actually produce a unique mask. O has one, I/S/Z have two, the
// rest have four.
var distinctRotations = [8]uint8{
	Empty: 1,
	I:     2,
	J:     4,
	L:     4,
	O:     1,
	S:     2,
	T:     4,
	Z:     2,
}

// DistinctRotations returns the number of unique orientations for t.
func DistinctRotations(t Type) int {
	return int(distinctRotations[t])
}

// Normalize folds r into t's symmetry class, e.g. R270 on an O piece
// normalizes to R0.
func Normalize(t Type, r Rotation) Rotation {
	n := distinctRotations[t]
	if n == 0 {
		return r
	}
	return Rotation(uint8(r) % n)
}

// mask is a 4x4 grid of booleans, row-major, row 0 on top. true marks a
// filled cell of the piece at this orientation.
type mask [4][4]bool

// masks[type][rotation] holds the precomputed 4x4 footprint for every
// (type, rotation) pair. Rotations beyond a piece's DistinctRotations are
// unused but populated redundantly so callers never need a bounds check
// after Normalize.
var masks = buildMasks()

func buildMasks() [8][4]mask {
	var m [8][4]mask

	// Base orientation (R0) for each piece, drawn on the classic 4x4
	// spawn box.
	base := map[Type]mask{
		I: parseMask(
			"....",
			"####",
			"....",
			"....",
		),
		J: parseMask(
			"#...",
			"###.",
			"....",
			"....",
		),
		L: parseMask(
			"..#.",
			"###.",
			"....",
			"....",
		),
		O: parseMask(
			".##.",
			".##.",
			"....",
			"....",
		),
		S: parseMask(
			".##.",
			"##..",
			"....",
			"....",
		),
		T: parseMask(
			".#..",
			"###.",
			"....",
			"....",
		),
		Z: parseMask(
			"##..",
			".##.",
			"....",
			"....",
		),
	}

	for _, t := range NonemptyTypes {
		cur := base[t]
		for r := 0; r < 4; r++ {
			m[t][r] = cur
			cur = rotateCW(cur)
		}
	}
	return m
}

func parseMask(rows ...string) mask {
	var m mask
	for r, row := range rows {
		for c, ch := range row {
			if ch == '#' {
				m[r][c] = true
			}
		}
	}
	return m
}

func rotateCW(m mask) mask {
	var out mask
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c][3-r] = m[r][c]
		}
	}
	return out
}

// Mask returns the 4x4 footprint for t at rotation r. r is normalized
// internally, so callers may pass any Rotation value.
func Mask(t Type, r Rotation) [4][4]bool {
	return masks[t][Normalize(t, r)]
}

// Cells returns the list of (row, col) offsets, relative to the mask's
// top-left corner, that are filled for (t, r).
func Cells(t Type, r Rotation) [][2]int {
	m := Mask(t, r)
	cells := make([][2]int, 0, 4)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if m[row][col] {
				cells = append(cells, [2]int{row, col})
			}
		}
	}
	return cells
}
