package ttt

import (
	"fmt"

	"github.com/gorgonia/menace/game"
)

// Orientation is one of the board images used to share what is learnt
// between symmetric positions.
type Orientation int

const (
	Identity Orientation = iota
	Mirrored
	Transposed
	MirroredTransposed
)

// Orientations lists every orientation, Identity first.
var Orientations = [...]Orientation{Identity, Mirrored, Transposed, MirroredTransposed}

func (o Orientation) String() string {
	switch o {
	case Identity:
		return "identity"
	case Mirrored:
		return "mirror"
	case Transposed:
		return "transpose"
	case MirroredTransposed:
		return "mirror-of-transpose"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

func mirror(c game.Coord) game.Coord    { return game.Coord{Row: c.Row, Col: Size - 1 - c.Col} }
func transpose(c game.Coord) game.Coord { return game.Coord{Row: c.Col, Col: c.Row} }

// Map sends a coordinate of the original board to its place in the image.
func (o Orientation) Map(c game.Coord) game.Coord {
	switch o {
	case Mirrored:
		return mirror(c)
	case Transposed:
		return transpose(c)
	case MirroredTransposed:
		return mirror(transpose(c))
	}
	return c
}

// Apply returns the image of b. Identity returns a Clone.
func (o Orientation) Apply(b *Board) *Board {
	if o == Identity {
		return b.Clone()
	}
	return transform(b, o.Map)
}

// Mirror reverses the column order of every row.
func Mirror(b *Board) *Board { return transform(b, mirror) }

// Transpose swaps rows and columns.
func Transpose(b *Board) *Board { return transform(b, transpose) }

// MirrorOfTranspose is Mirror(Transpose(b)).
func MirrorOfTranspose(b *Board) *Board { return MirroredTransposed.Apply(b) }

// transform moves every cell of b, counters included, to f(cell) on a new board.
// The last move follows its cell. The result is not carried over.
func transform(b *Board, f func(game.Coord) game.Coord) *Board {
	retVal := New()
	for i := range b.cells {
		for j := range b.cells[i] {
			src := &b.cells[i][j]
			to := f(src.Coord())
			dst := &retVal.cells[to.Row][to.Col]
			*dst = *src
			dst.Row, dst.Col = to.Row, to.Col
			if b.last == src {
				retVal.last = dst
			}
		}
	}
	return retVal
}
