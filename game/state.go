package game

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Marker is what occupies a cell of the board.
type Marker int32

const (
	None Marker = iota
	Cross
	Nought
)

// Format prints a marker. %v is used in debug, %s is the board glyph.
func (m Marker) Format(s fmt.State, c rune) {
	switch c {
	case 'v': // used in debug
		switch m {
		case None:
			fmt.Fprint(s, "None")
		case Cross:
			fmt.Fprint(s, "Cross")
		case Nought:
			fmt.Fprint(s, "Nought")
		}
	case 's': // used in board games
		switch m {
		case None:
			fmt.Fprint(s, "·")
		case Cross:
			fmt.Fprint(s, "x")
		case Nought:
			fmt.Fprint(s, "o")
		}
	}
}

// Glyph returns the single character used for the marker in keys and exchange grids.
// Empty cells have no glyph; callers choose their own placeholder.
func (m Marker) Glyph() string {
	switch m {
	case Cross:
		return "x"
	case Nought:
		return "o"
	}
	return ""
}

// Opponent returns the other marker. None has no opponent.
func (m Marker) Opponent() Marker {
	switch m {
	case Cross:
		return Nought
	case Nought:
		return Cross
	}
	panic("Unreachable")
}

// IsPlayer reports whether m is one of the two playing markers.
func (m Marker) IsPlayer() bool { return m == Cross || m == Nought }

// ParseMarker parses "x" or "o" (any case, surrounding space allowed). Blank strings are None.
func ParseMarker(s string) (Marker, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "_", "·":
		return None, nil
	case "x":
		return Cross, nil
	case "o":
		return Nought, nil
	}
	return None, errors.Errorf("Unknown marker %q", s)
}

// Result is the outcome of a game seen from one marker's point of view.
type Result int32

const (
	Undecided Result = iota
	Win
	Draw
	Loss
)

func (r Result) String() string {
	switch r {
	case Win:
		return "WIN"
	case Draw:
		return "DRAW"
	case Loss:
		return "LOSS"
	}
	return "UNDECIDED"
}

// Decided is true for Win, Draw and Loss.
func (r Result) Decided() bool { return r != Undecided }

// Invert returns the same outcome seen from the other side.
func (r Result) Invert() Result {
	switch r {
	case Win:
		return Loss
	case Loss:
		return Win
	}
	return r
}

// Coord represents a (row, col) coordinate. (0, 0) is the top left.
type Coord struct {
	Row, Col int
}

func (c Coord) Eq(other Coord) bool { return c.Row == other.Row && c.Col == other.Col }

func (c Coord) Format(s fmt.State, r rune) { fmt.Fprintf(s, "(%d, %d)", c.Row, c.Col) }

// PlayerMove is a tuple indicating the marker and the cell to be played.
type PlayerMove struct {
	Marker
	Coord
}

// Eq returns true if both are equal
func (p PlayerMove) Eq(other PlayerMove) bool {
	return p.Marker == other.Marker && p.Coord.Eq(other.Coord)
}

func (p PlayerMove) Format(s fmt.State, c rune) { fmt.Fprintf(s, "%s@%v", p.Marker, p.Coord) }

// MetaState describes a game in progress inside a training run. Output encoders consume it.
type MetaState interface {
	Name() string // name of the game
	Epoch() int
	GameNumber() int
	Grid() [][]Marker
	LastMove() (PlayerMove, bool)
	Winner() (ended bool, winner Marker)
}
