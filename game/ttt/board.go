package ttt

import (
	"fmt"
	"strings"

	"github.com/gorgonia/menace/game"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorgonia.org/vecf32"
)

const (
	// Size is the width and height of the board.
	Size = 3
	// MaxMoves is the capacity of the board.
	MaxMoves = Size * Size

	// Placeholder stands for an empty cell in keys.
	Placeholder = "_"
)

// lines are the rows, columns and diagonals that win the game.
var lines = func() (retVal [][Size]game.Coord) {
	for i := 0; i < Size; i++ {
		var row, col [Size]game.Coord
		for j := 0; j < Size; j++ {
			row[j] = game.Coord{Row: i, Col: j}
			col[j] = game.Coord{Row: j, Col: i}
		}
		retVal = append(retVal, row, col)
	}
	var diag, anti [Size]game.Coord
	for i := 0; i < Size; i++ {
		diag[i] = game.Coord{Row: i, Col: i}
		anti[i] = game.Coord{Row: Size - 1 - i, Col: i}
	}
	return append(retVal, diag, anti)
}()

// Board is a tic-tac-toe board. It remembers the last move played on it and,
// once computed, the outcome of the game.
//
// A Board whose outcome is known is finished: ApplyMove refuses to change it.
type Board struct {
	cells [Size][Size]Cell
	last  *Cell // points into cells

	ended  bool
	winner game.Marker // None for a draw
}

// New creates an empty board.
func New() *Board {
	b := new(Board)
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = Cell{Row: i, Col: j}
		}
	}
	return b
}

// FromGrid creates a board holding the given markers.
func FromGrid(grid [Size][Size]game.Marker) *Board {
	b := New()
	for i := range grid {
		for j, m := range grid[i] {
			b.cells[i][j].Marker = m
		}
	}
	return b
}

// FromStrings parses the exchange form of a board: Size rows of Size strings, each "x", "o" or blank.
func FromStrings(rows [][]string) (*Board, error) {
	if len(rows) != Size {
		return nil, errors.Errorf("Expected %d rows. Got %d", Size, len(rows))
	}
	var grid [Size][Size]game.Marker
	for i, row := range rows {
		if len(row) != Size {
			return nil, errors.Errorf("Expected %d columns in row %d. Got %d", Size, i, len(row))
		}
		for j, s := range row {
			m, err := game.ParseMarker(s)
			if err != nil {
				return nil, errors.WithMessagef(err, "Cell (%d, %d)", i, j)
			}
			grid[i][j] = m
		}
	}
	return FromGrid(grid), nil
}

// ParseKey is the inverse of Key. Only keys written by Key are accepted.
func ParseKey(key string) (*Board, error) {
	if len(key) != MaxMoves {
		return nil, errors.Errorf("Key %q has length %d. Expected %d", key, len(key), MaxMoves)
	}
	var grid [Size][Size]game.Marker
	for i := 0; i < MaxMoves; i++ {
		m, err := game.ParseMarker(key[i : i+1])
		if err != nil {
			return nil, errors.WithMessagef(err, "Key %q", key)
		}
		grid[i/Size][i%Size] = m
	}
	b := FromGrid(grid)
	if b.Key() != key {
		return nil, errors.Errorf("Key %q is not canonical. Expected %q", key, b.Key())
	}
	return b, nil
}

// Clone is a deep copy: markers, counters, last move and result.
func (b *Board) Clone() *Board {
	retVal := &Board{
		cells:  b.cells,
		ended:  b.ended,
		winner: b.winner,
	}
	if b.last != nil {
		retVal.last = &retVal.cells[b.last.Row][b.last.Col]
	}
	return retVal
}

// Layout copies the markers only. Counters start afresh, there is no last move and no result.
func (b *Board) Layout() *Board {
	retVal := New()
	for i := range b.cells {
		for j := range b.cells[i] {
			retVal.cells[i][j].Marker = b.cells[i][j].Marker
		}
	}
	return retVal
}

func inBounds(c game.Coord) bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// At returns a copy of the cell at c.
func (b *Board) At(c game.Coord) (Cell, bool) {
	if !inBounds(c) {
		return Cell{}, false
	}
	return b.cells[c.Row][c.Col], true
}

// IsFree reports whether c is on the board and empty.
func (b *Board) IsFree(c game.Coord) bool {
	return inBounds(c) && b.cells[c.Row][c.Col].IsFree()
}

func (b *Board) all() []*Cell {
	retVal := make([]*Cell, 0, MaxMoves)
	for i := range b.cells {
		for j := range b.cells[i] {
			retVal = append(retVal, &b.cells[i][j])
		}
	}
	return retVal
}

// Free lists the empty cells in row-major order.
func (b *Board) Free() []game.Coord {
	return lo.FilterMap(b.all(), func(c *Cell, _ int) (game.Coord, bool) {
		return c.Coord(), c.IsFree()
	})
}

// Occupied counts the cells holding a marker.
func (b *Board) Occupied() int {
	return lo.CountBy(b.all(), func(c *Cell) bool { return !c.IsFree() })
}

// Markers lists the occupied cells' markers in row-major order.
func (b *Board) Markers() []game.Marker {
	return lo.FilterMap(b.all(), func(c *Cell, _ int) (game.Marker, bool) {
		return c.Marker, !c.IsFree()
	})
}

// ApplyMove places m at c and records c as the last move.
func (b *Board) ApplyMove(c game.Coord, m game.Marker) error {
	move := game.PlayerMove{Marker: m, Coord: c}
	if b.ended {
		return errors.WithMessagef(ErrFinished, "Unable to play %v", move)
	}
	if !m.IsPlayer() {
		return IllegalMove{Move: move, Reason: "no such player"}
	}
	if !inBounds(c) {
		return IllegalMove{Move: move, Reason: "out of bounds"}
	}
	cell := &b.cells[c.Row][c.Col]
	if !cell.IsFree() {
		return IllegalMove{Move: move, Reason: "cell is occupied"}
	}
	cell.Marker = m
	b.last = cell
	return nil
}

// LastMove returns the cell of the last move applied to this board, if any.
func (b *Board) LastMove() (game.PlayerMove, bool) {
	if b.last == nil {
		return game.PlayerMove{}, false
	}
	return game.PlayerMove{Marker: b.last.Marker, Coord: b.last.Coord()}, true
}

// Key is the canonical identity of the board's content: row-major markers, Placeholder for empty cells.
func (b *Board) Key() string {
	var buf strings.Builder
	buf.Grow(MaxMoves)
	for _, c := range b.all() {
		if c.IsFree() {
			buf.WriteString(Placeholder)
			continue
		}
		buf.WriteString(c.Marker.Glyph())
	}
	return buf.String()
}

// Result computes the outcome for engine. Once the game is over the outcome is
// cached and later calls, for either marker, do not look at the board again.
func (b *Board) Result(engine game.Marker) game.Result {
	if !b.ended {
		if w := b.line(); w != game.None {
			b.ended, b.winner = true, w
		} else if b.Occupied() == MaxMoves {
			b.ended = true
		}
	}
	switch {
	case !b.ended:
		return game.Undecided
	case b.winner == game.None:
		return game.Draw
	case b.winner == engine:
		return game.Win
	}
	return game.Loss
}

// Finished reports whether the outcome has been cached.
func (b *Board) Finished() bool { return b.ended }

// Winner returns the marker completing a line, or None.
func (b *Board) Winner() game.Marker { return b.line() }

func (b *Board) line() game.Marker {
	for _, line := range lines {
		first := b.cells[line[0].Row][line[0].Col].Marker
		if first == game.None {
			continue
		}
		complete := true
		for _, c := range line[1:] {
			if b.cells[c.Row][c.Col].Marker != first {
				complete = false
				break
			}
		}
		if complete {
			return first
		}
	}
	return game.None
}

// Credit adds the outcome of a finished game to the counters of the cell at c.
func (b *Board) Credit(c game.Coord, r game.Result, total int) error {
	if !inBounds(c) {
		return errors.Errorf("Cannot credit %v. Out of bounds", c)
	}
	b.cells[c.Row][c.Col].Credit(r, total)
	return nil
}

// SetCounters overwrites the counters of the cell at c. Used when restoring a table.
func (b *Board) SetCounters(c game.Coord, win, draw, loss float32) {
	cell := &b.cells[c.Row][c.Col]
	cell.Win, cell.Draw, cell.Loss = win, draw, loss
}

// Effectiveness returns the effectiveness of every cell in row-major order, occupied or not.
func (b *Board) Effectiveness() []float32 {
	wins := make([]float32, MaxMoves)
	draws := make([]float32, MaxMoves)
	losses := make([]float32, MaxMoves)
	for i, c := range b.all() {
		wins[i], draws[i], losses[i] = c.Win, c.Draw, c.Loss
	}
	vecf32.Scale(draws, 0.5)
	vecf32.Add(wins, draws)
	vecf32.Trans(wins, 1)
	vecf32.Trans(losses, 1)
	vecf32.Div(wins, losses)
	return wins
}

// Grid returns the markers as rows.
func (b *Board) Grid() [][]game.Marker {
	retVal := make([][]game.Marker, Size)
	for i := range b.cells {
		retVal[i] = make([]game.Marker, Size)
		for j := range b.cells[i] {
			retVal[i][j] = b.cells[i][j].Marker
		}
	}
	return retVal
}

// Strings returns the exchange form of the board. Empty cells are "".
func (b *Board) Strings() [][]string {
	retVal := make([][]string, Size)
	for i := range b.cells {
		retVal[i] = make([]string, Size)
		for j := range b.cells[i] {
			retVal[i][j] = b.cells[i][j].Marker.Glyph()
		}
	}
	return retVal
}

func (b *Board) Format(s fmt.State, c rune) {
	for i := range b.cells {
		fmt.Fprint(s, "⎢ ")
		for j := range b.cells[i] {
			fmt.Fprintf(s, "%s ", b.cells[i][j].Marker)
		}
		fmt.Fprint(s, "⎥")
		if i < Size-1 {
			fmt.Fprint(s, "\n")
		}
	}
}
