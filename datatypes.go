package menace

import (
	"bytes"
	"fmt"

	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
)

// TieBreak decides between free cells of equal effectiveness.
type TieBreak int

const (
	// TieBreakRandom picks uniformly among the best cells.
	TieBreakRandom TieBreak = iota
	// TieBreakFirst picks the first best cell in row-major order.
	TieBreakFirst
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakRandom:
		return "random"
	case TieBreakFirst:
		return "first"
	}
	return fmt.Sprintf("TieBreak(%d)", int(t))
}

// ParseTieBreak parses "random" or "first".
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "random":
		return TieBreakRandom, nil
	case "first":
		return TieBreakFirst, nil
	}
	return 0, errors.Errorf("Unknown tie break %q", s)
}

// OpponentKind is what the learning engine plays against in the arena.
type OpponentKind int

const (
	// RandomOpponent plays uniformly random legal moves.
	RandomOpponent OpponentKind = iota
	// SelfOpponent is a second learner sharing the same table.
	SelfOpponent
	// GreedyOpponent plays from the same table without learning.
	GreedyOpponent
)

// ParseOpponent parses "random", "self" or "greedy".
func ParseOpponent(s string) (OpponentKind, error) {
	switch s {
	case "random":
		return RandomOpponent, nil
	case "self":
		return SelfOpponent, nil
	case "greedy":
		return GreedyOpponent, nil
	}
	return 0, errors.Errorf("Unknown opponent %q", s)
}

type Config struct {
	Name      string
	TablePath string // where the table is loaded from and saved to. Empty means in memory only
	TieBreak  TieBreak
	Symmetric bool // train on all four orientations of every game
	Opponent  OpponentKind
	Workers   int // games played concurrently

	// extensions
	OutputEncoder OutputEncoder
}

func DefaultConfig() Config {
	return Config{
		Name:      "Tic Tac Toe",
		TablePath: table.DefaultFile,
		TieBreak:  TieBreakRandom,
		Symmetric: true,
		Opponent:  RandomOpponent,
		Workers:   1,
	}
}

func (conf Config) IsValid() bool {
	return conf.Workers >= 1 &&
		(conf.TieBreak == TieBreakRandom || conf.TieBreak == TieBreakFirst) &&
		conf.Opponent >= RandomOpponent && conf.Opponent <= GreedyOpponent
}

// OutputEncoder encodes the state of a game in an arena as whatever.
//
// An example OutputEncoder is the GifEncoder. Another example would be a logger.
type OutputEncoder interface {
	Encode(ms game.MetaState) error
	Flush() error
}

// A Player makes moves. s is the player's own session for the game being played.
// Players are asked to move on finished boards too, so that they can learn
// from the end of the game.
type Player interface {
	Play(s *Session, b *ttt.Board, m game.Marker) (Step, error)
}

type manyErr []error

func (err manyErr) Error() string {
	var buf bytes.Buffer
	for _, e := range err {
		fmt.Fprintln(&buf, e.Error())
	}
	return buf.String()
}
