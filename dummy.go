package menace

import (
	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"lukechampine.com/frand"
)

// dummyPlayer plays a uniformly random free cell.
type dummyPlayer struct{}

func (dummyPlayer) Play(s *Session, b *ttt.Board, m game.Marker) (Step, error) {
	next := b.Layout()
	if r := next.Result(m); r.Decided() {
		return Step{Board: next, Result: r}, nil
	}
	free := next.Free()
	c := free[frand.Intn(len(free))]
	if err := next.ApplyMove(c, m); err != nil {
		return Step{}, err
	}
	return Step{Board: next, Move: c, Moved: true, Result: next.Result(m)}, nil
}

// NewRandom returns a Player that plays uniformly random moves.
func NewRandom() Player { return dummyPlayer{} }
