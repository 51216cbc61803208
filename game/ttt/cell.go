package ttt

import "github.com/gorgonia/menace/game"

// Cell is a single position on the board. Besides the marker it holds the
// outcome counters accumulated while training.
type Cell struct {
	Row, Col int
	Marker   game.Marker

	Win, Draw, Loss float32
}

func (c *Cell) IsFree() bool { return c.Marker == game.None }

func (c *Cell) Coord() game.Coord { return game.Coord{Row: c.Row, Col: c.Col} }

// Effectiveness is the learned desirability of playing this cell:
//
//	(1 + win + draw/2) / (1 + loss)
func (c *Cell) Effectiveness() float32 {
	return (c.Win + 0.5*c.Draw + 1) / (c.Loss + 1)
}

// Credit adds the weight of a finished game to the counter selected by r.
// Short games weigh more: the weight is MaxMoves/total.
func (c *Cell) Credit(r game.Result, total int) {
	w := Weight(total)
	switch r {
	case game.Win:
		c.Win += w
	case game.Draw:
		c.Draw += w
	case game.Loss:
		c.Loss += w
	}
}

// Weight returns the credit given for a game that ended after total moves.
func Weight(total int) float32 {
	if total < 1 {
		total = 1
	}
	if total > MaxMoves {
		total = MaxMoves
	}
	return float32(MaxMoves) / float32(total)
}
