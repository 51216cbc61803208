package menace

import (
	"github.com/chewxy/math32"
	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"
)

// Step is the outcome of asking the engine for a move.
type Step struct {
	Board    *ttt.Board  // the board after the engine's move
	Move     game.Coord  // the engine's move, valid if Moved
	Moved    bool        // false when the board was already finished
	Result   game.Result // result of Board for the engine's marker
	Credited int         // table entries updated when the game ended
}

// Engine plays tic-tac-toe greedily from a value table, and trains the table
// from the games it plays. An Engine holds no per-game state: that lives in
// Paths and Sessions, so one Engine serves any number of concurrent games.
type Engine struct {
	tbl      *table.Table
	tieBreak TieBreak
}

// NewEngine creates an engine over t.
func NewEngine(t *table.Table, tieBreak TieBreak) *Engine {
	if t == nil {
		t = table.New()
	}
	return &Engine{tbl: t, tieBreak: tieBreak}
}

// Table is the value table the engine reads and trains.
func (e *Engine) Table() *table.Table { return e.tbl }

// Select picks the free cell of a trained board with the highest effectiveness.
// It returns false when there is no free cell.
func (e *Engine) Select(trained *ttt.Board) (game.Coord, bool) {
	free := trained.Free()
	if len(free) == 0 {
		return game.Coord{}, false
	}
	best := make([]game.Coord, 0, len(free))
	bestEff := math32.Inf(-1)
	for _, c := range free {
		cell, _ := trained.At(c)
		switch eff := cell.Effectiveness(); {
		case eff > bestEff:
			bestEff = eff
			best = append(best[:0], c)
		case eff == bestEff:
			best = append(best, c)
		}
	}
	if e.tieBreak == TieBreakFirst || len(best) == 1 {
		return best[0], true
	}
	return best[frand.Intn(len(best))], true
}

func (e *Engine) selectFrom(entry *table.Entry) (game.Coord, bool) {
	return e.Select(entry.Board())
}

// Move plays m on a copy of b without recording or learning anything.
func (e *Engine) Move(b *ttt.Board, m game.Marker) (Step, error) {
	if !m.IsPlayer() {
		return Step{}, errors.Errorf("Cannot move for %v", m)
	}
	current := b.Layout()
	if r := current.Result(m); r.Decided() {
		return Step{Board: current, Result: r}, nil
	}
	entry, _ := e.tbl.GetOrCreate(current)
	c, ok := e.selectFrom(entry)
	if !ok {
		return Step{}, errors.Errorf("No move available on %q", current.Key())
	}
	if err := current.ApplyMove(c, m); err != nil {
		return Step{}, err
	}
	return Step{Board: current, Move: c, Moved: true, Result: current.Result(m)}, nil
}

// AdvanceAndLearn makes the engine's move on b for m, recording the game in p.
// When the game is over the table is credited from p.
func (e *Engine) AdvanceAndLearn(p *Path, b *ttt.Board, m game.Marker) (Step, error) {
	return e.advance(p, b, m, e.selectFrom)
}

// AdvanceAndLearnAll is AdvanceAndLearn for the real board, followed by the
// same move replayed on the three symmetric images of the board, each on its
// own path in s. All four passes train the same table.
func (e *Engine) AdvanceAndLearnAll(s *Session, b *ttt.Board, m game.Marker) (Step, error) {
	s.Lock()
	defer s.Unlock()

	step, err := e.advance(s.Path(ttt.Identity), b, m, e.selectFrom)
	if err != nil {
		return step, err
	}

	var g errgroup.Group
	for _, o := range ttt.Orientations[1:] {
		o := o
		g.Go(func() error {
			replay := func(*table.Entry) (game.Coord, bool) { return o.Map(step.Move), step.Moved }
			_, err := e.advance(s.Path(o), o.Apply(b.Layout()), m, replay)
			return errors.WithMessagef(err, "Orientation %v", o)
		})
	}
	return step, g.Wait()
}

func (e *Engine) advance(p *Path, b *ttt.Board, m game.Marker, choose func(*table.Entry) (game.Coord, bool)) (Step, error) {
	if !m.IsPlayer() {
		return Step{}, errors.Errorf("Cannot move for %v", m)
	}
	if startsGame(b, m) {
		p.Reset()
	}
	p.record(b.Layout())

	current := b.Layout()
	step := Step{Board: current}
	if !current.Result(m).Decided() {
		entry, _ := e.tbl.GetOrCreate(current)
		c, ok := choose(entry)
		if !ok {
			return Step{}, errors.Errorf("No move available on %q", current.Key())
		}
		next := b.Layout()
		if err := next.ApplyMove(c, m); err != nil {
			return Step{}, err
		}
		p.record(next.Clone())
		step.Board, step.Move, step.Moved = next, c, true
	}

	step.Result = step.Board.Result(m)
	if step.Result.Decided() && !p.settled {
		step.Credited = e.assign(p, step.Board, step.Result)
		p.settled = true
	}
	return step, nil
}

// assign walks p backwards. Every board recorded before an engine move is
// looked up in the table and the cell the engine then played is credited with
// the result. It returns the number of entries updated.
func (e *Engine) assign(p *Path, final *ttt.Board, r game.Result) (updated int) {
	total := final.Occupied()
	var last game.Coord
	var haveLast bool
	for i := len(p.snapshots) - 1; i >= 0; i-- {
		s := p.snapshots[i]
		if mv, ok := s.LastMove(); ok {
			last, haveLast = mv.Coord, true
			continue
		}
		if !haveLast {
			continue
		}
		entry, ok := e.tbl.Get(s.Key())
		if !ok {
			continue
		}
		if err := entry.Credit(last, r, total); err != nil {
			log.Debug().Err(err).Str("key", s.Key()).Msg("credit-skipped")
			continue
		}
		updated++
	}
	log.Debug().Str("result", r.String()).Int("moves", total).Int("updated", updated).Msg("credit-assigned")
	return updated
}
