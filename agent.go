package menace

import (
	"sync"

	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
)

// An Agent is a player in the arena, with its statistics.
type Agent struct {
	Player

	// Statistics
	Wins float32
	Loss float32
	Draw float32
	sync.Mutex

	name string
}

func newAgent(p Player, name string) *Agent {
	return &Agent{Player: p, name: name}
}

func (a *Agent) Name() string { return a.name }

func (a *Agent) record(r game.Result) {
	a.Lock()
	switch r {
	case game.Win:
		a.Wins++
	case game.Draw:
		a.Draw++
	case game.Loss:
		a.Loss++
	}
	a.Unlock()
}

func (a *Agent) resetStats() {
	a.Lock()
	a.Wins = 0
	a.Loss = 0
	a.Draw = 0
	a.Unlock()
}

func (a *Agent) stats() (wins, loss, draw float32) {
	a.Lock()
	defer a.Unlock()
	return a.Wins, a.Loss, a.Draw
}

// learner trains the table with every move it makes.
type learner struct {
	*Engine
	symmetric bool
}

func (l learner) Play(s *Session, b *ttt.Board, m game.Marker) (Step, error) {
	if l.symmetric {
		return l.AdvanceAndLearnAll(s, b, m)
	}
	s.Lock()
	defer s.Unlock()
	return l.AdvanceAndLearn(s.Path(ttt.Identity), b, m)
}

// greedy plays from the table without learning.
type greedy struct{ *Engine }

func (g greedy) Play(s *Session, b *ttt.Board, m game.Marker) (Step, error) { return g.Move(b, m) }

// NewLearner returns a Player that trains e's table.
func NewLearner(e *Engine, symmetric bool) Player { return learner{Engine: e, symmetric: symmetric} }

// NewGreedy returns a Player that plays from e's table without training it.
func NewGreedy(e *Engine) Player { return greedy{e} }

// newOpponent builds the arena opponent described by kind.
func newOpponent(kind OpponentKind, e *Engine, conf Config) Player {
	switch kind {
	case SelfOpponent:
		return NewLearner(e, conf.Symmetric)
	case GreedyOpponent:
		return NewGreedy(e)
	}
	return dummyPlayer{}
}

// compile-time checks
var (
	_ Player = learner{}
	_ Player = greedy{}
	_ Player = dummyPlayer{}
)
