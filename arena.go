package menace

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

// Arena pits two agents against each other. Games played in an arena may run concurrently.
type Arena struct {
	A, B *Agent

	name  string
	epoch int // training epoch
	games int32

	enc   OutputEncoder
	encMu sync.Mutex
}

// MakeArena makes an arena for two players.
func MakeArena(a, b Player, enc OutputEncoder, name string) Arena {
	if name == "" {
		name = "UNKNOWN GAME"
	}
	return Arena{
		A:    newAgent(a, "A"),
		B:    newAgent(b, "B"),
		name: name,
		enc:  enc,
	}
}

func NewArena(a, b Player, enc OutputEncoder, name string) *Arena {
	ar := MakeArena(a, b, enc, name)
	return &ar
}

func (a *Arena) Epoch() int   { return a.epoch }
func (a *Arena) Name() string { return a.name }

// seat is an agent playing one side of a single game.
type seat struct {
	*Agent
	marker  game.Marker
	session *Session
}

func (s seat) result(winner game.Marker) game.Result {
	switch winner {
	case game.None:
		return game.Draw
	case s.marker:
		return game.Win
	}
	return game.Loss
}

// match is a game in progress. It is what output encoders see.
type match struct {
	arena  *Arena
	number int
	board  *ttt.Board
	last   game.PlayerMove
	moved  bool
}

func (m *match) Name() string                      { return m.arena.name }
func (m *match) Epoch() int                        { return m.arena.epoch }
func (m *match) GameNumber() int                   { return m.number }
func (m *match) Grid() [][]game.Marker             { return m.board.Grid() }
func (m *match) LastMove() (game.PlayerMove, bool) { return m.last, m.moved }

func (m *match) Winner() (ended bool, winner game.Marker) {
	winner = m.board.Winner()
	return winner != game.None || m.board.Occupied() == ttt.MaxMoves, winner
}

// Play plays a game and returns the winner. If it is a draw, the returned marker is None.
// Which agent opens is decided by a coin toss; the opening side plays Cross.
func (a *Arena) Play() (winner game.Marker, err error) {
	m := &match{
		arena:  a,
		number: int(atomic.AddInt32(&a.games, 1)) - 1,
		board:  ttt.New(),
	}
	first, second := a.A, a.B
	if frand.Intn(2) == 0 {
		first, second = a.B, a.A
	}
	seats := [2]seat{
		{Agent: first, marker: game.Cross, session: NewSession(fmt.Sprintf("%s/%d/%s", a.name, m.number, first.name))},
		{Agent: second, marker: game.Nought, session: NewSession(fmt.Sprintf("%s/%d/%s", a.name, m.number, second.name))},
	}

	var turn int
	for ended, _ := m.Winner(); !ended; ended, _ = m.Winner() {
		s := seats[turn]
		step, err := s.Play(s.session, m.board, s.marker)
		if err != nil {
			return game.None, errors.WithMessagef(err, "Game %d: agent %s playing %s", m.number, s.name, s.marker)
		}
		if !step.Moved {
			return game.None, errors.Errorf("Game %d: agent %s did not move on an unfinished board", m.number, s.name)
		}
		m.board, m.last, m.moved = step.Board, game.PlayerMove{Marker: s.marker, Coord: step.Move}, true
		a.encode(m)
		turn = 1 - turn
	}

	// the side that did not make the last move still has to see how the game ended
	s := seats[turn]
	if _, err = s.Play(s.session, m.board, s.marker); err != nil {
		return game.None, errors.WithMessagef(err, "Game %d: agent %s closing", m.number, s.name)
	}

	_, winner = m.Winner()
	for _, s := range seats {
		s.record(s.result(winner))
	}
	log.Debug().Int("game", m.number).Str("winner", fmt.Sprintf("%v", winner)).Msgf("\n%v", m.board)
	return winner, nil
}

func (a *Arena) encode(m *match) {
	if a.enc == nil {
		return
	}
	a.encMu.Lock()
	defer a.encMu.Unlock()
	if err := a.enc.Encode(m); err != nil {
		log.Warn().Err(err).Int("game", m.number).Msg("encode-failed")
	}
}
