package server

import (
	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
)

// GameState is the exchange form of a game. Matrix holds "x", "o" or "" per
// cell. GameResult is seen from the engine's side and is null while the game
// goes on.
type GameState struct {
	Matrix       [][]string `json:"matrix"`
	GameResult   *string    `json:"gameResult"`
	Moves        int        `json:"moves"`
	ComputerMove *Move      `json:"computerMove,omitempty"`
}

// Move is a cell of the board.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GameInfo is the answer to every game request.
type GameInfo struct {
	GameState GameState `json:"gameState"`
	ModelSize int       `json:"modelSize"`
	GameID    string    `json:"gameId,omitempty"`
}

func newGameState(b *ttt.Board) GameState {
	return GameState{
		Matrix: b.Strings(),
		Moves:  b.Occupied(),
	}
}

func (gs *GameState) setResult(r game.Result) {
	if !r.Decided() {
		gs.GameResult = nil
		return
	}
	s := r.String()
	gs.GameResult = &s
}

// board parses the matrix. A missing matrix is an empty board.
func (gs GameState) board() (*ttt.Board, error) {
	if len(gs.Matrix) == 0 {
		return ttt.New(), nil
	}
	return ttt.FromStrings(gs.Matrix)
}
