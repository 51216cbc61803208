package ttt

import (
	"fmt"

	"github.com/gorgonia/menace/game"
	"github.com/pkg/errors"
)

// ErrFinished is returned when a move is applied to a board that already has a result.
var ErrFinished = errors.New("board is finished")

// IllegalMove is returned when a move targets an occupied cell or a coordinate outside the board.
type IllegalMove struct {
	Move   game.PlayerMove
	Reason string
}

func (err IllegalMove) Error() string {
	return fmt.Sprintf("Unable to play %v: %s", err.Move, err.Reason)
}

// IsIllegalMove reports whether err, or its cause, is an IllegalMove.
func IsIllegalMove(err error) bool {
	var im IllegalMove
	return errors.As(err, &im)
}
