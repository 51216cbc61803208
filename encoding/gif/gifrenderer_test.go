package gif

import (
	"bytes"
	"image/gif"
	"testing"

	"github.com/gorgonia/menace/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state struct {
	grid   [][]game.Marker
	last   game.PlayerMove
	moved  bool
	ended  bool
	winner game.Marker
}

func (s state) Name() string                        { return "Tic Tac Toe" }
func (s state) Epoch() int                          { return 1 }
func (s state) GameNumber() int                     { return 2 }
func (s state) Grid() [][]game.Marker               { return s.grid }
func (s state) LastMove() (game.PlayerMove, bool)   { return s.last, s.moved }
func (s state) Winner() (ended bool, w game.Marker) { return s.ended, s.winner }

func TestRepr(t *testing.T) {
	grid := [][]game.Marker{
		{game.Cross, game.None, game.None},
		{game.None, game.Nought, game.None},
		{game.None, game.None, game.Cross},
	}
	assert.Equal(t, "⎢ x · · ⎥\n⎢ · o · ⎥\n⎢ · · x ⎥", Repr(grid))
}

func TestEncoder(t *testing.T) {
	empty := [][]game.Marker{
		{game.None, game.None, game.None},
		{game.None, game.None, game.None},
		{game.None, game.None, game.None},
	}
	moved := [][]game.Marker{
		{game.Cross, game.Cross, game.Cross},
		{game.Nought, game.Nought, game.None},
		{game.None, game.None, game.None},
	}
	var buf bytes.Buffer
	enc := NewGifEncoder(&buf, 400, 400)
	require.NoError(t, enc.Flush())
	assert.Zero(t, buf.Len(), "nothing to write before the first frame")

	require.NoError(t, enc.Encode(state{grid: empty}))
	require.NoError(t, enc.Encode(state{
		grid:   moved,
		last:   game.PlayerMove{Marker: game.Cross, Coord: game.Coord{Row: 0, Col: 2}},
		moved:  true,
		ended:  true,
		winner: game.Cross,
	}))
	assert.Equal(t, 2, enc.Frames())
	assert.True(t, enc.W <= 400 && enc.H <= 400)

	require.NoError(t, enc.Flush())
	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, g.Image, 2)
	assert.Equal(t, []int{0, 300}, g.Delay)
}
