package gtp

import (
	"strings"
	"testing"

	"github.com/gorgonia/menace"
	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *Engine {
	return New(menace.NewEngine(nil, menace.TieBreakFirst), "xx", "1", nil)
}

func Test_General(t *testing.T) {
	assert := assert.New(t)
	e := newEngine()
	var x string

	ch, ret := e.Start()
	ch <- "version"
	x = <-ret
	assert.Equal("= 1\n\n", x)

	ch <- "known_command hello"
	x = <-ret
	assert.Equal("= false\n\n", x)

	ch <- "known_command name"
	x = <-ret
	assert.Equal("= true\n\n", x)

	ch <- "completelyUnheardOfCommand xxx"
	x = <-ret
	assert.Equal("? Unknown command \"completelyunheardofcommand\"\n\n", x)

	ch <- "7 protocol_version # with a comment"
	x = <-ret
	assert.Equal("= 7 2\n\n", x)

	ch <- "quit"
	x = <-ret
	assert.Equal("= \n\n", x)
	_, open := <-ret
	assert.False(open)
}

func TestEngineWins(t *testing.T) {
	assert := assert.New(t)
	e := newEngine()
	ch, ret := e.Start()
	defer close(ch)

	script := []struct{ cmd, resp string }{
		{"1 genmove x", "= 1 0 0\n\n"},
		{"2 play o 1 0", "= 2 \n\n"},
		{"3 genmove x", "= 3 0 1\n\n"},
		{"4 play o 1 1", "= 4 \n\n"},
		{"5 genmove x", "= 5 0 2\n\n"},
		{"6 final_result", "= 6 x+\n\n"},
		{"7 showboard", "= 7 \n⎢ x x x ⎥\n⎢ o o · ⎥\n⎢ · · · ⎥\n\n"},
		{"8 genmove o", "? 8 Unable to generate a move: board is finished\n\n"},
		{"9 play o 2 2", "? 9 Unable to play: board is finished\n\n"},
		{"10 model_size", "= 10 9\n\n"},
		{"11 clear_board", "= 11 \n\n"},
		{"12 final_result", "= 12 undecided\n\n"},
		// every orientation of the empty board is the empty board: the
		// identity and transpose credit (0, 0), the mirrors credit (0, 2)
		{"13 efficiency", "= 13 \n 460| 100| 460\n 100| 100| 100\n 100| 100| 100\n\n"},
	}
	for _, s := range script {
		ch <- s.cmd
		assert.Equal(s.resp, <-ret, s.cmd)
	}
}

func TestEngineLearnsFromLoss(t *testing.T) {
	e := newEngine()
	ch, ret := e.Start()
	defer close(ch)

	for _, cmd := range []string{"play x 0 0", "genmove o", "play x 1 1", "genmove o", "play x 2 2"} {
		ch <- cmd
		require.Equal(t, byte('='), (<-ret)[0], cmd)
	}
	ch <- "final_result"
	assert.Equal(t, "= x+\n\n", <-ret)

	entry, ok := e.engine.Table().Get("x________")
	require.True(t, ok)
	cell, _ := entry.Board().At(game.Coord{Row: 0, Col: 1})
	assert.Equal(t, ttt.Weight(5), cell.Loss)
}

func TestBadArguments(t *testing.T) {
	e := newEngine()
	ch, ret := e.Start()
	defer close(ch)

	for _, cmd := range []string{
		"play",
		"play z 0 0",
		"play _ 0 0",
		"play x a 0",
		"play x 0 b",
		"play x 3 3",
		"genmove",
		"genmove q",
		"known_command",
		"efficiency",
		"save",
	} {
		ch <- cmd
		resp := <-ret
		assert.Equal(t, byte('?'), resp[0], "%s: %s", cmd, resp)
	}
}

func TestSave(t *testing.T) {
	e := newEngine()
	var saved int
	e.Save = func() error { saved++; return nil }
	ch, ret := e.Start()
	defer close(ch)

	ch <- "save"
	assert.Equal(t, "= \n\n", <-ret)
	assert.Equal(t, 1, saved)
}

func TestHandle(t *testing.T) {
	e := newEngine()
	for _, line := range []string{"", "   ", "# comment", "42"} {
		_, ok := e.Handle(line)
		assert.False(t, ok, "%q", line)
	}
	resp, ok := e.Handle("list_commands")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(resp, "= clear_board\nefficiency\n"), resp)

	assert.False(t, e.Done())
	resp, _ = e.Handle("quit")
	assert.Equal(t, "= \n\n", resp)
	assert.True(t, e.Done())
}
