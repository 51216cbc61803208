package dot

import (
	"strings"
	"testing"

	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/gorgonia/menace/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(t *testing.T, keys ...string) *table.Table {
	tbl := table.New()
	for _, k := range keys {
		b, err := ttt.ParseKey(k)
		require.NoError(t, err)
		tbl.GetOrCreate(b)
	}
	return tbl
}

func TestSuccessors(t *testing.T) {
	keys, moves := successors("xoxoxoxo_")
	assert.Equal(t, []string{"xoxoxoxox", "xoxoxoxoo"}, keys)
	assert.Equal(t, []game.Coord{{Row: 2, Col: 2}, {Row: 2, Col: 2}}, moves)

	keys, _ = successors("_________")
	assert.Len(t, keys, 2*ttt.MaxMoves)
}

func TestToDot(t *testing.T) {
	tbl := tableOf(t, "_________", "x________", "x___o____", "____x____")
	e, _ := tbl.Get("x________")
	require.NoError(t, e.Credit(game.Coord{Row: 1, Col: 1}, game.Win, 5))

	s, err := ToDot(tbl, -1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(s, "digraph G"))
	assert.Equal(t, 4, strings.Count(s, "shape=none"))
	assert.Equal(t, 3, strings.Count(s, "->"))
	for _, edge := range []string{
		nodeID("_________") + "->" + nodeID("x________"),
		nodeID("_________") + "->" + nodeID("____x____"),
		nodeID("x________") + "->" + nodeID("x___o____"),
	} {
		assert.Contains(t, s, edge)
	}
	assert.True(t, strings.Contains(s, " 280"), "credited cell should show its efficiency")
}

func TestToDotDepth(t *testing.T) {
	tbl := tableOf(t, "_________", "x________", "x___o____")
	s, err := ToDot(tbl, 1)
	require.NoError(t, err)
	assert.Contains(t, s, nodeID("x________"))
	assert.NotContains(t, s, nodeID("x___o____"))

	s, err = ToDot(table.New(), -1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "digraph G"))
}
