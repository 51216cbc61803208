package menace

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEncoder struct {
	sync.Mutex
	frames, ended, flushed int
	lastGrid                [][]game.Marker
}

func (enc *countingEncoder) Encode(ms game.MetaState) error {
	enc.Lock()
	defer enc.Unlock()
	enc.frames++
	if ended, _ := ms.Winner(); ended {
		enc.ended++
	}
	if _, ok := ms.LastMove(); !ok {
		panic("encoded a game without moves")
	}
	enc.lastGrid = ms.Grid()
	return nil
}

func (enc *countingEncoder) Flush() error { enc.flushed++; return nil }

func TestArenaPlay(t *testing.T) {
	e := NewEngine(table.New(), TieBreakRandom)
	enc := new(countingEncoder)
	a := NewArena(NewLearner(e, true), NewRandom(), enc, "")
	assert.Equal(t, "UNKNOWN GAME", a.Name())

	const games = 30
	for i := 0; i < games; i++ {
		winner, err := a.Play()
		require.NoError(t, err)
		assert.True(t, winner == game.None || winner.IsPlayer())
	}

	assert.Equal(t, float32(games), a.A.Wins+a.A.Loss+a.A.Draw)
	assert.Equal(t, a.A.Wins, a.B.Loss)
	assert.Equal(t, a.A.Loss, a.B.Wins)
	assert.Equal(t, a.A.Draw, a.B.Draw)

	assert.Equal(t, games, enc.ended)
	assert.GreaterOrEqual(t, enc.frames, 5*games)
	assert.Len(t, enc.lastGrid, ttt.Size)
	assert.Greater(t, e.Table().Len(), 0)
}

func TestArenaSelfPlay(t *testing.T) {
	e := NewEngine(table.New(), TieBreakFirst)
	a := NewArena(NewLearner(e, false), NewGreedy(e), nil, "self")
	for i := 0; i < 10; i++ {
		_, err := a.Play()
		require.NoError(t, err)
	}
	assert.Equal(t, float32(10), a.B.Wins+a.B.Loss+a.B.Draw)
}

func TestConfig(t *testing.T) {
	assert.True(t, DefaultConfig().IsValid())

	conf := DefaultConfig()
	conf.Workers = 0
	assert.False(t, conf.IsValid())

	conf = DefaultConfig()
	conf.TieBreak = TieBreak(7)
	assert.False(t, conf.IsValid())

	for _, s := range []string{"random", "self", "greedy"} {
		_, err := ParseOpponent(s)
		assert.NoError(t, err)
	}
	_, err := ParseOpponent("minimax")
	assert.Error(t, err)

	for _, tb := range []TieBreak{TieBreakRandom, TieBreakFirst} {
		got, err := ParseTieBreak(tb.String())
		assert.NoError(t, err)
		assert.Equal(t, tb, got)
	}
	_, err = ParseTieBreak("last")
	assert.Error(t, err)
}

func TestTrainer(t *testing.T) {
	dir := t.TempDir()
	conf := DefaultConfig()
	conf.TablePath = filepath.Join(dir, "missing.gmf")
	conf.Workers = 4
	conf.Opponent = SelfOpponent

	tr := New(conf)
	require.Zero(t, tr.Engine().Table().Len())
	require.NoError(t, tr.Learn(2, 25))

	assert.Equal(t, []string{"A", "B"}, tr.Creation)
	require.Len(t, tr.Wins["A"], 2)
	for epoch := 0; epoch < 2; epoch++ {
		assert.Equal(t, float32(25), tr.Wins["A"][epoch]+tr.Losses["A"][epoch]+tr.Draws["A"][epoch])
	}

	saved := filepath.Join(dir, "trained.gmf")
	require.NoError(t, tr.Save(saved))

	conf.TablePath = saved
	again := New(conf)
	assert.Equal(t, tr.Engine().Table().Keys(), again.Engine().Table().Keys())

	fresh := New(configIn(dir))
	require.NoError(t, fresh.Load(saved))
	assert.Equal(t, tr.Engine().Table().Len(), fresh.Engine().Table().Len())
	assert.Error(t, fresh.Load(filepath.Join(dir, "nope.gmf")))

	csvFile := filepath.Join(dir, "stats.csv")
	require.NoError(t, tr.Dump(csvFile))
	f, err := os.Open(csvFile)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1+2*2)
	assert.Equal(t, []string{"agent", "epoch", "win", "draw", "loss"}, records[0])
}

func TestTrainerFlushesEncoder(t *testing.T) {
	conf := configIn(t.TempDir())
	enc := new(countingEncoder)
	conf.OutputEncoder = enc
	tr := New(conf)
	require.NoError(t, tr.Learn(1, 3))
	assert.Equal(t, 1, enc.flushed)
	assert.Equal(t, 3, enc.ended)
}

type closingEncoder struct {
	countingEncoder
	err error
}

func (enc *closingEncoder) Close() error { return enc.err }

func TestTrainerClose(t *testing.T) {
	dir := t.TempDir()
	conf := configIn(dir)
	enc := &closingEncoder{err: errors.New("boom")}
	conf.OutputEncoder = enc
	tr := New(conf)
	require.NoError(t, tr.Learn(1, 5))

	err := tr.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	_, statErr := os.Stat(conf.TablePath)
	assert.NoError(t, statErr, "table is saved even when the encoder fails to close")

	enc.err = nil
	assert.NoError(t, tr.Close())

	conf.TablePath = filepath.Join(dir, "file", "in", "the", "way")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), nil, 0644))
	enc.err = errors.New("boom")
	err = New(conf).Close()
	require.Error(t, err)
	assert.Len(t, err.(manyErr), 2)
}

func TestNewPanicsOnInvalidConfig(t *testing.T) {
	conf := DefaultConfig()
	conf.Workers = -1
	assert.Panics(t, func() { New(conf) })
}

// configIn is DefaultConfig with the table kept in dir.
func configIn(dir string) Config {
	conf := DefaultConfig()
	conf.TablePath = filepath.Join(dir, table.DefaultFile)
	return conf
}
