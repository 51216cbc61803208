package table

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gorgonia/menace/game"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainedTable(t *testing.T) *Table {
	tbl := New()
	for _, k := range []string{"_________", "x___o____", "xo_xo____"} {
		e, _ := tbl.GetOrCreate(board(t, k))
		for _, c := range e.Board().Free() {
			require.NoError(t, e.Credit(c, game.Win, 5))
			require.NoError(t, e.Credit(c, game.Loss, 7))
		}
	}
	return tbl
}

func rawBlob(t *testing.T, hdr header, recs ...record) []byte {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, binary.Write(zw, binary.LittleEndian, hdr))
	for _, r := range recs {
		require.NoError(t, binary.Write(zw, binary.LittleEndian, r))
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestMarshalUnmarshal(t *testing.T) {
	tbl := trainedTable(t)
	data, err := Marshal(tbl)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, tbl.Keys(), got.Keys())
	assert.Equal(t, tbl.Report(), got.Report())
	for _, k := range tbl.Keys() {
		want, _ := tbl.Get(k)
		have, _ := got.Get(k)
		assert.Equal(t, want.Board().Effectiveness(), have.Board().Effectiveness(), k)
	}
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(New())
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestUnmarshalRejects(t *testing.T) {
	var good record
	copy(good.Key[:], "x________")

	bad := good
	bad.Counters[3][1] = math32.NaN()

	negative := good
	negative.Counters[0][2] = -1

	badKey := good
	copy(badKey.Key[:], "x_______q")

	upper := good
	copy(upper.Key[:], "X________")

	spaced := good
	copy(spaced.Key[:], " ________")

	cases := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("definitely not a table")},
		{"empty", nil},
		{"magic", rawBlob(t, header{Magic: [4]byte{'J', 'A', 'V', 'A'}, Version: Version})},
		{"version", rawBlob(t, header{Magic: magic, Version: Version + 1})},
		{"too many", rawBlob(t, header{Magic: magic, Version: Version, Count: maxEntries + 1})},
		{"truncated", rawBlob(t, header{Magic: magic, Version: Version, Count: 2}, good)},
		{"nan", rawBlob(t, header{Magic: magic, Version: Version, Count: 1}, bad)},
		{"negative", rawBlob(t, header{Magic: magic, Version: Version, Count: 1}, negative)},
		{"key", rawBlob(t, header{Magic: magic, Version: Version, Count: 1}, badKey)},
		{"duplicate", rawBlob(t, header{Magic: magic, Version: Version, Count: 2}, good, good)},
		{"upper case key", rawBlob(t, header{Magic: magic, Version: Version, Count: 1}, upper)},
		{"spaced key", rawBlob(t, header{Magic: magic, Version: Version, Count: 1}, spaced)},
		{"trailing record", rawBlob(t, header{Magic: magic, Version: Version, Count: 1}, good, negative)},
		{"trailing frame", append(rawBlob(t, header{Magic: magic, Version: Version, Count: 1}, good), rawBlob(t, header{})...)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Unmarshal(c.data)
			assert.Error(t, err)
		})
	}

	tbl, err := Unmarshal(rawBlob(t, header{Magic: magic, Version: Version, Count: 1}, good))
	require.NoError(t, err)
	assert.Equal(t, []string{"x________"}, tbl.Keys())
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultFile)

	tbl := trainedTable(t)
	require.NoError(t, SaveFile(path, tbl))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Report(), got.Report())

	loaded := LoadFile(path)
	assert.Equal(t, tbl.Len(), loaded.Len())

	matches, err := filepath.Glob(filepath.Join(dir, "nested", "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLoadFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	assert.Zero(t, LoadFile(filepath.Join(dir, "missing.gmf")).Len())
	assert.Zero(t, LoadFile("").Len())

	corrupt := filepath.Join(dir, "corrupt.gmf")
	require.NoError(t, os.WriteFile(corrupt, []byte{0xde, 0xad, 0xbe, 0xef}, 0o644))
	assert.Zero(t, LoadFile(corrupt).Len())

	_, err := ReadFile(corrupt)
	assert.Error(t, err)
}
