package table

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/chewxy/math32"
	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Version is the current version of the persisted format.
const Version = 1

// maxEntries bounds the number of records a blob may claim: every cell empty, x or o.
const maxEntries = 19683

var magic = [4]byte{'M', 'N', 'C', 'E'}

// The blob is a zstd frame holding a header followed by Count records.
// All numbers are little endian.
type header struct {
	Magic   [4]byte
	Version uint16
	Count   uint32
}

type record struct {
	Key      [ttt.MaxMoves]byte
	Counters [ttt.MaxMoves][3]float32 // win, draw, loss per cell in row-major order
}

func toRecord(e *Entry) record {
	var rec record
	copy(rec.Key[:], e.Key())
	b := e.Board()
	for i := range rec.Counters {
		c, _ := b.At(game.Coord{Row: i / ttt.Size, Col: i % ttt.Size})
		rec.Counters[i] = [3]float32{c.Win, c.Draw, c.Loss}
	}
	return rec
}

func fromRecord(rec record) (*Entry, error) {
	b, err := ttt.ParseKey(string(rec.Key[:]))
	if err != nil {
		return nil, err
	}
	for i, counters := range rec.Counters {
		for _, v := range counters {
			if math32.IsNaN(v) || math32.IsInf(v, 0) || v < 0 {
				return nil, errors.Errorf("Invalid counter %v for cell %d of %q", v, i, rec.Key[:])
			}
		}
		b.SetCounters(game.Coord{Row: i / ttt.Size, Col: i % ttt.Size}, counters[0], counters[1], counters[2])
	}
	return &Entry{key: b.Key(), board: b}, nil
}

// Encode writes t to w.
func Encode(w io.Writer, t *Table) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "Unable to create zstd writer")
	}

	keys := t.Keys()
	hdr := header{Magic: magic, Version: Version, Count: uint32(len(keys))}
	if err = binary.Write(zw, binary.LittleEndian, hdr); err != nil {
		zw.Close()
		return errors.Wrap(err, "Unable to write header")
	}
	for _, k := range keys {
		e, ok := t.Get(k)
		if !ok {
			// keys only grow, unless the table was replaced meanwhile
			zw.Close()
			return errors.Errorf("Entry %q vanished while encoding", k)
		}
		if err = binary.Write(zw, binary.LittleEndian, toRecord(e)); err != nil {
			zw.Close()
			return errors.Wrapf(err, "Unable to write entry %q", k)
		}
	}
	return errors.Wrap(zw.Close(), "Unable to flush zstd writer")
}

// Decode reads a table written by Encode.
func Decode(r io.Reader) (*Table, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create zstd reader")
	}
	defer zr.Close()

	var hdr header
	if err = binary.Read(zr, binary.LittleEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "Unable to read header")
	}
	if hdr.Magic != magic {
		return nil, errors.Errorf("Not a value table. Magic %q", hdr.Magic[:])
	}
	if hdr.Version != Version {
		return nil, errors.Errorf("Unsupported version %d. Expected %d", hdr.Version, Version)
	}
	if hdr.Count > maxEntries {
		return nil, errors.Errorf("Table claims %d entries. At most %d are possible", hdr.Count, maxEntries)
	}

	t := New()
	for i := uint32(0); i < hdr.Count; i++ {
		var rec record
		if err = binary.Read(zr, binary.LittleEndian, &rec); err != nil {
			return nil, errors.Wrapf(err, "Unable to read entry %d of %d", i, hdr.Count)
		}
		e, err := fromRecord(rec)
		if err != nil {
			return nil, errors.WithMessagef(err, "Entry %d", i)
		}
		if _, ok := t.Get(e.key); ok {
			return nil, errors.Errorf("Duplicate entry %q", e.key)
		}
		t.put(e)
	}
	if _, err = io.ReadFull(zr, make([]byte, 1)); err != io.EOF {
		return nil, errors.Errorf("Unexpected data after %d entries", hdr.Count)
	}
	return t, nil
}

// Marshal encodes t as an opaque blob.
func Marshal(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a blob produced by Marshal.
func Unmarshal(data []byte) (*Table, error) {
	return Decode(bytes.NewReader(data))
}
