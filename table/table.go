// Package table holds the learned policy: trained boards keyed by their content.
package table

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chewxy/math32"
	"github.com/gorgonia/menace/game"
	"github.com/gorgonia/menace/game/ttt"
	"github.com/samber/lo"
)

// Entry is a trained board. Its markers never change; its counters are
// guarded by the embedded mutex.
type Entry struct {
	sync.Mutex
	key   string
	board *ttt.Board
}

func newEntry(b *ttt.Board) *Entry {
	layout := b.Layout()
	return &Entry{key: layout.Key(), board: layout}
}

func (e *Entry) Key() string { return e.key }

// Board returns a copy of the trained board.
func (e *Entry) Board() *ttt.Board {
	e.Lock()
	defer e.Unlock()
	return e.board.Clone()
}

// Credit adds the outcome of a finished game to the cell at c.
func (e *Entry) Credit(c game.Coord, r game.Result, total int) error {
	e.Lock()
	defer e.Unlock()
	return e.board.Credit(c, r, total)
}

// EfficiencyBoard renders the entry as a grid: free cells show their
// effectiveness as a rounded percentage, occupied cells their marker.
func (e *Entry) EfficiencyBoard() string {
	b := e.Board()
	eff := b.Effectiveness()
	var buf strings.Builder
	for i := 0; i < ttt.Size; i++ {
		for j := 0; j < ttt.Size; j++ {
			if j > 0 {
				buf.WriteString("|")
			}
			cell, _ := b.At(game.Coord{Row: i, Col: j})
			if cell.IsFree() {
				pct := math32.Floor(100*eff[i*ttt.Size+j] + 0.5)
				fmt.Fprintf(&buf, "%4d", int(pct))
				continue
			}
			fmt.Fprintf(&buf, "%4s", cell.Marker.Glyph())
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// Table maps canonical keys to trained boards. It is safe for concurrent use.
type Table struct {
	sync.RWMutex
	entries map[string]*Entry
}

// New creates an empty table.
func New() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Len is the number of trained boards.
func (t *Table) Len() int {
	t.RLock()
	defer t.RUnlock()
	return len(t.entries)
}

// Get looks up a trained board by key.
func (t *Table) Get(key string) (*Entry, bool) {
	t.RLock()
	e, ok := t.entries[key]
	t.RUnlock()
	return e, ok
}

// GetOrCreate returns the entry for b's key, inserting a fresh board with b's
// markers and zeroed counters if there is none. b is not modified.
func (t *Table) GetOrCreate(b *ttt.Board) (e *Entry, created bool) {
	key := b.Key()
	if e, ok := t.Get(key); ok {
		return e, false
	}

	t.Lock()
	defer t.Unlock()
	if e, ok := t.entries[key]; ok {
		return e, false
	}
	e = newEntry(b)
	t.entries[key] = e
	return e, true
}

func (t *Table) put(e *Entry) {
	t.Lock()
	t.entries[e.key] = e
	t.Unlock()
}

// Keys returns the keys of all entries, sorted.
func (t *Table) Keys() []string {
	t.RLock()
	keys := lo.Keys(t.entries)
	t.RUnlock()
	sort.Strings(keys)
	return keys
}

// Range calls f for each entry in key order until f returns false.
func (t *Table) Range(f func(e *Entry) bool) {
	for _, k := range t.Keys() {
		e, ok := t.Get(k)
		if !ok {
			continue
		}
		if !f(e) {
			return
		}
	}
}

// Replace swaps the content of t for the content of other. Entries handed out
// before the swap stay usable but are no longer part of t.
func (t *Table) Replace(other *Table) {
	other.RLock()
	entries := make(map[string]*Entry, len(other.entries))
	for k, v := range other.entries {
		entries[k] = v
	}
	other.RUnlock()

	t.Lock()
	t.entries = entries
	t.Unlock()
}

// Report is the efficiency board of every entry, in key order.
func (t *Table) Report() []string {
	retVal := make([]string, 0, t.Len())
	t.Range(func(e *Entry) bool {
		retVal = append(retVal, e.EfficiencyBoard())
		return true
	})
	return retVal
}
