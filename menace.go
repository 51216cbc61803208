// Package menace is a self-play learner for tic-tac-toe. It keeps a table of
// boards it has seen, with per-cell counters of how games went after playing
// each cell, and plays the free cell with the best record.
package menace

import (
	"io"

	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Trainer is the top level structure: a learning engine playing games against
// an opponent in an arena.
type Trainer struct {
	// state
	Arena
	Statistics
	engine *Engine

	// config
	conf Config
}

// New creates a trainer. The table is loaded from conf.TablePath; a missing or
// broken file gives an empty table.
func New(conf Config) *Trainer {
	if !conf.IsValid() {
		panic("Config is not valid. Unable to proceed")
	}
	e := NewEngine(table.LoadFile(conf.TablePath), conf.TieBreak)
	return &Trainer{
		Arena:      MakeArena(NewLearner(e, conf.Symmetric), newOpponent(conf.Opponent, e, conf), conf.OutputEncoder, conf.Name),
		Statistics: makeStatistics(),
		engine:     e,
		conf:       conf,
	}
}

// Engine is the learning engine.
func (t *Trainer) Engine() *Engine { return t.engine }

// Learn plays episodes games in each of epochs epochs. Games in an epoch run
// on up to conf.Workers goroutines.
func (t *Trainer) Learn(epochs, episodes int) error {
	for t.epoch = 0; t.epoch < epochs; t.epoch++ {
		t.A.resetStats()
		t.B.resetStats()

		var g errgroup.Group
		g.SetLimit(t.conf.Workers)
		for e := 0; e < episodes; e++ {
			g.Go(func() error {
				_, err := t.Play()
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return errors.WithMessagef(err, "Epoch %d", t.epoch)
		}

		t.update(t.A)
		t.update(t.B)
		wins, loss, draw := t.A.stats()
		log.Info().
			Int("epoch", t.epoch).
			Float32("wins", wins).
			Float32("losses", loss).
			Float32("draws", draw).
			Int("entries", t.engine.Table().Len()).
			Msg("epoch-done")
	}
	if t.enc != nil {
		return errors.Wrap(t.enc.Flush(), "Unable to flush output encoder")
	}
	return nil
}

// Save writes the table to filename.
func (t *Trainer) Save(filename string) error {
	return table.SaveFile(filename, t.engine.Table())
}

// Load replaces the table with the one stored in filename.
func (t *Trainer) Load(filename string) error {
	tbl, err := table.ReadFile(filename)
	if err != nil {
		return err
	}
	t.engine.Table().Replace(tbl)
	return nil
}

// Close saves the table to conf.TablePath, when there is one, and closes the
// output encoder if it can be closed.
func (t *Trainer) Close() error {
	var allErrs manyErr
	if t.conf.TablePath != "" {
		if err := t.Save(t.conf.TablePath); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	if c, ok := t.enc.(io.Closer); ok {
		if err := c.Close(); err != nil {
			allErrs = append(allErrs, errors.Wrap(err, "Unable to close output encoder"))
		}
	}
	if len(allErrs) > 0 {
		return allErrs
	}
	return nil
}
