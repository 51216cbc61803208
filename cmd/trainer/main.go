// Command trainer teaches a menace table by self-play and saves it.
package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gorgonia/menace"
	"github.com/gorgonia/menace/encoding/dot"
	"github.com/gorgonia/menace/encoding/gif"
	"github.com/gorgonia/menace/internal/cli"
	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("trainer-failed")
	}
}

func run(args []string, stderr io.Writer) error {
	if err := cli.LoadEnv(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		tablePath = fs.String("table", cli.Env(cli.EnvTable, table.DefaultFile), "table file to load and save")
		epochs    = fs.Int("epochs", 10, "number of epochs")
		episodes  = fs.Int("episodes", 1000, "games per epoch")
		workers   = fs.Int("workers", runtime.NumCPU(), "games played concurrently")
		opponent  = fs.String("opponent", "random", "opponent: random, self or greedy")
		tieBreak  = fs.String("tiebreak", "random", "tie break between equal cells: random or first")
		symmetric = fs.Bool("symmetric", true, "train on all four orientations of every game")
		gifPath   = fs.String("gif", "", "write every game to this animated gif")
		wsAddr    = fs.String("ws", "", "stream the games over a websocket at this address, e.g. :8081")
		statsPath = fs.String("stats", "", "write win/draw/loss statistics to this csv file")
		dotPath   = fs.String("dot", "", "write the trained table to this graphviz file")
		dotDepth  = fs.Int("dotdepth", 2, "markers on the deepest board drawn in the graphviz file, -1 for all")
		logLevel  = fs.String("loglevel", cli.Env(cli.EnvLogLevel, "info"), "log level")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cli.SetupLogging(*logLevel, stderr); err != nil {
		return err
	}

	conf := menace.DefaultConfig()
	conf.TablePath = *tablePath
	conf.Workers = *workers
	conf.Symmetric = *symmetric
	var err error
	if conf.Opponent, err = menace.ParseOpponent(*opponent); err != nil {
		return err
	}
	if conf.TieBreak, err = menace.ParseTieBreak(*tieBreak); err != nil {
		return err
	}
	if !conf.IsValid() {
		return errors.Errorf("Invalid configuration %+v", conf)
	}

	var encs multiEncoder
	if *gifPath != "" {
		f, err := os.Create(*gifPath)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		encs = append(encs, gif.NewGifEncoder(f, 600, 600))
	}
	if *wsAddr != "" {
		ws := NewEncoder(256)
		mux := http.NewServeMux()
		mux.Handle("/ws", ws)
		srv := &http.Server{Addr: *wsAddr, Handler: mux}
		go func() {
			log.Info().Str("addr", *wsAddr).Msg("websocket-listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("websocket-server-failed")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		encs = append(encs, ws)
	}
	if len(encs) > 0 {
		conf.OutputEncoder = encs
	}

	t := menace.New(conf)
	start := time.Now()
	learnErr := t.Learn(*epochs, *episodes)
	if err := t.Close(); err != nil {
		return errors.WithMessage(err, "Unable to save")
	}
	if learnErr != nil {
		return learnErr
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("entries", t.Engine().Table().Len()).
		Str("table", conf.TablePath).
		Msg("training-done")

	if *statsPath != "" {
		if err := t.Dump(*statsPath); err != nil {
			return errors.Wrap(err, "Unable to write statistics")
		}
	}
	if *dotPath != "" {
		g, err := dot.ToDot(t.Engine().Table(), *dotDepth)
		if err != nil {
			return err
		}
		if err = os.WriteFile(*dotPath, []byte(g), 0644); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
