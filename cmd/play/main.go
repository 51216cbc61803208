// Command play serves the text protocol on stdin and stdout so that a human,
// or a program, can play against a trained table. Games played this way train
// the table further; "save" writes it back.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gorgonia/menace"
	"github.com/gorgonia/menace/gtp"
	"github.com/gorgonia/menace/internal/cli"
	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const version = "1.0"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("play-failed")
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := cli.LoadEnv(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		tablePath = fs.String("table", cli.Env(cli.EnvTable, table.DefaultFile), "table file")
		tieBreak  = fs.String("tiebreak", "random", "tie break between equal cells: random or first")
		logLevel  = fs.String("loglevel", cli.Env(cli.EnvLogLevel, "warn"), "log level")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cli.SetupLogging(*logLevel, stderr); err != nil {
		return err
	}
	tb, err := menace.ParseTieBreak(*tieBreak)
	if err != nil {
		return err
	}

	e := menace.NewEngine(table.LoadFile(*tablePath), tb)
	g := gtp.New(e, "menace", version, nil)
	g.Save = func() error { return table.SaveFile(*tablePath, e.Table()) }

	scanner := bufio.NewScanner(stdin)
	for !g.Done() && scanner.Scan() {
		resp, ok := g.Handle(scanner.Text())
		if !ok {
			continue
		}
		if _, err := fmt.Fprint(stdout, resp); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(scanner.Err())
}
