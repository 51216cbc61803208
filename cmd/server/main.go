// Command server serves a menace engine over HTTP. The table is loaded at
// start and saved when the server stops.
package main

import (
	"context"
	"flag"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorgonia/menace"
	"github.com/gorgonia/menace/internal/cli"
	"github.com/gorgonia/menace/server"
	"github.com/gorgonia/menace/table"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr, nil); err != nil {
		log.Fatal().Err(err).Msg("server-failed")
	}
}

// run serves until ctx is done. ready, if not nil, receives the listening address.
func run(ctx context.Context, args []string, stderr io.Writer, ready chan<- string) error {
	if err := cli.LoadEnv(); err != nil {
		return err
	}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		tablePath = fs.String("table", cli.Env(cli.EnvTable, table.DefaultFile), "table file to load at start and save at exit")
		addr      = fs.String("addr", cli.Env(cli.EnvAddr, ":8080"), "listen address")
		tieBreak  = fs.String("tiebreak", "random", "tie break between equal cells: random or first")
		logLevel  = fs.String("loglevel", cli.Env(cli.EnvLogLevel, "info"), "log level")
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
	srv := &http.Server{Handler: server.New(e)}
	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return errors.WithStack(err)
	}
	log.Info().Str("addr", ln.Addr().String()).Int("entries", e.Table().Len()).Msg("server-listening")
	if ready != nil {
		ready <- ln.Addr().String()
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown-requested")
	case err, ok := <-serverErr:
		if ok {
			runErr = errors.WithStack(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful-shutdown-failed")
		_ = srv.Close()
	}

	if err := table.SaveFile(*tablePath, e.Table()); err != nil {
		return errors.WithMessage(err, "Unable to save table")
	}
	log.Info().Str("table", *tablePath).Int("entries", e.Table().Len()).Msg("table-saved")
	return runErr
}
