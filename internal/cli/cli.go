// Package cli holds what the commands share: environment defaults and logger setup.
package cli

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables read by the commands.
const (
	EnvTable    = "MENACE_TABLE"
	EnvAddr     = "MENACE_ADDR"
	EnvLogLevel = "MENACE_LOGLEVEL"
)

// LoadEnv loads the given dotenv files, ".env" if none are given. Missing files
// are not an error. Variables already set win over the files.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "Unable to load %s", f)
		}
	}
	return nil
}

// Env returns the value of key, or def when it is unset or blank.
func Env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// SetupLogging sets the global level and sends the global logger to w as
// human readable lines.
func SetupLogging(level string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return errors.Wrapf(err, "Unknown log level %q", level)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen})
	return nil
}
