package table

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultFile is where a table is kept when nothing else is configured.
const DefaultFile = "trainedModel.gmf"

// ReadFile decodes the table stored at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	t, err := Decode(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "Unable to decode %s", path)
	}
	return t, nil
}

// LoadFile reads the table at path. A missing or unreadable file is not an
// error: an empty table is returned instead.
func LoadFile(path string) *Table {
	if path == "" {
		log.Debug().Msg("table-load-skipped")
		return New()
	}
	t, err := ReadFile(path)
	switch {
	case err == nil:
		log.Info().Str("path", path).Int("entries", t.Len()).Msg("table-loaded")
		return t
	case os.IsNotExist(errors.Cause(err)):
		log.Info().Str("path", path).Msg("table-not-found-starting-empty")
	default:
		log.Warn().Err(err).Str("path", path).Msg("table-unreadable-starting-empty")
	}
	return New()
}

// SaveFile writes t to path. The file is replaced atomically.
func SaveFile(path string, t *Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "Unable to create directory %s", dir)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WithStack(err)
	}
	tmp := f.Name()
	if err = Encode(f, t); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.WithMessagef(err, "Unable to encode %s", path)
	}
	if err = f.Close(); err != nil {
		os.Remove(tmp)
		return errors.WithStack(err)
	}
	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.WithStack(err)
	}
	log.Debug().Str("path", path).Int("entries", t.Len()).Msg("table-saved")
	return nil
}
