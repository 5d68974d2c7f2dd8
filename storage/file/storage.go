package file

import (
	"os"
	"path/filepath"

	"github.com/go-ap/errors"

	"git.sr.ht/~mariusor/guildcal"
)

type LoggerFn func(string, ...interface{})

type repo struct {
	path string
	log  LoggerFn
	err  LoggerFn
}

const (
	tmpPattern = ".guildcal-*.tmp"
	fileMode   = 0o644
)

// Config
type Config struct {
	Path  string
	LogFn LoggerFn
	ErrFn LoggerFn
}

// New returns a store keeping one file per guild in the c.Path folder.
func New(c Config) *repo {
	r := repo{
		path: c.Path,
		log:  func(string, ...interface{}) {},
		err:  func(string, ...interface{}) {},
	}
	if r.path == "" {
		r.path = "."
	}
	if c.ErrFn != nil {
		r.err = c.ErrFn
	}
	if c.LogFn != nil {
		r.log = c.LogFn
	}
	return &r
}

// Path returns the location of the artifact for key.
func (r *repo) Path(key string) (string, error) {
	if !guildcal.ValidID(key) {
		return "", errors.Newf("invalid artifact key %q", key)
	}
	return filepath.Join(r.path, key), nil
}

// Save writes data to a temporary file in the storage folder and renames it over
// the artifact, so readers only ever see a complete file.
func (r *repo) Save(key string, data []byte) error {
	p, err := r.Path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(r.path, tmpPattern)
	if err != nil {
		return errors.Annotatef(err, "unable to create temporary file in %s", r.path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Annotatef(err, "unable to write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Annotatef(err, "unable to sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return errors.Annotatef(err, "unable to close %s", tmpName)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		return errors.Annotatef(err, "unable to set permissions on %s", tmpName)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return errors.Annotatef(err, "unable to move calendar to %s", p)
	}
	r.log("saved %s: %dB", p, len(data))
	return nil
}

func (r *repo) Load(key string) ([]byte, error) {
	p, err := r.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("calendar %s", key)
		}
		return nil, errors.Annotatef(err, "unable to read %s", p)
	}
	return data, nil
}

func (r *repo) Remove(key string) error {
	p, err := r.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			r.log("nothing to remove at %s", p)
			return nil
		}
		return errors.Annotatef(err, "unable to remove %s", p)
	}
	r.log("removed %s", p)
	return nil
}
