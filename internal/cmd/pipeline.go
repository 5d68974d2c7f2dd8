package cmd

import (
	"path/filepath"

	"git.sr.ht/~mariusor/lw"
	"github.com/go-ap/errors"

	"git.sr.ht/~mariusor/guildcal/calendar"
	"git.sr.ht/~mariusor/guildcal/publish"
	"git.sr.ht/~mariusor/guildcal/storage"
	"git.sr.ht/~mariusor/guildcal/storage/boltdb"
	"git.sr.ht/~mariusor/guildcal/storage/file"
)

func logger(debug bool) lw.Logger {
	lvl := lw.InfoLevel
	if debug {
		lvl = lw.DebugLevel
	}
	return lw.Dev(lw.SetLevel(lvl))
}

// pipeline holds the storage and the publication controller built from a Config.
type pipeline struct {
	store  storage.Store
	ledger storage.Ledger
	ctl    *publish.Controller
}

// newPipeline creates the output and data folders if needed. src can be nil
// for commands that never publish.
func newPipeline(conf Config, src calendar.Source, l lw.Logger) (*pipeline, error) {
	if err := MkDirIfNotExists(conf.Output); err != nil {
		return nil, errors.Annotatef(err, "invalid output folder %s", conf.Output)
	}
	if err := MkDirIfNotExists(conf.Data); err != nil {
		return nil, errors.Annotatef(err, "invalid data folder %s", conf.Data)
	}

	p := pipeline{
		store: file.New(file.Config{
			Path:  conf.Output,
			LogFn: l.Debugf,
			ErrFn: l.Errorf,
		}),
		ledger: boltdb.New(boltdb.Config{
			Path:  filepath.Join(conf.Data, boltdb.DefaultFile),
			LogFn: l.Debugf,
			ErrFn: l.Errorf,
		}),
	}
	asm := calendar.NewAssembler(src, calendar.WithSampleSize(conf.SampleSize), calendar.WithLogger(l))
	p.ctl = publish.New(publish.Config{
		Assembler: asm,
		Store:     p.store,
		Ledger:    p.ledger,
		Logger:    l,
		Timeout:   conf.PublishTimeout,
	})
	return &p, nil
}
