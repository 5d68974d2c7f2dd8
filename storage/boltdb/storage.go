package boltdb

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/go-ap/errors"
	bolt "go.etcd.io/bbolt"

	"git.sr.ht/~mariusor/guildcal/storage"
)

type LoggerFn func(string, ...interface{})

type repo struct {
	mu   sync.Mutex
	d    *bolt.DB
	root []byte
	path string
	log  LoggerFn
	err  LoggerFn
}

const (
	rootBucket  = "publications"
	DefaultFile = "guildcal.bdb"

	openTimeout = 2 * time.Second
)

// Config
type Config struct {
	Path  string
	LogFn LoggerFn
	ErrFn LoggerFn
}

// New returns a new publication ledger stored in the c.Path bolt database.
func New(c Config) *repo {
	b := repo{
		root: []byte(rootBucket),
		path: c.Path,
		log:  func(string, ...interface{}) {},
		err:  func(string, ...interface{}) {},
	}
	if c.ErrFn != nil {
		b.err = c.ErrFn
	}
	if c.LogFn != nil {
		b.log = c.LogFn
	}
	return &b
}

func (r *repo) open() error {
	var err error
	r.d, err = bolt.Open(r.path, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return errors.Annotatef(err, "could not open db %s", r.path)
	}
	err = r.d.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(r.root)
		if err != nil {
			return errors.Annotatef(err, "unable to create root bucket %s", r.root)
		}
		if !root.Writable() {
			return errors.Newf("non writeable root bucket %s", r.root)
		}
		return nil
	})
	if err != nil {
		r.close()
	}
	return err
}

// Close closes the boltdb database if possible.
func (r *repo) close() error {
	if r.d == nil {
		return nil
	}
	err := r.d.Close()
	r.d = nil
	return err
}

// with opens the database for the duration of fn.
func (r *repo) with(fn func(db *bolt.DB) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.open(); err != nil {
		return err
	}
	defer r.close()
	return fn(r.d)
}

func loadItem(raw []byte) (storage.Publication, error) {
	p := storage.Publication{}
	if len(raw) == 0 {
		return p, errors.Newf("empty raw item")
	}
	err := json.Unmarshal(raw, &p)
	return p, err
}

// LoadPublication
func (r *repo) LoadPublication(id string) (storage.Publication, error) {
	var p storage.Publication
	err := r.with(func(db *bolt.DB) error {
		return db.View(func(tx *bolt.Tx) error {
			rb := tx.Bucket(r.root)
			if rb == nil {
				return errors.Newf("invalid bucket %s", r.root)
			}
			raw := rb.Get([]byte(id))
			if raw == nil {
				return errors.NotFoundf("publication %s", id)
			}
			var err error
			p, err = loadItem(raw)
			return err
		})
	})
	return p, err
}

// LoadPublications returns all the publications, most recent first.
func (r *repo) LoadPublications() (storage.Publications, error) {
	pubs := make(storage.Publications, 0)
	err := r.with(func(db *bolt.DB) error {
		return db.View(func(tx *bolt.Tx) error {
			rb := tx.Bucket(r.root)
			if rb == nil {
				return errors.Newf("invalid bucket %s", r.root)
			}
			return rb.ForEach(func(k, raw []byte) error {
				p, err := loadItem(raw)
				if err != nil {
					r.err("unable to load publication %s: %s", k, err)
					return nil
				}
				if p.IsValid() {
					pubs = append(pubs, p)
				}
				return nil
			})
		})
	})
	sort.SliceStable(pubs, func(i, j int) bool {
		return pubs[i].Published.After(pubs[j].Published)
	})
	return pubs, err
}

// SavePublication
func (r *repo) SavePublication(p storage.Publication) error {
	if !p.IsValid() {
		return errors.Newf("invalid publication %s", p)
	}
	return r.with(func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			root := tx.Bucket(r.root)
			if root == nil {
				return errors.Newf("invalid bucket %s", r.root)
			}
			if !root.Writable() {
				return errors.Newf("non writeable bucket %s", r.root)
			}
			entryBytes, err := json.Marshal(p)
			if err != nil {
				return errors.Annotatef(err, "could not marshal publication")
			}
			if err = root.Put([]byte(p.CommunityID), entryBytes); err != nil {
				return errors.Annotatef(err, "could not store encoded publication")
			}
			r.log("saved publication %s", p)
			return nil
		})
	})
}

// RemovePublication
func (r *repo) RemovePublication(id string) error {
	return r.with(func(db *bolt.DB) error {
		return db.Update(func(tx *bolt.Tx) error {
			root := tx.Bucket(r.root)
			if root == nil {
				return errors.Newf("invalid bucket %s", r.root)
			}
			return root.Delete([]byte(id))
		})
	})
}
