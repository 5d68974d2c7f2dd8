package storage

import (
	"fmt"
	"time"
)

// Saver replaces or creates the artifact stored under key.
type Saver interface {
	Save(key string, data []byte) error
}

// Loader returns the artifact stored under key, or a not found error.
type Loader interface {
	Load(key string) ([]byte, error)
}

// Remover deletes the artifact stored under key. A missing artifact is not an error.
type Remover interface {
	Remove(key string) error
}

type Store interface {
	Saver
	Loader
	Remover
}

// Publication describes the last successful publish of a guild calendar.
type Publication struct {
	CommunityID string
	Name        string
	Entries     int
	Size        int
	Published   time.Time
}

type Publications []Publication

func (p Publication) IsValid() bool {
	return p.CommunityID != "" && !p.Published.IsZero()
}

func (p Publication) String() string {
	return fmt.Sprintf("<[%s] %s: %d entries, %dB @ %s>", p.CommunityID, p.Name, p.Entries, p.Size, p.Published.Format("2006-01-02 15:04 MST"))
}

// Ledger keeps track of the published calendars.
type Ledger interface {
	SavePublication(Publication) error
	RemovePublication(communityID string) error
	LoadPublication(communityID string) (Publication, error)
	LoadPublications() (Publications, error)
}
