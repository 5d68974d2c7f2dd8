package publish

import (
	"bytes"
	"context"
	"sync"
	"time"

	"git.sr.ht/~mariusor/lw"
	"github.com/go-ap/errors"

	"git.sr.ht/~mariusor/guildcal"
	"git.sr.ht/~mariusor/guildcal/calendar"
	"git.sr.ht/~mariusor/guildcal/storage"
)

const DefaultTimeout = time.Minute

type Assembler interface {
	Assemble(ctx context.Context, communityID string) (calendar.Document, error)
}

type Store interface {
	storage.Saver
	storage.Remover
}

type Config struct {
	Assembler Assembler
	Store     Store
	// Ledger is optional, failures to update it are only logged.
	Ledger  storage.Ledger
	Logger  lw.Logger
	Timeout time.Duration
	Clock   func() time.Time
}

type action int

const (
	actionPublish action = iota
	actionRemove
)

func (a action) String() string {
	if a == actionRemove {
		return "remove"
	}
	return "publish"
}

// flight is the queue of a single guild. While running, new requests are
// collected in waiters and served together by a single follow-up run.
type flight struct {
	next    action
	waiters []chan error
}

// Controller publishes and removes guild calendars. Operations for the same
// guild never overlap, operations for different guilds run in parallel.
type Controller struct {
	asm     Assembler
	st      Store
	ledger  storage.Ledger
	l       lw.Logger
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	flights map[string]*flight
}

func New(c Config) *Controller {
	ctl := Controller{
		asm:     c.Assembler,
		st:      c.Store,
		ledger:  c.Ledger,
		l:       c.Logger,
		timeout: c.Timeout,
		now:     c.Clock,
		flights: make(map[string]*flight),
	}
	if ctl.l == nil {
		ctl.l = lw.Nil()
	}
	if ctl.timeout <= 0 {
		ctl.timeout = DefaultTimeout
	}
	if ctl.now == nil {
		ctl.now = time.Now
	}
	return &ctl
}

// Publish regenerates the calendar of the guild and replaces its artifact.
// If loading or saving fails the previous artifact is kept.
func (c *Controller) Publish(ctx context.Context, communityID string) error {
	return c.enqueue(ctx, communityID, actionPublish)
}

// Remove deletes the artifact of the guild, it is not an error if there is none.
func (c *Controller) Remove(ctx context.Context, communityID string) error {
	return c.enqueue(ctx, communityID, actionRemove)
}

// enqueue waits for the result of the first run of communityID that starts
// after this call. ctx only bounds the wait, the run itself is bounded by the
// controller's timeout.
func (c *Controller) enqueue(ctx context.Context, communityID string, act action) error {
	if !guildcal.ValidID(communityID) {
		return errors.Newf("invalid guild id %q", communityID)
	}

	done := make(chan error, 1)

	c.mu.Lock()
	f, running := c.flights[communityID]
	if !running {
		f = new(flight)
		c.flights[communityID] = f
	}
	f.next = act
	f.waiters = append(f.waiters, done)
	c.mu.Unlock()

	if !running {
		go c.drain(communityID, f)
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) drain(communityID string, f *flight) {
	for {
		c.mu.Lock()
		waiters, act := f.waiters, f.next
		f.waiters = nil
		if len(waiters) == 0 {
			delete(c.flights, communityID)
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		err := c.run(communityID, act)
		for _, w := range waiters {
			w <- err
		}
	}
}

func (c *Controller) run(communityID string, act action) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	l := c.l.WithContext(lw.Ctx{"guild": communityID, "action": act.String()})
	var err error
	switch act {
	case actionRemove:
		err = c.remove(communityID)
	default:
		err = c.publish(ctx, communityID)
	}
	if err != nil {
		l.Errorf("failed: %s", err)
	}
	return err
}

func (c *Controller) publish(ctx context.Context, communityID string) error {
	doc, err := c.asm.Assemble(ctx, communityID)
	if err != nil {
		return err
	}

	now := c.now().UTC()
	buf := bytes.Buffer{}
	if err = doc.Encode(&buf, now); err != nil {
		return errors.Annotatef(err, "unable to encode calendar for %s", communityID)
	}
	if err = c.st.Save(communityID, buf.Bytes()); err != nil {
		return errors.Annotatef(err, "unable to save calendar for %s", communityID)
	}

	l := c.l.WithContext(lw.Ctx{"guild": communityID})
	l.Infof("published %q with %d entries", doc.Name, len(doc.Entries))
	if c.ledger != nil {
		p := storage.Publication{
			CommunityID: communityID,
			Name:        doc.Name,
			Entries:     len(doc.Entries),
			Size:        buf.Len(),
			Published:   now,
		}
		if err := c.ledger.SavePublication(p); err != nil {
			l.Warnf("unable to record publication: %s", err)
		}
	}
	return nil
}

func (c *Controller) remove(communityID string) error {
	if err := c.st.Remove(communityID); err != nil {
		return errors.Annotatef(err, "unable to remove calendar for %s", communityID)
	}
	l := c.l.WithContext(lw.Ctx{"guild": communityID})
	l.Infof("removed calendar")
	if c.ledger != nil {
		if err := c.ledger.RemovePublication(communityID); err != nil {
			l.Warnf("unable to remove publication record: %s", err)
		}
	}
	return nil
}
