package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"git.sr.ht/~mariusor/lw"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultParallel bounds the guilds published at the same time on startup.
	DefaultParallel = 4

	replyTimeout = 10 * time.Second
)

type Kind int

const (
	KindPublish Kind = iota
	KindRemove
	KindReply
	KindPong
)

// PingCommand is the message content answered with PongText.
const (
	PingCommand = "!ping"
	PongText    = "Pong!"
)

func (k Kind) String() string {
	switch k {
	case KindPublish:
		return "publish"
	case KindRemove:
		return "remove"
	case KindReply:
		return "reply"
	case KindPong:
		return "pong"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Action is the work resolved from a Notification for a single guild.
type Action struct {
	Kind        Kind
	CommunityID string
	ChannelID   string
	MessageID   string
}

// Resolve maps n to the actions it requires. Notifications that can't be
// attributed to a guild resolve to nothing, except for PingCommand which is
// answered in direct messages too.
func Resolve(n Notification) []Action {
	switch n := n.(type) {
	case Ready:
		acts := make([]Action, 0, len(n.Communities))
		for _, id := range n.Communities {
			if id != "" {
				acts = append(acts, Action{Kind: KindPublish, CommunityID: id})
			}
		}
		return acts
	case CommunityJoined:
		return publish(n.CommunityID)
	case CommunityLeft:
		if n.CommunityID == "" {
			return nil
		}
		return []Action{{Kind: KindRemove, CommunityID: n.CommunityID}}
	case EventCreated:
		return publish(n.CommunityID)
	case EventUpdated:
		return publish(n.CommunityID)
	case EventDeleted:
		return publish(n.CommunityID)
	case RSVPAdded:
		return publish(n.CommunityID)
	case RSVPRemoved:
		return publish(n.CommunityID)
	case MessageCreated:
		if n.Content == PingCommand {
			return []Action{{Kind: KindPong, CommunityID: n.CommunityID, ChannelID: n.ChannelID, MessageID: n.MessageID}}
		}
		if n.CommunityID == "" || !n.Mentioned {
			return nil
		}
		return []Action{{Kind: KindReply, CommunityID: n.CommunityID, ChannelID: n.ChannelID, MessageID: n.MessageID}}
	}
	return nil
}

func publish(id string) []Action {
	if id == "" {
		return nil
	}
	return []Action{{Kind: KindPublish, CommunityID: id}}
}

// Publisher is the Publication Controller.
type Publisher interface {
	Publish(ctx context.Context, communityID string) error
	Remove(ctx context.Context, communityID string) error
}

// Replier posts text as a reply to a message.
type Replier interface {
	Reply(ctx context.Context, channelID, messageID, text string) error
}

type Config struct {
	Publisher Publisher
	// Replier is optional, without it mentions are ignored.
	Replier Replier
	// BaseURL is where the calendars are served from, it's used in replies.
	BaseURL  string
	Parallel int
	Logger   lw.Logger
}

// Dispatcher runs the actions of incoming notifications in the background.
type Dispatcher struct {
	pub      Publisher
	rep      Replier
	baseURL  string
	parallel int
	l        lw.Logger

	wg sync.WaitGroup
}

func New(c Config) *Dispatcher {
	d := Dispatcher{
		pub:      c.Publisher,
		rep:      c.Replier,
		baseURL:  c.BaseURL,
		parallel: c.Parallel,
		l:        c.Logger,
	}
	if d.l == nil {
		d.l = lw.Nil()
	}
	if d.parallel <= 0 {
		d.parallel = DefaultParallel
	}
	return &d
}

// Dispatch resolves n and starts its actions. It never waits for them to finish.
func (d *Dispatcher) Dispatch(n Notification) {
	acts := Resolve(n)
	if len(acts) == 0 {
		d.l.Debugf("ignoring %T", n)
		return
	}
	if _, ok := n.(Ready); ok {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runAll(acts)
		}()
		return
	}
	for _, act := range acts {
		d.wg.Add(1)
		go func(act Action) {
			defer d.wg.Done()
			d.run(act)
		}(act)
	}
}

// Wait blocks until all the started actions have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// runAll runs acts with at most d.parallel of them at the same time.
func (d *Dispatcher) runAll(acts []Action) {
	g := errgroup.Group{}
	g.SetLimit(d.parallel)
	for _, act := range acts {
		g.Go(func() error {
			d.run(act)
			return nil
		})
	}
	_ = g.Wait()
}

// run executes act. Publish and Remove failures are reported by the
// Publisher, only the reply failures are logged as errors here.
func (d *Dispatcher) run(act Action) {
	l := d.l.WithContext(lw.Ctx{"guild": act.CommunityID, "action": act.Kind.String()})

	var err error
	switch act.Kind {
	case KindPublish:
		err = d.pub.Publish(context.Background(), act.CommunityID)
	case KindRemove:
		err = d.pub.Remove(context.Background(), act.CommunityID)
	case KindReply:
		err = d.reply(act, ReplyText(d.baseURL, act.CommunityID))
	case KindPong:
		err = d.reply(act, PongText)
	}
	if err == nil {
		l.Debugf("done")
		return
	}
	if act.Kind == KindPublish || act.Kind == KindRemove {
		l.Debugf("failed: %s", err)
		return
	}
	l.Errorf("failed: %s", err)
}

func (d *Dispatcher) reply(act Action, text string) error {
	if d.rep == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()
	return d.rep.Reply(ctx, act.ChannelID, act.MessageID, text)
}
