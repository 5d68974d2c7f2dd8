package calendar

import (
	"context"
	"fmt"
	"strings"

	"git.sr.ht/~mariusor/guildcal"
	"git.sr.ht/~mariusor/lw"
)

const (
	DefaultSampleSize = 5

	eventURLFmt = "https://discord.com/events/%s/%s"
)

// Assembler builds calendar documents from the scheduled events of a guild.
type Assembler struct {
	src        Source
	sampleSize int
	l          lw.Logger
}

type AssemblerOption func(*Assembler)

// WithSampleSize sets the maximum number of interested users named in descriptions.
func WithSampleSize(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.sampleSize = n
		}
	}
}

func WithLogger(l lw.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.l = l
		}
	}
}

func NewAssembler(src Source, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		src:        src,
		sampleSize: DefaultSampleSize,
		l:          lw.Nil(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EventURL returns the canonical Discord page of a scheduled event.
func EventURL(communityID, eventID string) string {
	return fmt.Sprintf(eventURLFmt, communityID, eventID)
}

// Build converts ev to an Entry. Failing to load the interested users or the
// channel name only removes that information from the entry.
func (a *Assembler) Build(ctx context.Context, communityID string, ev guildcal.ScheduledEvent) Entry {
	u := EventURL(communityID, ev.ID)
	return Entry{
		UID:         ev.ID,
		Summary:     ev.Name,
		Description: Description(ev.Description, ev.InterestedCount, a.interestedNames(ctx, communityID, ev), u),
		URL:         u,
		Location:    a.location(ctx, ev),
		Start:       ev.Start.UTC(),
		End:         ev.EndOrStart().UTC(),
	}
}

func (a *Assembler) interestedNames(ctx context.Context, communityID string, ev guildcal.ScheduledEvent) []string {
	if ev.InterestedCount <= 0 {
		return nil
	}
	users, err := a.src.InterestedUsers(ctx, communityID, ev.ID, a.sampleSize)
	if err != nil {
		a.l.WithContext(lw.Ctx{"guild": communityID, "event": ev.ID}).Warnf("unable to load interested users: %s", err)
		return nil
	}
	if len(users) > a.sampleSize {
		users = users[:a.sampleSize]
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.DisplayName()
	}
	return names
}

func (a *Assembler) location(ctx context.Context, ev guildcal.ScheduledEvent) string {
	switch loc := ev.Location.(type) {
	case guildcal.ChannelLocation:
		name, err := a.src.ChannelName(ctx, loc.ChannelID)
		if err != nil {
			a.l.WithContext(lw.Ctx{"event": ev.ID, "channel": loc.ChannelID}).Warnf("unable to resolve channel: %s", err)
			return ""
		}
		return "🔊 " + name
	case guildcal.ExternalLocation:
		return loc.Text
	}
	return ""
}

// Description composes the paragraphs of an entry's description: the raw event
// description, a summary of the interested users and the event URL.
func Description(raw string, count int, names []string, eventURL string) string {
	paragraphs := make([]string, 0, 3)
	if raw != "" {
		paragraphs = append(paragraphs, raw)
	}
	if count > 0 {
		paragraphs = append(paragraphs, interest(count, names))
	}
	paragraphs = append(paragraphs, eventURL)
	return strings.Join(paragraphs, "\n\n")
}

func interest(count int, names []string) string {
	who := "people"
	if count == 1 {
		who = "person"
	}
	s := fmt.Sprintf("%d %s interested", count, who)
	if len(names) == 0 {
		return s
	}
	if len(names) < count {
		names = append(names[:len(names):len(names)], "and others")
	}
	return s + ": " + strings.Join(names, ", ")
}
