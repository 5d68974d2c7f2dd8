package calendar

import (
	"context"

	"git.sr.ht/~mariusor/lw"
	"github.com/go-ap/errors"

	"git.sr.ht/~mariusor/guildcal"
)

// Assemble loads the scheduled events of the guild and builds its calendar.
// Only failing to load the events list is an error, in which case no document is returned.
func (a *Assembler) Assemble(ctx context.Context, communityID string) (Document, error) {
	l := a.l.WithContext(lw.Ctx{"guild": communityID})

	com := guildcal.Community{ID: communityID}
	name, err := a.src.CommunityName(ctx, communityID)
	if err != nil {
		l.Warnf("unable to load guild name: %s", err)
	} else {
		com.Name = name
	}

	events, err := a.src.ScheduledEvents(ctx, communityID, true)
	if err != nil {
		return Document{}, errors.Annotatef(err, "unable to load scheduled events for %s", communityID)
	}

	doc := Document{
		Name:    com.DisplayName(),
		Entries: make(Entries, 0, len(events)),
	}
	for _, ev := range events {
		doc.Entries = append(doc.Entries, a.Build(ctx, communityID, ev))
	}
	l.Debugf("assembled %d entries", len(doc.Entries))
	return doc, nil
}
