package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.sr.ht/~mariusor/guildcal"
)

// Source is the remote API the calendars are loaded from.
type Source interface {
	CommunityName(ctx context.Context, communityID string) (string, error)
	ScheduledEvents(ctx context.Context, communityID string, withCounts bool) (guildcal.ScheduledEvents, error)
	InterestedUsers(ctx context.Context, communityID, eventID string, limit int) ([]guildcal.User, error)
	ChannelName(ctx context.Context, channelID string) (string, error)
}

// Entry is a VEVENT of a guild calendar.
type Entry struct {
	UID         string
	Summary     string
	Description string
	URL         string
	Location    string
	Start       time.Time
	End         time.Time
}

type Entries []Entry

// Document is the full calendar for a guild.
type Document struct {
	Name    string
	Entries Entries
}

func (e Entry) String() string {
	return e.GoString()
}

func (e Entry) GoString() string {
	fmtTime := e.Start.Format("2006-01-02 15:04 MST")
	loc := ""
	if e.Location != "" {
		loc = " (" + e.Location + ")"
	}
	return fmt.Sprintf("<[%s] %s%s @ %s//%s>", e.UID, e.Summary, loc, fmtTime, e.End.Sub(e.Start))
}

func (e Entries) String() string {
	return e.GoString()
}

func (e Entries) GoString() string {
	ss := make([]string, len(e))
	for i, ev := range e {
		ss[i] = ev.GoString()
	}
	return fmt.Sprintf("Entries[%d]:\n\t%s\n", len(e), strings.Join(ss, "\n\t"))
}
