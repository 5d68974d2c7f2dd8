package guildcal

import (
	"fmt"
	"time"
)

// Location is the place a ScheduledEvent happens in.
// It is either a ChannelLocation, an ExternalLocation or nil.
type Location interface {
	isLocation()
}

// ChannelLocation references a voice or stage channel of the guild.
type ChannelLocation struct {
	ChannelID string
}

// ExternalLocation is free text set by the event's creator.
type ExternalLocation struct {
	Text string
}

func (ChannelLocation) isLocation()  {}
func (ExternalLocation) isLocation() {}

// ScheduledEvent is a guild scheduled event as received from the remote platform.
type ScheduledEvent struct {
	ID              string
	CommunityID     string
	Name            string
	Description     string
	Start           time.Time
	End             *time.Time
	Location        Location
	InterestedCount int
}

type ScheduledEvents []ScheduledEvent

// EndOrStart returns the end of the event, or its start when no end was set.
func (e ScheduledEvent) EndOrStart() time.Time {
	if e.End == nil || e.End.IsZero() {
		return e.Start
	}
	return *e.End
}

func (e ScheduledEvent) IsValid() bool {
	return ValidID(e.ID) && !e.Start.IsZero()
}

func (e ScheduledEvent) String() string {
	return e.GoString()
}

func (e ScheduledEvent) GoString() string {
	fmtTime := e.Start.UTC().Format("2006-01-02 15:04 MST")
	return fmt.Sprintf("<[%s] %s @ %s//%s>", e.ID, e.Name, fmtTime, e.EndOrStart().Sub(e.Start))
}
