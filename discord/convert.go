package discord

import (
	"github.com/bwmarrin/discordgo"

	"git.sr.ht/~mariusor/guildcal"
)

// ConvertEvent maps a discordgo scheduled event to its guildcal counterpart.
func ConvertEvent(e *discordgo.GuildScheduledEvent) guildcal.ScheduledEvent {
	ev := guildcal.ScheduledEvent{
		ID:              e.ID,
		CommunityID:     e.GuildID,
		Name:            e.Name,
		Description:     e.Description,
		Start:           e.ScheduledStartTime,
		InterestedCount: e.UserCount,
		Location:        location(e),
	}
	if e.ScheduledEndTime != nil && !e.ScheduledEndTime.IsZero() {
		end := *e.ScheduledEndTime
		ev.End = &end
	}
	return ev
}

// location returns the channel for stage and voice events and the entity
// metadata for external ones, Discord never sets both.
func location(e *discordgo.GuildScheduledEvent) guildcal.Location {
	if e.ChannelID != "" {
		return guildcal.ChannelLocation{ChannelID: e.ChannelID}
	}
	if e.EntityMetadata.Location != "" {
		return guildcal.ExternalLocation{Text: e.EntityMetadata.Location}
	}
	return nil
}

func ConvertEvents(events []*discordgo.GuildScheduledEvent) guildcal.ScheduledEvents {
	result := make(guildcal.ScheduledEvents, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		result = append(result, ConvertEvent(e))
	}
	return result
}

// ConvertUser maps an interested user, Member is only present when it was requested.
func ConvertUser(u *discordgo.GuildScheduledEventUser) guildcal.User {
	usr := guildcal.User{}
	if u.User != nil {
		usr.ID = u.User.ID
		usr.Username = u.User.Username
		usr.GlobalName = u.User.GlobalName
	}
	if u.Member != nil {
		usr.Nick = u.Member.Nick
	}
	return usr
}
