package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/go-ap/errors"

	"git.sr.ht/~mariusor/guildcal/trigger"
)

// Dispatcher receives the notifications converted from gateway events.
type Dispatcher interface {
	Dispatch(trigger.Notification)
}

// Register adds the gateway handlers forwarding lifecycle events to d.
// The returned function removes them.
func Register(s *discordgo.Session, d Dispatcher) func() {
	removers := []func(){
		s.AddHandler(func(s *discordgo.Session, _ *discordgo.Ready) {
			d.Dispatch(trigger.Ready{Communities: knownGuilds(s.State)})
		}),
		s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildCreate) {
			d.Dispatch(guildCreate(e))
		}),
		s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildDelete) {
			if n := guildDelete(e); n != nil {
				d.Dispatch(n)
			}
		}),
		s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildScheduledEventCreate) {
			d.Dispatch(trigger.EventCreated{CommunityID: e.GuildID, EventID: e.ID})
		}),
		s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildScheduledEventUpdate) {
			d.Dispatch(trigger.EventUpdated{CommunityID: e.GuildID, EventID: e.ID})
		}),
		s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildScheduledEventDelete) {
			d.Dispatch(trigger.EventDeleted{CommunityID: e.GuildID, EventID: e.ID})
		}),
		s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildScheduledEventUserAdd) {
			d.Dispatch(trigger.RSVPAdded{CommunityID: e.GuildID, EventID: e.GuildScheduledEventID, UserID: e.UserID})
		}),
		s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildScheduledEventUserRemove) {
			d.Dispatch(trigger.RSVPRemoved{CommunityID: e.GuildID, EventID: e.GuildScheduledEventID, UserID: e.UserID})
		}),
		s.AddHandler(func(s *discordgo.Session, e *discordgo.MessageCreate) {
			if n := messageCreate(botID(s), e); n != nil {
				d.Dispatch(n)
			}
		}),
	}
	return func() {
		for _, rm := range removers {
			rm()
		}
	}
}

func botID(s *discordgo.Session) string {
	if s.State == nil || s.State.User == nil {
		return ""
	}
	return s.State.User.ID
}

func guildCreate(e *discordgo.GuildCreate) trigger.Notification {
	return trigger.CommunityJoined{CommunityID: e.ID}
}

// guildDelete ignores guilds that became unavailable because of an outage,
// the bot is still a member of those.
func guildDelete(e *discordgo.GuildDelete) trigger.Notification {
	if e.Guild == nil || e.Unavailable {
		return nil
	}
	return trigger.CommunityLeft{CommunityID: e.ID}
}

func messageCreate(botID string, e *discordgo.MessageCreate) trigger.Notification {
	if e.Message == nil || e.Author == nil || e.Author.Bot {
		return nil
	}
	n := trigger.MessageCreated{
		CommunityID: e.GuildID,
		ChannelID:   e.ChannelID,
		MessageID:   e.ID,
		Content:     e.Content,
	}
	for _, u := range e.Mentions {
		if u != nil && botID != "" && u.ID == botID {
			n.Mentioned = true
			break
		}
	}
	return n
}

// Replier answers messages in the channel they were posted in.
type Replier struct {
	s *discordgo.Session
}

func NewReplier(s *discordgo.Session) *Replier {
	return &Replier{s: s}
}

func (r *Replier) Reply(ctx context.Context, channelID, messageID, text string) error {
	ref := &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID}
	if _, err := r.s.ChannelMessageSendReply(channelID, text, ref, discordgo.WithContext(ctx)); err != nil {
		return errors.Annotatef(err, "unable to reply to message %s", messageID)
	}
	return nil
}
