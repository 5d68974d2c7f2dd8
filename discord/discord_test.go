package discord

import (
	"reflect"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"git.sr.ht/~mariusor/guildcal"
	"git.sr.ht/~mariusor/guildcal/trigger"
)

func TestConvertEvent(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name string
		in   discordgo.GuildScheduledEvent
		want guildcal.ScheduledEvent
	}{
		{
			name: "voice channel",
			in: discordgo.GuildScheduledEvent{
				ID: "999", GuildID: "111", Name: "Standup", ChannelID: "5",
				ScheduledStartTime: start, EntityType: discordgo.GuildScheduledEventEntityTypeVoice,
			},
			want: guildcal.ScheduledEvent{
				ID: "999", CommunityID: "111", Name: "Standup", Start: start,
				Location: guildcal.ChannelLocation{ChannelID: "5"},
			},
		},
		{
			name: "external",
			in: discordgo.GuildScheduledEvent{
				ID: "999", GuildID: "111", Name: "Meetup", Description: "Pizza",
				ScheduledStartTime: start, ScheduledEndTime: &end, UserCount: 3,
				EntityType:     discordgo.GuildScheduledEventEntityTypeExternal,
				EntityMetadata: discordgo.GuildScheduledEventEntityMetadata{Location: "Town hall"},
			},
			want: guildcal.ScheduledEvent{
				ID: "999", CommunityID: "111", Name: "Meetup", Description: "Pizza",
				Start: start, End: &end, InterestedCount: 3,
				Location: guildcal.ExternalLocation{Text: "Town hall"},
			},
		},
		{
			name: "no location",
			in:   discordgo.GuildScheduledEvent{ID: "999", GuildID: "111", ScheduledStartTime: start},
			want: guildcal.ScheduledEvent{ID: "999", CommunityID: "111", Start: start},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertEvent(&tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ConvertEvent() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConvertEventsSkipsNil(t *testing.T) {
	got := ConvertEvents([]*discordgo.GuildScheduledEvent{nil, {ID: "1"}})
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("ConvertEvents() = %v", got)
	}
}

func TestConvertUser(t *testing.T) {
	u := ConvertUser(&discordgo.GuildScheduledEventUser{
		User:   &discordgo.User{ID: "1", Username: "jdoe", GlobalName: "John"},
		Member: &discordgo.Member{Nick: "Johnny"},
	})
	if u.DisplayName() != "Johnny" {
		t.Errorf("DisplayName() = %q, want Johnny", u.DisplayName())
	}
	u = ConvertUser(&discordgo.GuildScheduledEventUser{User: &discordgo.User{ID: "1", Username: "jdoe"}})
	if u.DisplayName() != "jdoe" {
		t.Errorf("DisplayName() = %q, want jdoe", u.DisplayName())
	}
}

func TestGuildDelete(t *testing.T) {
	left := guildDelete(&discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "111"}})
	if left != (trigger.CommunityLeft{CommunityID: "111"}) {
		t.Errorf("guildDelete() = %v", left)
	}
	if n := guildDelete(&discordgo.GuildDelete{Guild: &discordgo.Guild{ID: "111", Unavailable: true}}); n != nil {
		t.Errorf("unavailable guilds should be ignored, got %v", n)
	}
}

func TestMessageCreate(t *testing.T) {
	bot := &discordgo.User{ID: "42", Bot: true}
	msg := func(guild string, author *discordgo.User, mentions ...*discordgo.User) *discordgo.MessageCreate {
		return &discordgo.MessageCreate{Message: &discordgo.Message{
			ID: "7", ChannelID: "6", GuildID: guild, Author: author, Mentions: mentions,
		}}
	}
	user := &discordgo.User{ID: "1"}

	tests := []struct {
		name string
		in   *discordgo.MessageCreate
		want trigger.Notification
	}{
		{"mention", msg("111", user, bot), trigger.MessageCreated{CommunityID: "111", ChannelID: "6", MessageID: "7", Mentioned: true}},
		{"other mention", msg("111", user, &discordgo.User{ID: "2"}), trigger.MessageCreated{CommunityID: "111", ChannelID: "6", MessageID: "7"}},
		{"from a bot", msg("111", bot, bot), nil},
		{"direct message", msg("", user, bot), trigger.MessageCreated{ChannelID: "6", MessageID: "7", Mentioned: true}},
		{"ping", &discordgo.MessageCreate{Message: &discordgo.Message{
			ID: "8", ChannelID: "6", Author: user, Content: "!ping",
		}}, trigger.MessageCreated{ChannelID: "6", MessageID: "8", Content: "!ping"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messageCreate(bot.ID, tt.in); got != tt.want {
				t.Errorf("messageCreate() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestKnownGuilds(t *testing.T) {
	st := discordgo.NewState()
	if err := st.GuildAdd(&discordgo.Guild{ID: "111"}); err != nil {
		t.Fatalf("GuildAdd() error: %s", err)
	}
	if got := knownGuilds(st); !reflect.DeepEqual(got, []string{"111"}) {
		t.Errorf("knownGuilds() = %v", got)
	}
}
