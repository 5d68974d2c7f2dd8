package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-ap/errors"

	"git.sr.ht/~mariusor/guildcal"
)

const DefaultTimeout = 30 * time.Second

// Intents are the gateway intents needed for the lifecycle notifications.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildScheduledEvents |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentMessageContent

// Source loads guild data from the Discord API. The session's state cache is
// used first where it can hold the requested objects.
type Source struct {
	s       *discordgo.Session
	timeout time.Duration
}

func NewSource(s *discordgo.Session, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source{s: s, timeout: timeout}
}

// Session opens a discordgo session for token, it is not connected to the gateway.
func Session(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.Newf("empty Discord token")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Annotatef(err, "unable to create Discord session")
	}
	s.Identify.Intents = Intents
	return s, nil
}

// request bounds a single API call by the source's timeout.
func (d *Source) request(ctx context.Context) (discordgo.RequestOption, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	return discordgo.WithContext(ctx), cancel
}

func (d *Source) CommunityName(ctx context.Context, communityID string) (string, error) {
	if g, err := d.s.State.Guild(communityID); err == nil && g.Name != "" {
		return g.Name, nil
	}
	opt, cancel := d.request(ctx)
	defer cancel()

	g, err := d.s.Guild(communityID, opt)
	if err != nil {
		return "", errors.Annotatef(err, "unable to load guild %s", communityID)
	}
	return g.Name, nil
}

func (d *Source) ScheduledEvents(ctx context.Context, communityID string, withCounts bool) (guildcal.ScheduledEvents, error) {
	opt, cancel := d.request(ctx)
	defer cancel()

	events, err := d.s.GuildScheduledEvents(communityID, withCounts, opt)
	if err != nil {
		return nil, errors.Annotatef(err, "unable to load scheduled events of guild %s", communityID)
	}
	return ConvertEvents(events), nil
}

// InterestedUsers loads the first limit users, in the order they subscribed.
func (d *Source) InterestedUsers(ctx context.Context, communityID, eventID string, limit int) ([]guildcal.User, error) {
	opt, cancel := d.request(ctx)
	defer cancel()

	users, err := d.s.GuildScheduledEventUsers(communityID, eventID, limit, true, "", "", opt)
	if err != nil {
		return nil, errors.Annotatef(err, "unable to load users interested in %s", eventID)
	}
	result := make([]guildcal.User, 0, len(users))
	for _, u := range users {
		if u == nil {
			continue
		}
		result = append(result, ConvertUser(u))
	}
	return result, nil
}

func (d *Source) ChannelName(ctx context.Context, channelID string) (string, error) {
	if ch, err := d.s.State.Channel(channelID); err == nil {
		return ch.Name, nil
	}
	opt, cancel := d.request(ctx)
	defer cancel()

	ch, err := d.s.Channel(channelID, opt)
	if err != nil {
		return "", errors.Annotatef(err, "unable to load channel %s", channelID)
	}
	return ch.Name, nil
}

// Communities returns the guilds in the session's state.
func (d *Source) Communities() []string {
	return knownGuilds(d.s.State)
}

func knownGuilds(st *discordgo.State) []string {
	if st == nil {
		return nil
	}
	st.RLock()
	defer st.RUnlock()

	ids := make([]string, 0, len(st.Guilds))
	for _, g := range st.Guilds {
		ids = append(ids, g.ID)
	}
	return ids
}
