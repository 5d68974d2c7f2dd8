package guildcal

import "fmt"

const (
	AppName = "guildcal"

	// DefaultCommunityName is used as the calendar name when the guild name can't be loaded.
	DefaultCommunityName = "Discord"
)

// Community is a Discord guild.
type Community struct {
	ID   string
	Name string
}

func (c Community) DisplayName() string {
	if c.Name == "" {
		return DefaultCommunityName
	}
	return c.Name
}

func (c Community) String() string {
	return fmt.Sprintf("%s[%s]", c.DisplayName(), c.ID)
}

// User is one of the users interested in a ScheduledEvent.
type User struct {
	ID         string
	Nick       string
	GlobalName string
	Username   string
}

// DisplayName returns the guild nickname, the global display name or the account name,
// whichever is set first.
func (u User) DisplayName() string {
	if u.Nick != "" {
		return u.Nick
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
