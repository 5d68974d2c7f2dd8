package trigger

// Notification is a lifecycle event received from the gateway.
type Notification interface {
	notification()
}

// Ready is sent once the gateway session is established, Communities is the
// list of guilds the session knows about.
type Ready struct {
	Communities []string
}

type CommunityJoined struct {
	CommunityID string
}

// CommunityLeft is received when the bot is removed from a guild or the
// guild is deleted.
type CommunityLeft struct {
	CommunityID string
}

type EventCreated struct {
	CommunityID string
	EventID     string
}

type EventUpdated struct {
	CommunityID string
	EventID     string
}

type EventDeleted struct {
	CommunityID string
	EventID     string
}

type RSVPAdded struct {
	CommunityID string
	EventID     string
	UserID      string
}

type RSVPRemoved struct {
	CommunityID string
	EventID     string
	UserID      string
}

// MessageCreated is a message posted in a channel the bot can see.
// CommunityID is empty for direct messages.
type MessageCreated struct {
	CommunityID string
	ChannelID   string
	MessageID   string
	Content     string
	Mentioned   bool
}

func (Ready) notification()           {}
func (CommunityJoined) notification() {}
func (CommunityLeft) notification()   {}
func (EventCreated) notification()    {}
func (EventUpdated) notification()    {}
func (EventDeleted) notification()    {}
func (RSVPAdded) notification()       {}
func (RSVPRemoved) notification()     {}
func (MessageCreated) notification()  {}
