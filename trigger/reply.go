package trigger

import (
	"fmt"
	"strings"
)

const subscribeHelp = `To subscribe to it:
- **Google Calendar**: Other calendars ➕ > From URL, then paste the link.
- **Apple Calendar**: File > New Calendar Subscription…, then paste the link.
- **Outlook**: Add calendar > Subscribe from web, then paste the link.
- **Thunderbird**: New Calendar > On the Network, then paste the link.`

// CalendarURL is the public address of the calendar of a guild.
func CalendarURL(baseURL, communityID string) string {
	return strings.TrimRight(baseURL, "/") + "/" + communityID
}

// ReplyText is the message sent back when the bot is mentioned.
func ReplyText(baseURL, communityID string) string {
	return fmt.Sprintf("📅 This server's events calendar is available at <%s>\n\n%s", CalendarURL(baseURL, communityID), subscribeHelp)
}
