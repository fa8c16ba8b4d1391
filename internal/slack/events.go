package slack

// Envelope types delivered to the events endpoint.
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"

	// EventAppMention is the inner event type for @-mentions of the bot.
	EventAppMention = "app_mention"
)

// EventEnvelope is the outer wrapper of an Events API delivery.
type EventEnvelope struct {
	Type      string     `json:"type"`
	Challenge string     `json:"challenge"`
	EventID   string     `json:"event_id"`
	TeamID    string     `json:"team_id"`
	Event     InnerEvent `json:"event"`
}

// InnerEvent is the user-visible event carried by an event_callback envelope.
type InnerEvent struct {
	Type     string `json:"type"`
	Channel  string `json:"channel"`
	User     string `json:"user"`
	BotID    string `json:"bot_id"`
	Text     string `json:"text"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts"`
}

// ReplyThreadTS returns the timestamp replies should thread under: the
// existing thread if the mention happened inside one, otherwise the mention
// itself starts the thread.
func (e InnerEvent) ReplyThreadTS() string {
	if e.ThreadTS != "" {
		return e.ThreadTS
	}
	return e.TS
}
