package line

// Webhook event types handled by the bot. Other event types are ignored.
const (
	EventTypeMessage  = "message"
	EventTypeFollow   = "follow"
	EventTypeUnfollow = "unfollow"
)

// MessageTypeText marks a message event carrying plain text.
const MessageTypeText = "text"

// SignatureHeader carries the HMAC signature of a webhook delivery body.
const SignatureHeader = "X-Line-Signature"

// WebhookRequest is the JSON body of one webhook delivery. A single delivery
// may carry several events.
type WebhookRequest struct {
	Destination string  `json:"destination,omitempty"`
	Events      []Event `json:"events"`
}

// Event is one platform event inside a webhook delivery, discriminated by Type.
type Event struct {
	Type       string        `json:"type"`
	ReplyToken string        `json:"replyToken,omitempty"`
	Timestamp  int64         `json:"timestamp,omitempty"`
	Source     Source        `json:"source"`
	Message    *EventMessage `json:"message,omitempty"`
}

// Source identifies where an event originated.
type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId,omitempty"`
}

// EventMessage is the message payload of a message event.
type EventMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
}
