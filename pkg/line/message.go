package line

// Message is one outbound LINE message, shaped for the Messaging API wire
// format. Concrete message values marshal directly into a reply or push call.
type Message interface {
	// MessageType reports the LINE wire type discriminator.
	MessageType() string
	// AttachSender sets the per-message sender override. A nil sender is ignored.
	AttachSender(*Sender)
}

// Sender overrides the displayed bot identity for one message.
type Sender struct {
	Name    string `json:"name,omitempty"`
	IconURL string `json:"iconUrl,omitempty"`
}

// Action is a message action: tapping the labeled control sends its text back.
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// NewMessageAction builds a message action with the given label and send-back text.
func NewMessageAction(label, text string) Action {
	return Action{Type: "message", Label: label, Text: text}
}

// QuickReply holds the quick-reply options attached below a message.
type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

// QuickReplyItem is one tappable quick-reply option.
type QuickReplyItem struct {
	Type   string `json:"type"`
	Action Action `json:"action"`
}

// NewQuickReply builds a quick-reply set where each option sends its own label.
func NewQuickReply(options []string) *QuickReply {
	items := make([]QuickReplyItem, 0, len(options))
	for _, option := range options {
		items = append(items, QuickReplyItem{
			Type:   "action",
			Action: NewMessageAction(option, option),
		})
	}

	return &QuickReply{Items: items}
}

// TextMessage is a plain text message with optional sender and quick replies.
type TextMessage struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	Sender     *Sender     `json:"sender,omitempty"`
	QuickReply *QuickReply `json:"quickReply,omitempty"`
}

// NewTextMessage builds a text message.
func NewTextMessage(text string) *TextMessage {
	return &TextMessage{Type: "text", Text: text}
}

func (m *TextMessage) MessageType() string { return m.Type }

func (m *TextMessage) AttachSender(sender *Sender) {
	if sender != nil {
		m.Sender = sender
	}
}

// ImageMessage carries an image URL plus its preview thumbnail.
type ImageMessage struct {
	Type               string  `json:"type"`
	OriginalContentURL string  `json:"originalContentUrl"`
	PreviewImageURL    string  `json:"previewImageUrl"`
	Sender             *Sender `json:"sender,omitempty"`
}

// NewImageMessage builds an image message. The image itself doubles as preview.
func NewImageMessage(contentURL string) *ImageMessage {
	return &ImageMessage{
		Type:               "image",
		OriginalContentURL: contentURL,
		PreviewImageURL:    contentURL,
	}
}

func (m *ImageMessage) MessageType() string { return m.Type }

func (m *ImageMessage) AttachSender(sender *Sender) {
	if sender != nil {
		m.Sender = sender
	}
}

// VideoMessage carries a video URL plus a preview image.
type VideoMessage struct {
	Type               string  `json:"type"`
	OriginalContentURL string  `json:"originalContentUrl"`
	PreviewImageURL    string  `json:"previewImageUrl"`
	Sender             *Sender `json:"sender,omitempty"`
}

// NewVideoMessage builds a video message. An empty preview falls back to the
// video URL itself.
func NewVideoMessage(contentURL, previewURL string) *VideoMessage {
	if previewURL == "" {
		previewURL = contentURL
	}

	return &VideoMessage{
		Type:               "video",
		OriginalContentURL: contentURL,
		PreviewImageURL:    previewURL,
	}
}

func (m *VideoMessage) MessageType() string { return m.Type }

func (m *VideoMessage) AttachSender(sender *Sender) {
	if sender != nil {
		m.Sender = sender
	}
}

// Template is the inner payload of a template message.
type Template interface {
	TemplateType() string
}

// TemplateMessage wraps a buttons or carousel template with its alt text.
type TemplateMessage struct {
	Type     string   `json:"type"`
	AltText  string   `json:"altText"`
	Template Template `json:"template"`
	Sender   *Sender  `json:"sender,omitempty"`
}

// NewTemplateMessage builds a template message around the given template body.
func NewTemplateMessage(altText string, template Template) *TemplateMessage {
	return &TemplateMessage{Type: "template", AltText: altText, Template: template}
}

func (m *TemplateMessage) MessageType() string { return m.Type }

func (m *TemplateMessage) AttachSender(sender *Sender) {
	if sender != nil {
		m.Sender = sender
	}
}

// ButtonsTemplate shows one body text above a vertical list of action buttons.
type ButtonsTemplate struct {
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Actions []Action `json:"actions"`
}

// NewButtonsTemplate builds a buttons template with one action per label.
func NewButtonsTemplate(text string, actions []Action) *ButtonsTemplate {
	return &ButtonsTemplate{Type: "buttons", Text: text, Actions: actions}
}

func (t *ButtonsTemplate) TemplateType() string { return t.Type }

// CarouselColumn is one horizontally scrollable card of a carousel template.
type CarouselColumn struct {
	ThumbnailImageURL string   `json:"thumbnailImageUrl,omitempty"`
	Title             string   `json:"title,omitempty"`
	Text              string   `json:"text"`
	Actions           []Action `json:"actions"`
}

// CarouselTemplate shows a horizontally scrollable list of columns.
type CarouselTemplate struct {
	Type    string           `json:"type"`
	Columns []CarouselColumn `json:"columns"`
}

// NewCarouselTemplate builds a carousel template from its columns.
func NewCarouselTemplate(columns []CarouselColumn) *CarouselTemplate {
	return &CarouselTemplate{Type: "carousel", Columns: columns}
}

func (t *CarouselTemplate) TemplateType() string { return t.Type }
