package rules

import (
	"strings"

	"github.com/grinzing/jukei-line-yesterday/pkg/line"
)

const (
	carouselAltText    = "商品一覧"
	carouselThumbBase  = "https://example.com/"
	carouselDetailWord = "の詳細情報"
)

// body is the validated render payload of one rule row. Parsing a row into a
// body up front keeps the impossible combinations (media without a URL,
// template without labels) out of the render path entirely: such rows have no
// body and are the expander's skip case.
type body interface {
	messages() []line.Message
}

type textBody struct {
	text string
}

func (b textBody) messages() []line.Message {
	return []line.Message{line.NewTextMessage(b.text)}
}

type mediaBody struct {
	video   bool
	lead    string
	url     string
	preview string
}

func (b mediaBody) messages() []line.Message {
	msgs := make([]line.Message, 0, 2)
	if b.lead != "" {
		msgs = append(msgs, line.NewTextMessage(b.lead))
	}

	if b.video {
		msgs = append(msgs, line.NewVideoMessage(b.url, b.preview))
	} else {
		msgs = append(msgs, line.NewImageMessage(b.url))
	}

	return msgs
}

type buttonsBody struct {
	text   string
	labels []string
}

func (b buttonsBody) messages() []line.Message {
	actions := make([]line.Action, 0, len(b.labels))
	for _, label := range b.labels {
		actions = append(actions, line.NewMessageAction(label, label))
	}

	template := line.NewButtonsTemplate(b.text, actions)
	return []line.Message{line.NewTemplateMessage(b.text, template)}
}

type carouselBody struct {
	items []string
}

func (b carouselBody) messages() []line.Message {
	columns := make([]line.CarouselColumn, 0, len(b.items))
	for _, item := range b.items {
		columns = append(columns, line.CarouselColumn{
			ThumbnailImageURL: carouselThumbBase + strings.ToLower(item) + ".jpg",
			Title:             item,
			Text:              item + carouselDetailWord,
			Actions: []line.Action{
				line.NewMessageAction("詳細を見る", item+"の詳細"),
				line.NewMessageAction("購入する", item+"を購入"),
			},
		})
	}

	template := line.NewCarouselTemplate(columns)
	return []line.Message{line.NewTemplateMessage(carouselAltText, template)}
}

// parseBody validates one rule row into its render payload, or nil when the
// row cannot render (missing media URL, missing template labels, unknown type).
func parseBody(r Rule) body {
	switch r.Type {
	case KindText, KindQuickReply:
		return textBody{text: r.Output}
	case KindImage:
		if strings.TrimSpace(r.ImageURL) == "" {
			return nil
		}
		return mediaBody{lead: strings.TrimSpace(r.Output), url: r.ImageURL}
	case KindVideo:
		if strings.TrimSpace(r.VideoURL) == "" {
			return nil
		}
		return mediaBody{
			video:   true,
			lead:    strings.TrimSpace(r.Output),
			url:     r.VideoURL,
			preview: r.PreviewImageURL,
		}
	case KindButtons:
		labels := splitList(r.Buttons)
		if len(labels) == 0 {
			return nil
		}
		return buttonsBody{text: r.Output, labels: labels}
	case KindCarousel:
		items := splitList(r.Buttons)
		if len(items) == 0 {
			return nil
		}
		return carouselBody{items: items}
	default:
		return nil
	}
}

// Render converts one rule row into its outbound messages. A row renders to
// one message, or two for a media row with lead text. The second return is
// false when the row cannot render at all.
//
// Render is a pure function of the row: repeated calls yield fresh, equal
// messages.
func Render(r Rule) ([]line.Message, bool) {
	b := parseBody(r)
	if b == nil {
		return nil, false
	}

	msgs := b.messages()

	if sender := senderOverride(r); sender != nil {
		for _, msg := range msgs {
			msg.AttachSender(sender)
		}
	}

	// Quick replies attach to the row's own message only when that message is
	// text-kind. A media row's final message is the media itself, so its
	// quick_replies field has nowhere to go and is dropped.
	if options := splitList(r.QuickReplies); len(options) > 0 {
		if text, ok := msgs[len(msgs)-1].(*line.TextMessage); ok {
			text.QuickReply = line.NewQuickReply(options)
		}
	}

	return msgs, true
}

// senderOverride returns the rule's identity override, or nil unless both the
// name and the icon URL are present.
func senderOverride(r Rule) *line.Sender {
	if r.SenderName == "" || r.SenderIconURL == "" {
		return nil
	}

	return &line.Sender{Name: r.SenderName, IconURL: r.SenderIconURL}
}
