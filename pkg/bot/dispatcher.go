// Package bot orchestrates one webhook event through the rule engine:
// match the user text, expand the continuation run into a reply batch, and
// hand the batch to the platform sink, falling back to fixed replies when the
// table has no answer.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/grinzing/jukei-line-yesterday/pkg/line"
	"github.com/grinzing/jukei-line-yesterday/pkg/rules"
)

// WelcomeTrigger is the reserved input value that selects the follow-event
// welcome sequence from the rule table.
const WelcomeTrigger = "welcome"

const (
	fallbackText       = "よくわからない。もう一度考え直して送ってくれ"
	fallbackSenderName = "ハジメ"
	fallbackSenderIcon = "https://jukei-images.web.app/hajime.jpeg"

	// Hardcoded welcome, sent when the table has no welcome rule. Kept in
	// sync with the shipped rule source by hand; deliberately a literal so it
	// survives a broken or edited table.
	welcomeIntroText = "あナタは「呪いの画像」を見てしまいまシタ。\n" +
		"アノ画像を見た人は発狂しマス。\n" +
		"呪いヲ解くため二ハ、私ノ指示二従ってくだサイ。\n" +
		"マズは、GiGO3号店へ向カイまショウ。"
	welcomeDirectionText = "行動指示☝\n" +
		"GiGO3号館へ向カッテくだサイ。\n" +
		"GiGO3号館へ着いたラ『さんごうかん』と入力シテくだサイ。"
	welcomeQuickReplyLabel = "さんごうかん"

	defaultReplyTimeout = 15 * time.Second
	logPreviewLimit     = 120
)

// Sink delivers one reply batch to the chat platform. It is the only
// collaborator allowed to perform network I/O toward the platform.
type Sink interface {
	Reply(ctx context.Context, replyToken string, messages []line.Message) error
}

// Dispatcher routes verified webhook events through the rule engine to the sink.
type Dispatcher struct {
	store        *rules.Store
	sink         Sink
	log          *slog.Logger
	replyTimeout time.Duration
}

// Option adjusts Dispatcher construction.
type Option func(*Dispatcher)

// WithReplyTimeout bounds each sink call. Zero keeps the default.
func WithReplyTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.replyTimeout = timeout
		}
	}
}

// NewDispatcher wires the rule store and the output sink together.
func NewDispatcher(store *rules.Store, sink Sink, log *slog.Logger, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("rule store is required")
	}
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	if log == nil {
		log = slog.Default()
	}

	d := &Dispatcher{
		store:        store,
		sink:         sink,
		log:          log.With("component", "bot.dispatcher"),
		replyTimeout: defaultReplyTimeout,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// HandleEvent processes one webhook event. Unrecognized event types and
// non-text messages are ignored without error.
func (d *Dispatcher) HandleEvent(ctx context.Context, event line.Event) error {
	switch event.Type {
	case line.EventTypeMessage:
		if event.Message == nil || event.Message.Type != line.MessageTypeText {
			d.log.Debug("Ignoring non-text message event")
			return nil
		}
		return d.onTextMessage(ctx, event.ReplyToken, event.Message.Text)
	case line.EventTypeFollow:
		return d.onFollow(ctx, event.ReplyToken)
	case line.EventTypeUnfollow:
		d.log.Info("User unfollowed", "user_id", event.Source.UserID)
		return nil
	default:
		d.log.Debug("Ignoring unhandled event type", "type", event.Type)
		return nil
	}
}

// onTextMessage answers user text with the matched sequence, or the fixed
// fallback when nothing matches or the matched sequence renders to nothing.
func (d *Dispatcher) onTextMessage(ctx context.Context, replyToken, text string) error {
	table, err := d.store.Table()
	if err != nil {
		return fmt.Errorf("rule table unavailable: %w", err)
	}

	batch := expandFor(table.Rules, text)
	if len(batch) == 0 {
		d.log.Info("No reply from rule table, sending fallback", "text", preview(text))
		batch = fallbackBatch()
	}

	return d.reply(ctx, replyToken, batch)
}

// onFollow greets a new follower with the table's welcome sequence, or the
// hardcoded welcome when the table has none.
func (d *Dispatcher) onFollow(ctx context.Context, replyToken string) error {
	table, err := d.store.Table()
	if err != nil {
		return fmt.Errorf("rule table unavailable: %w", err)
	}

	batch := expandFor(table.Rules, WelcomeTrigger)
	if len(batch) == 0 {
		d.log.Info("No welcome rule in table, sending hardcoded welcome")
		batch = welcomeFallbackBatch()
	}

	return d.reply(ctx, replyToken, batch)
}

// reply hands the batch to the sink as one atomic call with a deadline.
func (d *Dispatcher) reply(ctx context.Context, replyToken string, batch []line.Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.replyTimeout)
	defer cancel()

	if err := d.sink.Reply(ctx, replyToken, batch); err != nil {
		return fmt.Errorf("deliver reply batch of %d: %w", len(batch), err)
	}

	return nil
}

// expandFor runs matcher and expander for one utterance. An empty result
// means either no match or a matched sequence with nothing renderable.
func expandFor(table []rules.Rule, text string) []line.Message {
	matched, ok := rules.Match(table, text)
	if !ok {
		return nil
	}

	return rules.Expand(table, matched)
}

// fallbackBatch is the fixed reply for unmatched utterances.
func fallbackBatch() []line.Message {
	msg := line.NewTextMessage(fallbackText)
	msg.AttachSender(&line.Sender{Name: fallbackSenderName, IconURL: fallbackSenderIcon})
	return []line.Message{msg}
}

// welcomeFallbackBatch is the fixed multi-part welcome for follow events.
func welcomeFallbackBatch() []line.Message {
	directions := line.NewTextMessage(welcomeDirectionText)
	directions.QuickReply = line.NewQuickReply([]string{welcomeQuickReplyLabel})

	return []line.Message{line.NewTextMessage(welcomeIntroText), directions}
}

// preview returns a bounded log-safe excerpt of user text.
func preview(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= logPreviewLimit {
		return trimmed
	}

	return trimmed[:logPreviewLimit] + "..."
}
