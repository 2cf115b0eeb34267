// Package rules implements the response program of the bot: an ordered CSV
// rule table, exact-variant matching of user text against it, and expansion
// of a matched rule plus its continuation run into one bounded reply batch.
package rules

import "strings"

// Kind is the rendering type of one rule row.
type Kind string

const (
	KindText       Kind = "text"
	KindImage      Kind = "image"
	KindVideo      Kind = "video"
	KindQuickReply Kind = "quick_reply"
	KindButtons    Kind = "buttons"
	KindCarousel   Kind = "carousel"
)

// Rule is one row of the rule table, in table order. Position is the only
// identity a rule has: a row with an empty Input is a continuation of the
// sequence started by the nearest preceding trigger row.
type Rule struct {
	// Input holds pipe-delimited trigger variants. Empty marks a continuation.
	Input string
	// Output is the display text, with CSV \n escapes already unescaped.
	Output string
	Type   Kind

	ImageURL        string
	VideoURL        string
	PreviewImageURL string

	// SenderName and SenderIconURL override the bot identity on every message
	// this rule emits. Both must be set for the override to apply.
	SenderName    string
	SenderIconURL string

	// QuickReplies holds pipe-delimited quick-reply labels for the rule's
	// text message.
	QuickReplies string
	// Buttons holds pipe-delimited labels: button labels for KindButtons,
	// carousel item names for KindCarousel.
	Buttons string
}

// IsTrigger reports whether the rule can be matched against user text.
func (r Rule) IsTrigger() bool {
	return r.Input != ""
}

// Renderable reports whether the rule can produce at least one message.
func (r Rule) Renderable() bool {
	return parseBody(r) != nil
}

// Variants returns the rule's normalized trigger variants, in input order.
func (r Rule) Variants() []string {
	if !r.IsTrigger() {
		return nil
	}

	parts := strings.Split(r.Input, "|")
	variants := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := normalize(part); v != "" {
			variants = append(variants, v)
		}
	}

	return variants
}

// normalize prepares text for matching: whitespace-trimmed and case-folded.
// No diacritic or script normalization is applied.
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// splitList splits a pipe-delimited multi-value field into trimmed entries.
func splitList(field string) []string {
	if field == "" {
		return nil
	}

	parts := strings.Split(field, "|")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		if entry := strings.TrimSpace(part); entry != "" {
			entries = append(entries, entry)
		}
	}

	return entries
}
