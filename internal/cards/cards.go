// ABOUTME: Card view-models attached to outbound messages
// ABOUTME: Defines hero/adaptive content shapes, facts, actions, and inputs

package cards

import (
	"github.com/2389/desk-gateway/internal/connect"
)

// Content types for card attachments.
const (
	HeroContentType     = "application/vnd.card.hero"
	AdaptiveContentType = "application/vnd.card.adaptive"
)

// Action button types.
const (
	ActionMessageBack = "messageBack"
	ActionOpenURL     = "openUrl"
	ActionSubmit      = "submit"
)

// Fact is one titled value row on a card.
type Fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Action is a button on a card. Value rides back on the submission
// envelope when the button is pressed.
type Action struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
	URL   string `json:"url,omitempty"`
	Value any    `json:"value,omitempty"`
}

// Input is a form field on a card.
type Input struct {
	ID          string `json:"id"`
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value,omitempty"`
	Multiline   bool   `json:"multiline,omitempty"`
}

// Card is the renderable content of one attachment. Builders populate the
// subset of fields their layout uses.
type Card struct {
	Title    string   `json:"title,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Text     string   `json:"text,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Facts    []Fact   `json:"facts,omitempty"`
	Inputs   []Input  `json:"inputs,omitempty"`
	Actions  []Action `json:"actions,omitempty"`

	// Error carries a validation message when a submitted form is
	// re-rendered for correction.
	Error string `json:"error,omitempty"`
}

// Hero wraps a card as a hero attachment.
func Hero(c Card) connect.Attachment {
	return connect.Attachment{ContentType: HeroContentType, Content: c}
}

// Adaptive wraps a card as an adaptive attachment.
func Adaptive(c Card) connect.Attachment {
	return connect.Attachment{ContentType: AdaptiveContentType, Content: c}
}
