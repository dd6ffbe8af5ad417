// ABOUTME: Outbound message types and the delivery contract for the transport
// ABOUTME: Covers replies, typing signals, and cross-conversation team posts

package connect

import (
	"context"
	"errors"
)

// ErrDeliveryFailed wraps transport rejections of an outbound message.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Attachment layouts for multi-card messages.
const (
	LayoutList     = "list"
	LayoutCarousel = "carousel"
)

// Attachment carries one rendered card on an outbound message.
type Attachment struct {
	ContentType string `json:"contentType"`
	Content     any    `json:"content"`
}

// Message is one outbound unit of conversation content.
type Message struct {
	Type             string       `json:"type"`
	Text             string       `json:"text,omitempty"`
	Summary          string       `json:"summary,omitempty"`
	Attachments      []Attachment `json:"attachments,omitempty"`
	AttachmentLayout string       `json:"attachmentLayout,omitempty"`
}

// ThreadRef addresses a specific message inside a specific conversation,
// sufficient to update that message in place later.
type ThreadRef struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

// Sender delivers messages into existing conversations.
type Sender interface {
	// SendToConversation posts msg into the conversation and returns the
	// new message's id.
	SendToConversation(ctx context.Context, conversationID string, msg Message) (string, error)

	// SendTyping emits a typing signal into the conversation.
	SendTyping(ctx context.Context, conversationID string) error
}

// TeamNotifier posts into and updates the team-scoped SME thread.
type TeamNotifier interface {
	// PostToTeam creates a conversation scoped to the team, posts msg as
	// its first message, and returns identifiers sufficient to address
	// and update that message later.
	PostToTeam(ctx context.Context, teamID string, msg Message) (ThreadRef, error)

	// UpdateMessage replaces the referenced message's content in place.
	UpdateMessage(ctx context.Context, ref ThreadRef, msg Message) error
}

// NewTextMessage builds a plain text message.
func NewTextMessage(text string) Message {
	return Message{Type: "message", Text: text}
}

// NewCardMessage builds a message carrying a single card attachment.
func NewCardMessage(a Attachment) Message {
	return Message{Type: "message", Attachments: []Attachment{a}}
}

// NewCarouselMessage builds a message presenting cards side by side.
func NewCarouselMessage(items []Attachment) Message {
	return Message{Type: "message", Attachments: items, AttachmentLayout: LayoutCarousel}
}
