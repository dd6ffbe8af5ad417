// ABOUTME: Envelope model for inbound and outbound conversational messages
// ABOUTME: Defines accounts, conversation identity, and activity type constants

package envelope

import (
	"encoding/json"
	"strings"
	"time"
)

// Activity type constants for the Type field
const (
	TypeMessage            = "message"
	TypeConversationUpdate = "conversationUpdate"
	TypeTyping             = "typing"
)

// Conversation type constants
const (
	ConversationPersonal = "personal"
	ConversationChannel  = "channel"
)

// Account identifies a participant in a conversation.
type Account struct {
	ID                string `json:"id"`
	Name              string `json:"name,omitempty"`
	ObjectID          string `json:"objectId,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
}

// Conversation identifies the thread an envelope belongs to.
type Conversation struct {
	ID       string `json:"id"`
	Type     string `json:"conversationType"`
	TenantID string `json:"tenantId,omitempty"`
}

// Envelope is one inbound or outbound unit of conversation. Inbound
// envelopes are immutable once received; handlers build replies with
// the Reply helpers rather than mutating the original.
type Envelope struct {
	Type         string          `json:"type"`
	ID           string          `json:"id,omitempty"`
	Text         string          `json:"text,omitempty"`
	Value        json.RawMessage `json:"value,omitempty"`
	ReplyToID    string          `json:"replyToId,omitempty"`
	From         Account         `json:"from"`
	Recipient    Account         `json:"recipient"`
	Conversation Conversation    `json:"conversation"`
	MembersAdded []Account       `json:"membersAdded,omitempty"`
	Locale       string          `json:"locale,omitempty"`
	Timestamp    time.Time       `json:"timestamp,omitempty"`
}

// IsPersonal reports whether the envelope belongs to a one-to-one
// conversation. Comparison is case-insensitive because frontends are
// inconsistent about casing the conversation type.
func (e *Envelope) IsPersonal() bool {
	return strings.EqualFold(e.Conversation.Type, ConversationPersonal)
}

// IsChannel reports whether the envelope belongs to a channel conversation.
func (e *Envelope) IsChannel() bool {
	return strings.EqualFold(e.Conversation.Type, ConversationChannel)
}

// IsSubmission reports whether the envelope is a card submission: a reply
// to a previously-sent card carrying a structured payload.
func (e *Envelope) IsSubmission() bool {
	return e.ReplyToID != "" && len(e.Value) > 0 && string(e.Value) != "null" && string(e.Value) != "{}"
}
