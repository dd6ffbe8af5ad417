// ABOUTME: Structured submission payloads attached to card replies
// ABOUTME: Decodes action tags, ticket references, and follow-up context

package envelope

import (
	"encoding/json"
	"fmt"
)

// Submission action tags. These arrive in the "action" field of a card
// submission payload.
const (
	ActionAskAnExpert   = "ask-expert"
	ActionShareFeedback = "share-feedback"
	ActionAssignToSelf  = "assign-to-self"
	ActionClose         = "close"
	ActionReopen        = "reopen"
)

// PreviousAnswer links a follow-up submission to the answer that produced
// the card it came from, so the backend can disambiguate multi-turn input.
type PreviousAnswer struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
}

// Submission is the structured payload attached to a reply to a
// previously-sent card.
type Submission struct {
	Action       string          `json:"action,omitempty"`
	TicketID     string          `json:"ticketId,omitempty"`
	QuestionText string          `json:"questionText,omitempty"`
	FeedbackText string          `json:"feedbackText,omitempty"`
	IsPrompt     bool            `json:"isPrompt,omitempty"`
	Previous     *PreviousAnswer `json:"previousAnswer,omitempty"`
}

// DecodeSubmission parses the envelope's structured value into a
// Submission. It fails when the envelope carries no payload.
func DecodeSubmission(e *Envelope) (*Submission, error) {
	if len(e.Value) == 0 {
		return nil, fmt.Errorf("envelope %s carries no submission payload", e.ID)
	}
	var s Submission
	if err := json.Unmarshal(e.Value, &s); err != nil {
		return nil, fmt.Errorf("decoding submission payload: %w", err)
	}
	return &s, nil
}
