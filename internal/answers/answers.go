// ABOUTME: Answer resolution gateway wrapping the external scoring backend
// ABOUTME: Classifies results into Answered, NoMatch, or BackendUnavailable

package answers

import "context"

// NoMatchID is the sentinel candidate id the backend returns when nothing
// in the knowledge base matched the question.
const NoMatchID = -1

// Prompt is a follow-up option attached to an answer. Clicking one sends
// the referenced candidate back as conversational context for the next turn.
type Prompt struct {
	DisplayOrder int    `json:"displayOrder"`
	AnswerID     int    `json:"qnaId"`
	DisplayText  string `json:"displayText"`
}

// Candidate is one scored answer from the backend.
type Candidate struct {
	ID        int      `json:"id"`
	Answer    string   `json:"answer"`
	Questions []string `json:"questions"`
	Score     float64  `json:"score"`
	Prompts   []Prompt `json:"-"`
}

// Kind tags a resolution result.
type Kind int

const (
	// Answered means the backend produced a usable top candidate.
	Answered Kind = iota
	// NoMatch means the backend answered with the no-match sentinel.
	NoMatch
	// BackendUnavailable means the backend rejected the query in the
	// bad-request shape that indicates an empty or unpublished knowledge
	// base. Published reports the separately-probed publish status.
	BackendUnavailable
)

// Result is the tagged outcome of a resolution. Exactly one of the kinds
// applies; Answer is set only for Answered, Published is meaningful only
// for BackendUnavailable.
type Result struct {
	Kind      Kind
	Answer    *Candidate
	Published bool
}

// Query carries one question to the backend, with optional multi-turn
// context from a clicked follow-up prompt.
type Query struct {
	Text            string
	KnowledgeBaseID string
	Test            bool

	// PreviousAnswerID and PreviousQuestion forward the follow-up context
	// so the backend can disambiguate. Zero/empty when the turn has none.
	PreviousAnswerID int
	PreviousQuestion string
}

// Resolver is the gateway contract consumed by handlers.
type Resolver interface {
	// Resolve returns a classified result. A non-nil error is fatal for
	// the turn; recoverable backend states are expressed through the
	// Result kinds instead.
	Resolve(ctx context.Context, q Query) (Result, error)

	// IsKnowledgeBasePublished probes whether the knowledge base has ever
	// been published.
	IsKnowledgeBasePublished(ctx context.Context, knowledgeBaseID string) (bool, error)
}
