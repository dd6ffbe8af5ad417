// ABOUTME: Ticket model for escalated questions
// ABOUTME: Defines status values, requester identity, and thread linkage

package ticket

import (
	"errors"
	"time"
)

// Store errors
var (
	// ErrNotFound is returned when no ticket exists for the requested id.
	ErrNotFound = errors.New("ticket not found")
)

// Status is the lifecycle state of a ticket.
type Status int

const (
	// StatusOpen means the ticket awaits an expert.
	StatusOpen Status = iota
	// StatusAssigned means exactly one expert is working the ticket.
	StatusAssigned
	// StatusClosed means the ticket has been resolved.
	StatusClosed
)

// String returns the human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusAssigned:
		return "Assigned"
	case StatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Ticket is one escalated question moving through the support workflow.
//
// The thread linkage fields (SMEThreadID, SMEMessageID) are set once when
// the ticket card is posted into the SME team thread and never change
// afterwards; status, assignee, and the last-modified fields are the only
// mutable parts.
type Ticket struct {
	ID          string
	Title       string
	Description string

	RequesterID             string
	RequesterName           string
	RequesterUPN            string
	RequesterConversationID string

	Status         Status
	AssigneeID     string
	AssigneeName   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastModifiedBy string

	SMEThreadID  string
	SMEMessageID string
}

// Clone returns a deep copy. Handlers mutate copies so a failed persist
// never leaves a half-updated ticket visible to anyone.
func (t *Ticket) Clone() *Ticket {
	c := *t
	return &c
}
