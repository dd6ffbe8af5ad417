// ABOUTME: Ticket status state machine driven by an explicit transition table
// ABOUTME: Invalid from-state/action combinations are unrepresentable results

package ticket

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when an action is not valid for the
// ticket's current status. The stored record is never touched on a
// rejected transition.
var ErrInvalidTransition = errors.New("invalid status transition")

// Action is a status-change request submitted by an expert.
type Action string

const (
	// ActionAssignToSelf moves an open ticket to Assigned with the
	// submitting expert as the sole assignee.
	ActionAssignToSelf Action = "assign-to-self"
	// ActionClose resolves an open or assigned ticket.
	ActionClose Action = "close"
	// ActionReopen returns a closed or assigned ticket to Open and clears
	// the assignee. Reopen is a transition back to Open carrying history,
	// not a distinct state.
	ActionReopen Action = "reopen"
)

// transitionKey pairs a from-state with a requested action.
type transitionKey struct {
	from   Status
	action Action
}

// transitions is the closed table of valid from-state × action pairs.
// Anything absent from this table is an invalid transition.
var transitions = map[transitionKey]Status{
	{StatusOpen, ActionAssignToSelf}: StatusAssigned,
	{StatusOpen, ActionClose}:        StatusClosed,
	{StatusAssigned, ActionClose}:    StatusClosed,
	{StatusAssigned, ActionReopen}:   StatusOpen,
	{StatusClosed, ActionReopen}:     StatusOpen,
}

// Actor identifies the expert requesting a transition.
type Actor struct {
	ID   string
	Name string
}

// Apply validates the requested action against the ticket's current status
// and returns a mutated copy reflecting the transition. The input ticket is
// not modified; on ErrInvalidTransition no copy is returned at all, so a
// rejected request cannot be partially applied.
func Apply(t *Ticket, action Action, by Actor, now time.Time) (*Ticket, error) {
	next, ok := transitions[transitionKey{t.Status, action}]
	if !ok {
		return nil, fmt.Errorf("action %q on %s ticket %s: %w", action, t.Status, t.ID, ErrInvalidTransition)
	}

	out := t.Clone()
	out.Status = next
	out.UpdatedAt = now
	out.LastModifiedBy = by.Name

	switch action {
	case ActionAssignToSelf:
		out.AssigneeID = by.ID
		out.AssigneeName = by.Name
	case ActionReopen:
		out.AssigneeID = ""
		out.AssigneeName = ""
	}

	return out, nil
}
