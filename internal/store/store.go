// ABOUTME: Store interface and errors for desk-gateway persistence
// ABOUTME: Covers ticket records and the slow-changing settings table

package store

import (
	"context"
	"errors"

	"github.com/2389/desk-gateway/internal/ticket"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Setting keys for the slow-changing configuration table. These values are
// written by operators and read on the hot path through a read-through
// cache.
const (
	SettingWelcomeText     = "welcome_text"
	SettingTeamID          = "team_id"
	SettingKnowledgeBaseID = "knowledge_base_id"
)

// Store defines the persistence operations used by the gateway.
type Store interface {
	// Tickets
	GetTicket(ctx context.Context, id string) (*ticket.Ticket, error)
	UpsertTicket(ctx context.Context, t *ticket.Ticket) error
	ListTickets(ctx context.Context, limit int) ([]*ticket.Ticket, error)

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string) error

	Close() error
}
