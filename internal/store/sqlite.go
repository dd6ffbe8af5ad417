// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides ticket/settings persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/2389/desk-gateway/internal/ticket"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tickets (
			id                        TEXT PRIMARY KEY,
			title                     TEXT NOT NULL,
			description               TEXT,
			requester_id              TEXT NOT NULL,
			requester_name            TEXT NOT NULL,
			requester_upn             TEXT,
			requester_conversation_id TEXT NOT NULL,
			status                    TEXT NOT NULL,
			assignee_id               TEXT,
			assignee_name             TEXT,
			created_at                TEXT NOT NULL,
			updated_at                TEXT NOT NULL,
			last_modified_by          TEXT,
			sme_thread_id             TEXT,
			sme_message_id            TEXT,

			CHECK (status IN ('Open', 'Assigned', 'Closed'))
		);

		CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
		CREATE INDEX IF NOT EXISTS idx_tickets_updated ON tickets(updated_at DESC);

		CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// statusFromString maps a stored status label back to the enum.
func statusFromString(v string) (ticket.Status, error) {
	switch v {
	case "Open":
		return ticket.StatusOpen, nil
	case "Assigned":
		return ticket.StatusAssigned, nil
	case "Closed":
		return ticket.StatusClosed, nil
	default:
		return 0, fmt.Errorf("unknown ticket status %q", v)
	}
}

// GetTicket retrieves a ticket by id. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	query := `
		SELECT id, title, description, requester_id, requester_name, requester_upn,
		       requester_conversation_id, status, assignee_id, assignee_name,
		       created_at, updated_at, last_modified_by, sme_thread_id, sme_message_id
		FROM tickets
		WHERE id = ?
	`
	return s.scanTicket(s.db.QueryRowContext(ctx, query, id))
}

// UpsertTicket inserts or replaces the full ticket record. This is the
// serialization point for concurrent edits to the same ticket id.
func (s *SQLiteStore) UpsertTicket(ctx context.Context, t *ticket.Ticket) error {
	query := `
		INSERT INTO tickets (
			id, title, description, requester_id, requester_name, requester_upn,
			requester_conversation_id, status, assignee_id, assignee_name,
			created_at, updated_at, last_modified_by, sme_thread_id, sme_message_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			assignee_id = excluded.assignee_id,
			assignee_name = excluded.assignee_name,
			updated_at = excluded.updated_at,
			last_modified_by = excluded.last_modified_by,
			sme_thread_id = excluded.sme_thread_id,
			sme_message_id = excluded.sme_message_id
	`

	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.RequesterID,
		t.RequesterName,
		t.RequesterUPN,
		t.RequesterConversationID,
		t.Status.String(),
		t.AssigneeID,
		t.AssigneeName,
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		t.LastModifiedBy,
		t.SMEThreadID,
		t.SMEMessageID,
	)
	if err != nil {
		return fmt.Errorf("upserting ticket %s: %w", t.ID, err)
	}
	return nil
}

// ListTickets returns tickets ordered by most recent update.
func (s *SQLiteStore) ListTickets(ctx context.Context, limit int) ([]*ticket.Ticket, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, title, description, requester_id, requester_name, requester_upn,
		       requester_conversation_id, status, assignee_id, assignee_name,
		       created_at, updated_at, last_modified_by, sme_thread_id, sme_message_id
		FROM tickets
		ORDER BY updated_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	defer rows.Close()

	var out []*ticket.Ticket
	for rows.Next() {
		t, err := s.scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tickets: %w", err)
	}
	return out, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanTicket(row *sql.Row) (*ticket.Ticket, error) {
	t, err := scanTicketFields(row)
	if err == sql.ErrNoRows {
		return nil, ticket.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying ticket: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) scanTicketRow(rows *sql.Rows) (*ticket.Ticket, error) {
	t, err := scanTicketFields(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning ticket: %w", err)
	}
	return t, nil
}

func scanTicketFields(row rowScanner) (*ticket.Ticket, error) {
	var t ticket.Ticket
	var statusStr, createdAtStr, updatedAtStr string
	var description, upn, assigneeID, assigneeName, modifiedBy, smeThread, smeMessage sql.NullString

	err := row.Scan(
		&t.ID,
		&t.Title,
		&description,
		&t.RequesterID,
		&t.RequesterName,
		&upn,
		&t.RequesterConversationID,
		&statusStr,
		&assigneeID,
		&assigneeName,
		&createdAtStr,
		&updatedAtStr,
		&modifiedBy,
		&smeThread,
		&smeMessage,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	t.RequesterUPN = upn.String
	t.AssigneeID = assigneeID.String
	t.AssigneeName = assigneeName.String
	t.LastModifiedBy = modifiedBy.String
	t.SMEThreadID = smeThread.String
	t.SMEMessageID = smeMessage.String

	t.Status, err = statusFromString(statusStr)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &t, nil
}

// GetSetting returns the value for a settings key. Returns ErrNotFound if
// the key has never been written.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %s: %w", key, err)
	}
	return value, nil
}

// PutSetting writes a settings key, replacing any previous value.
func (s *SQLiteStore) PutSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}
