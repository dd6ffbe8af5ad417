// ABOUTME: Tests for the SQLite store over a temp-dir database
// ABOUTME: Covers ticket round trips, upsert semantics, and settings

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/desk-gateway/internal/ticket"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "gateway.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTicket(id string) *ticket.Ticket {
	now := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	return &ticket.Ticket{
		ID:                      id,
		Title:                   "Printer offline on floor 3",
		Description:             "Printer offline on floor 3",
		RequesterID:             "user-7",
		RequesterName:           "Dana",
		RequesterUPN:            "dana@example.org",
		RequesterConversationID: "conv-dana",
		Status:                  ticket.StatusOpen,
		CreatedAt:               now,
		UpdatedAt:               now,
		SMEThreadID:             "19:thread",
		SMEMessageID:            "msg-100",
	}
}

func TestTicketRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := sampleTicket("t-1")
	require.NoError(t, s.UpsertTicket(ctx, in))

	got, err := s.GetTicket(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestGetTicketNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTicket(context.Background(), "missing")
	require.ErrorIs(t, err, ticket.ErrNotFound)
}

func TestUpsertTicketUpdatesMutableFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := sampleTicket("t-2")
	require.NoError(t, s.UpsertTicket(ctx, in))

	updated, err := ticket.Apply(in, ticket.ActionAssignToSelf,
		ticket.Actor{ID: "sme-1", Name: "Expert"}, time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, s.UpsertTicket(ctx, updated))

	got, err := s.GetTicket(ctx, "t-2")
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusAssigned, got.Status)
	assert.Equal(t, "sme-1", got.AssigneeID)
	assert.Equal(t, "Expert", got.LastModifiedBy)
	// Creation time and linkage survive the update.
	assert.Equal(t, in.CreatedAt, got.CreatedAt)
	assert.Equal(t, in.SMEThreadID, got.SMEThreadID)
	assert.Equal(t, in.SMEMessageID, got.SMEMessageID)
}

func TestListTicketsOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := sampleTicket("t-old")
	newer := sampleTicket("t-new")
	newer.UpdatedAt = older.UpdatedAt.Add(time.Hour)
	require.NoError(t, s.UpsertTicket(ctx, older))
	require.NoError(t, s.UpsertTicket(ctx, newer))

	got, err := s.ListTickets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t-new", got[0].ID)
	assert.Equal(t, "t-old", got[1].ID)

	limited, err := s.ListTickets(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestStatusSequenceObservableThroughStore(t *testing.T) {
	// Open -> assign -> close -> reopen, each step individually visible.
	s := newTestStore(t)
	ctx := context.Background()
	expert := ticket.Actor{ID: "sme-9", Name: "Expert Nine"}

	cur := sampleTicket("t-seq")
	require.NoError(t, s.UpsertTicket(ctx, cur))

	steps := []struct {
		action       ticket.Action
		wantStatus   ticket.Status
		wantAssignee string
	}{
		{ticket.ActionAssignToSelf, ticket.StatusAssigned, "sme-9"},
		{ticket.ActionClose, ticket.StatusClosed, "sme-9"},
		{ticket.ActionReopen, ticket.StatusOpen, ""},
	}

	for _, step := range steps {
		loaded, err := s.GetTicket(ctx, "t-seq")
		require.NoError(t, err)

		next, err := ticket.Apply(loaded, step.action, expert, time.Now().UTC().Truncate(time.Millisecond))
		require.NoError(t, err)
		require.NoError(t, s.UpsertTicket(ctx, next))

		observed, err := s.GetTicket(ctx, "t-seq")
		require.NoError(t, err)
		assert.Equal(t, step.wantStatus, observed.Status)
		assert.Equal(t, step.wantAssignee, observed.AssigneeID)
	}
}

func TestRejectedTransitionLeavesRecordUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	closed := sampleTicket("t-closed")
	closed.Status = ticket.StatusClosed
	require.NoError(t, s.UpsertTicket(ctx, closed))

	before, err := s.GetTicket(ctx, "t-closed")
	require.NoError(t, err)

	_, err = ticket.Apply(before, ticket.ActionClose, ticket.Actor{ID: "x", Name: "X"}, time.Now().UTC())
	require.ErrorIs(t, err, ticket.ErrInvalidTransition)

	after, err := s.GetTicket(ctx, "t-closed")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetSetting(ctx, SettingTeamID)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutSetting(ctx, SettingTeamID, "19:team-general"))
	got, err := s.GetSetting(ctx, SettingTeamID)
	require.NoError(t, err)
	assert.Equal(t, "19:team-general", got)

	// Overwrite
	require.NoError(t, s.PutSetting(ctx, SettingTeamID, "19:team-support"))
	got, err = s.GetSetting(ctx, SettingTeamID)
	require.NoError(t, err)
	assert.Equal(t, "19:team-support", got)
}
