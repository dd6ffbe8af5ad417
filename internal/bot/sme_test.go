// ABOUTME: Tests for the SME handler and ticket transition turns
// ABOUTME: Dual notification ordering, persistence gating, and rejection paths

package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/desk-gateway/internal/cards"
	"github.com/2389/desk-gateway/internal/connect"
	"github.com/2389/desk-gateway/internal/envelope"
	"github.com/2389/desk-gateway/internal/store"
	"github.com/2389/desk-gateway/internal/ticket"
)

type smeFixture struct {
	handler  *SMEHandler
	sender   *mockSender
	notifier *mockNotifier
	store    *store.MockStore
}

func newSMEFixture(t *testing.T) *smeFixture {
	t.Helper()

	f := &smeFixture{
		sender:   &mockSender{},
		notifier: &mockNotifier{},
		store:    store.NewMockStore(),
	}

	cfg := Config{TenantID: "tenant-1", AppBaseURI: "https://desk.example.com"}
	f.handler = NewSMEHandler(cfg, f.sender, f.notifier, f.store, testLogger())
	return f
}

func (f *smeFixture) seedTicket(t *testing.T, status ticket.Status) *ticket.Ticket {
	t.Helper()
	tk := &ticket.Ticket{
		ID:                      "t-100",
		Title:                   "Printer down",
		Description:             "Error 49 on the 3rd floor printer.",
		RequesterID:             "user-1",
		RequesterName:           "Riley",
		RequesterConversationID: "conv-user-1",
		Status:                  status,
		CreatedAt:               time.Now().UTC().Add(-time.Hour),
		UpdatedAt:               time.Now().UTC().Add(-time.Hour),
		SMEThreadID:             "team-thread-1",
		SMEMessageID:            "team-msg-1",
	}
	if status == ticket.StatusAssigned {
		tk.AssigneeID = "expert-2"
		tk.AssigneeName = "Alex"
	}
	require.NoError(t, f.store.UpsertTicket(context.Background(), tk))
	f.store.UpsertCalls = 0
	return tk
}

func transitionEnvelope(t *testing.T, action, ticketID string) *envelope.Envelope {
	t.Helper()
	return withSubmission(t, channelMessage(""), envelope.Submission{
		Action:   action,
		TicketID: ticketID,
	})
}

func TestAssignToSelf(t *testing.T) {
	f := newSMEFixture(t)
	f.seedTicket(t, ticket.StatusOpen)

	err := f.handler.Handle(context.Background(), transitionEnvelope(t, envelope.ActionAssignToSelf, "t-100"))
	require.NoError(t, err)

	saved, err := f.store.GetTicket(context.Background(), "t-100")
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusAssigned, saved.Status)
	assert.Equal(t, "expert-1", saved.AssigneeID)
	assert.Equal(t, "Sam", saved.AssigneeName)

	// Requester confirmation card, then the in-place team card update.
	var requesterMessages []sentMessage
	for _, m := range f.sender.sent {
		if m.ConversationID == "conv-user-1" {
			requesterMessages = append(requesterMessages, m)
		}
	}
	require.Len(t, requesterMessages, 1)
	card := requesterMessages[0].Message.Attachments[0].Content.(cards.Card)
	assert.Equal(t, cards.Strings.User.NotificationAssigned, card.Text)

	require.Len(t, f.notifier.updates, 1)
	assert.Equal(t, connect.ThreadRef{ConversationID: "team-thread-1", MessageID: "team-msg-1"}, f.notifier.updates[0].Ref)
	updated := f.notifier.updates[0].Message.Attachments[0].Content.(cards.Card)
	assert.Contains(t, updated.Facts[0].Value, "Sam")
}

func TestStatusSequenceAssignCloseReopen(t *testing.T) {
	f := newSMEFixture(t)
	f.seedTicket(t, ticket.StatusOpen)
	ctx := context.Background()

	steps := []struct {
		action string
		status ticket.Status
	}{
		{envelope.ActionAssignToSelf, ticket.StatusAssigned},
		{envelope.ActionClose, ticket.StatusClosed},
		{envelope.ActionReopen, ticket.StatusOpen},
	}

	for _, step := range steps {
		require.NoError(t, f.handler.Handle(ctx, transitionEnvelope(t, step.action, "t-100")))
		saved, err := f.store.GetTicket(ctx, "t-100")
		require.NoError(t, err)
		assert.Equal(t, step.status, saved.Status)
	}

	final, err := f.store.GetTicket(ctx, "t-100")
	require.NoError(t, err)
	assert.Empty(t, final.AssigneeID)
	assert.Empty(t, final.AssigneeName)
}

func TestMissingTicketProducesNoNotifications(t *testing.T) {
	f := newSMEFixture(t)

	err := f.handler.Handle(context.Background(), transitionEnvelope(t, envelope.ActionClose, "nope"))
	require.ErrorIs(t, err, ticket.ErrNotFound)

	assert.Empty(t, f.notifier.posts)
	assert.Empty(t, f.notifier.updates)
	// The only outbound is the in-channel apology; the requester
	// conversation never hears about it.
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "conv-team-1", f.sender.sent[0].ConversationID)
	assert.Equal(t, cards.Strings.User.ErrorGeneric, f.sender.sent[0].Message.Text)
}

func TestCloseOnClosedRejectedAndRecordUntouched(t *testing.T) {
	f := newSMEFixture(t)
	tk := f.seedTicket(t, ticket.StatusClosed)
	before, err := f.store.GetTicket(context.Background(), tk.ID)
	require.NoError(t, err)

	err = f.handler.Handle(context.Background(), transitionEnvelope(t, envelope.ActionClose, tk.ID))
	require.ErrorIs(t, err, ticket.ErrInvalidTransition)

	assert.Equal(t, 0, f.store.UpsertCalls)
	after, err := f.store.GetTicket(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, f.notifier.updates)
}

func TestReassignAssignedTicketRejected(t *testing.T) {
	f := newSMEFixture(t)
	f.seedTicket(t, ticket.StatusAssigned)

	err := f.handler.Handle(context.Background(), transitionEnvelope(t, envelope.ActionAssignToSelf, "t-100"))
	require.ErrorIs(t, err, ticket.ErrInvalidTransition)
	assert.Equal(t, 0, f.store.UpsertCalls)
}

func TestPersistFailureSuppressesNotifications(t *testing.T) {
	f := newSMEFixture(t)
	f.seedTicket(t, ticket.StatusOpen)
	f.store.UpsertErr = assert.AnError

	err := f.handler.Handle(context.Background(), transitionEnvelope(t, envelope.ActionAssignToSelf, "t-100"))
	require.Error(t, err)

	assert.Empty(t, f.notifier.updates)
	// Apology only, nothing to the requester.
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "conv-team-1", f.sender.sent[0].ConversationID)
}

func TestTeamCardUpdateFailureIsBestEffort(t *testing.T) {
	f := newSMEFixture(t)
	f.seedTicket(t, ticket.StatusOpen)
	f.notifier.updateErr = assert.AnError

	err := f.handler.Handle(context.Background(), transitionEnvelope(t, envelope.ActionAssignToSelf, "t-100"))
	require.NoError(t, err)

	// The transition committed and the requester still heard about it.
	saved, err := f.store.GetTicket(context.Background(), "t-100")
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusAssigned, saved.Status)

	found := false
	for _, m := range f.sender.sent {
		if m.ConversationID == "conv-user-1" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSubmissionWithoutTicketID(t *testing.T) {
	f := newSMEFixture(t)

	err := f.handler.Handle(context.Background(), transitionEnvelope(t, envelope.ActionClose, ""))
	require.Error(t, err)
	assert.Equal(t, 0, f.store.UpsertCalls)
}

func TestTeamTourKeyword(t *testing.T) {
	f := newSMEFixture(t)

	err := f.handler.Handle(context.Background(), channelMessage("Team Tour"))
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0].Message
	assert.Equal(t, connect.LayoutCarousel, msg.AttachmentLayout)
	assert.Len(t, msg.Attachments, 3)
}

func TestUnrecognizedChannelTextGetsExplainer(t *testing.T) {
	f := newSMEFixture(t)

	err := f.handler.Handle(context.Background(), channelMessage("hello bot"))
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	card := f.sender.sent[0].Message.Attachments[0].Content.(cards.Card)
	assert.Equal(t, cards.Strings.SME.CustomMessage, card.Text)
}

func TestTeamChannelGreetingOnBotAdded(t *testing.T) {
	f := newSMEFixture(t)

	env := channelMessage("")
	env.Type = envelope.TypeConversationUpdate
	env.MembersAdded = []envelope.Account{{ID: "28:sme-app"}}

	err := f.handler.Handle(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, f.sender.sent, 1)
}

func TestSMETenantMismatchDropped(t *testing.T) {
	f := newSMEFixture(t)
	f.seedTicket(t, ticket.StatusOpen)

	env := transitionEnvelope(t, envelope.ActionAssignToSelf, "t-100")
	env.Conversation.TenantID = "someone-else"

	err := f.handler.Handle(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.UpsertCalls)
	assert.Empty(t, f.sender.sent)
}
