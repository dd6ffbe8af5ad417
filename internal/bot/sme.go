// ABOUTME: SME channel handler hosting the ticket state machine
// ABOUTME: Validates status-change submissions and emits dual notifications

package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/2389/desk-gateway/internal/cards"
	"github.com/2389/desk-gateway/internal/connect"
	"github.com/2389/desk-gateway/internal/envelope"
	"github.com/2389/desk-gateway/internal/ticket"
)

// TicketStore is the slice of the store the SME handler needs.
type TicketStore interface {
	GetTicket(ctx context.Context, id string) (*ticket.Ticket, error)
	UpsertTicket(ctx context.Context, t *ticket.Ticket) error
}

// SMEHandler processes envelopes addressed to the expert surface. Status
// changes run through the ticket transition table; persistence is the
// commit point, after which the requester notification and the in-place
// card update are emitted.
type SMEHandler struct {
	cfg      Config
	sender   connect.Sender
	notifier connect.TeamNotifier
	tickets  TicketStore
	logger   *slog.Logger
}

// NewSMEHandler creates the expert-surface handler.
func NewSMEHandler(cfg Config, sender connect.Sender, notifier connect.TeamNotifier, tickets TicketStore, logger *slog.Logger) *SMEHandler {
	return &SMEHandler{
		cfg:      cfg,
		sender:   sender,
		notifier: notifier,
		tickets:  tickets,
		logger:   logger.With("component", "sme-handler"),
	}
}

// Handle processes one inbound envelope.
func (h *SMEHandler) Handle(ctx context.Context, env *envelope.Envelope) error {
	if !fromExpectedTenant(h.cfg.TenantID, env) {
		h.logger.Warn("dropping envelope from unexpected tenant",
			"tenant_id", env.Conversation.TenantID,
			"conversation_id", env.Conversation.ID)
		return nil
	}

	switch env.Type {
	case envelope.TypeConversationUpdate:
		return h.handleConversationUpdate(ctx, env)
	case envelope.TypeMessage:
		if err := h.handleMessage(ctx, env); err != nil {
			h.logger.Error("turn failed",
				"conversation_id", env.Conversation.ID,
				"from_id", env.From.ID,
				"locale", env.Locale,
				"error", err)
			apologize(ctx, h.sender, env.Conversation.ID, h.logger)
			return err
		}
		return nil
	default:
		h.logger.Debug("ignoring envelope type", "type", env.Type)
		return nil
	}
}

// handleConversationUpdate greets the team channel once, when the bot
// itself is added.
func (h *SMEHandler) handleConversationUpdate(ctx context.Context, env *envelope.Envelope) error {
	if !env.IsChannel() {
		return nil
	}

	for _, m := range env.MembersAdded {
		if m.ID == env.Recipient.ID {
			msg := connect.NewCardMessage(cards.CustomMessage())
			if _, err := h.sender.SendToConversation(ctx, env.Conversation.ID, msg); err != nil {
				return fmt.Errorf("greeting team channel: %w", err)
			}
			h.logger.Info("joined team channel", "conversation_id", env.Conversation.ID)
			return nil
		}
	}
	return nil
}

func (h *SMEHandler) handleMessage(ctx context.Context, env *envelope.Envelope) error {
	sendTyping(ctx, h.sender, env.Conversation.ID, h.logger)

	if env.IsSubmission() {
		return h.handleTransition(ctx, env)
	}

	if strings.EqualFold(strings.TrimSpace(env.Text), cards.Strings.SME.TeamTour) {
		msg := connect.NewCarouselMessage(cards.SMETour(h.cfg.AppBaseURI))
		_, err := h.sender.SendToConversation(ctx, env.Conversation.ID, msg)
		return err
	}

	// Anything else typed at the bot in-channel gets the short explainer.
	_, err := h.sender.SendToConversation(ctx, env.Conversation.ID, connect.NewCardMessage(cards.CustomMessage()))
	return err
}

// handleTransition applies a status-change submission. The sequence is
// load, apply, persist, notify; a failure at any of the first three
// stops the turn before anything user-visible happens.
func (h *SMEHandler) handleTransition(ctx context.Context, env *envelope.Envelope) error {
	s, err := envelope.DecodeSubmission(env)
	if err != nil {
		return err
	}
	if s.TicketID == "" {
		return fmt.Errorf("submission %s carries no ticket id", env.ID)
	}

	t, err := h.tickets.GetTicket(ctx, s.TicketID)
	if err != nil {
		return fmt.Errorf("loading ticket %s: %w", s.TicketID, err)
	}

	action := ticket.Action(s.Action)
	actor := ticket.Actor{ID: env.From.ID, Name: env.From.Name}
	updated, err := ticket.Apply(t, action, actor, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ticket %s: %w", t.ID, err)
	}

	if err := h.tickets.UpsertTicket(ctx, updated); err != nil {
		return fmt.Errorf("persisting ticket %s: %w", updated.ID, err)
	}

	h.logger.Info("ticket transition",
		"ticket_id", updated.ID,
		"action", string(action),
		"status", updated.Status.String(),
		"by", actor.ID)

	// The change is committed. Both notification legs are attempted; the
	// requester confirmation surfaces its failure, the in-place card
	// update and the thread confirmation are best-effort.
	notifyErr := h.notifyRequester(ctx, updated, action)
	h.updateTeamCard(ctx, updated, action)
	h.confirmInThread(ctx, env, updated, action)
	return notifyErr
}

func (h *SMEHandler) notifyRequester(ctx context.Context, t *ticket.Ticket, action ticket.Action) error {
	msg := connect.NewCardMessage(cards.UserNotification(t, action))
	if _, err := h.sender.SendToConversation(ctx, t.RequesterConversationID, msg); err != nil {
		return fmt.Errorf("notifying requester of ticket %s: %w", t.ID, err)
	}
	return nil
}

func (h *SMEHandler) updateTeamCard(ctx context.Context, t *ticket.Ticket, action ticket.Action) {
	ref := connect.ThreadRef{ConversationID: t.SMEThreadID, MessageID: t.SMEMessageID}
	msg := connect.NewCardMessage(cards.SMETicket(t))
	msg.Summary = cards.TicketSummary(t, action)
	if err := h.notifier.UpdateMessage(ctx, ref, msg); err != nil {
		h.logger.Warn("team card update failed",
			"ticket_id", t.ID,
			"sme_thread_id", t.SMEThreadID,
			"error", err)
	}
}

func (h *SMEHandler) confirmInThread(ctx context.Context, env *envelope.Envelope, t *ticket.Ticket, action ticket.Action) {
	text := cards.TransitionConfirmation(t, action)
	if text == "" {
		return
	}
	if _, err := h.sender.SendToConversation(ctx, env.Conversation.ID, connect.NewTextMessage(text)); err != nil {
		h.logger.Warn("thread confirmation failed",
			"ticket_id", t.ID,
			"conversation_id", env.Conversation.ID,
			"error", err)
	}
}
