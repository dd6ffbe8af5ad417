// ABOUTME: End-user conversation handler: welcome, menu, questions, escalation
// ABOUTME: Creates tickets and relays them into the SME team thread

package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/desk-gateway/internal/answers"
	"github.com/2389/desk-gateway/internal/cards"
	"github.com/2389/desk-gateway/internal/connect"
	"github.com/2389/desk-gateway/internal/envelope"
	"github.com/2389/desk-gateway/internal/ticket"
)

// TicketWriter is the slice of the store the end-user handler needs.
type TicketWriter interface {
	UpsertTicket(ctx context.Context, t *ticket.Ticket) error
}

// EndUserHandler processes envelopes addressed to the end-user surface.
// It only acts on personal conversations; channel traffic is logged and
// dropped.
type EndUserHandler struct {
	cfg      Config
	sender   connect.Sender
	notifier connect.TeamNotifier
	resolver answers.Resolver
	tickets  TicketWriter
	settings *Settings
	logger   *slog.Logger
}

// NewEndUserHandler creates the end-user handler.
func NewEndUserHandler(cfg Config, sender connect.Sender, notifier connect.TeamNotifier, resolver answers.Resolver, tickets TicketWriter, settings *Settings, logger *slog.Logger) *EndUserHandler {
	return &EndUserHandler{
		cfg:      cfg,
		sender:   sender,
		notifier: notifier,
		resolver: resolver,
		tickets:  tickets,
		settings: settings,
		logger:   logger.With("component", "user-handler"),
	}
}

// Handle processes one inbound envelope.
func (h *EndUserHandler) Handle(ctx context.Context, env *envelope.Envelope) error {
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
		if !env.IsPersonal() {
			h.logger.Info("ignoring non-personal conversation",
				"conversation_type", env.Conversation.Type,
				"conversation_id", env.Conversation.ID)
			return nil
		}
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

// handleConversationUpdate sends the welcome message exactly once: when
// the membership event names the bot itself as a new member. Later
// members joining the same thread do not re-trigger it.
func (h *EndUserHandler) handleConversationUpdate(ctx context.Context, env *envelope.Envelope) error {
	if !env.IsPersonal() {
		return nil
	}

	botAdded := false
	for _, m := range env.MembersAdded {
		if m.ID == env.Recipient.ID {
			botAdded = true
			break
		}
	}
	if !botAdded {
		return nil
	}

	welcomeText, err := h.settings.WelcomeText(ctx)
	if err != nil {
		return fmt.Errorf("loading welcome text: %w", err)
	}

	msg := connect.NewCardMessage(cards.Welcome(welcomeText))
	if _, err := h.sender.SendToConversation(ctx, env.Conversation.ID, msg); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}
	h.logger.Info("welcomed new conversation", "conversation_id", env.Conversation.ID)
	return nil
}

func (h *EndUserHandler) handleMessage(ctx context.Context, env *envelope.Envelope) error {
	sendTyping(ctx, h.sender, env.Conversation.ID, h.logger)

	// Menu buttons arrive as messages carrying both the keyword text and
	// an optional payload with answer context, so keywords are matched
	// before submissions.
	text := strings.TrimSpace(env.Text)
	switch {
	case strings.EqualFold(text, cards.Strings.User.TakeATour):
		return h.sendTour(ctx, env)
	case strings.EqualFold(text, cards.Strings.User.AskAnExpert):
		return h.sendCard(ctx, env, cards.AskAnExpertForm(prefillFrom(env), ""))
	case strings.EqualFold(text, cards.Strings.User.ShareFeedback):
		return h.sendCard(ctx, env, cards.ShareFeedbackForm(prefillFrom(env), ""))
	}

	if env.IsSubmission() {
		return h.handleSubmission(ctx, env)
	}

	if text == "" {
		h.logger.Debug("ignoring empty message", "conversation_id", env.Conversation.ID)
		return nil
	}
	return h.answerQuestion(ctx, env, text, nil)
}

func (h *EndUserHandler) handleSubmission(ctx context.Context, env *envelope.Envelope) error {
	s, err := envelope.DecodeSubmission(env)
	if err != nil {
		return err
	}

	// A clicked follow-up prompt is a question turn carrying the prior
	// answer as context.
	if s.IsPrompt {
		return h.answerQuestion(ctx, env, strings.TrimSpace(env.Text), s.Previous)
	}

	switch s.Action {
	case envelope.ActionAskAnExpert:
		return h.submitTicket(ctx, env, s)
	case envelope.ActionShareFeedback:
		return h.submitFeedback(ctx, env, s)
	default:
		h.logger.Warn("unknown submission action", "action", s.Action, "conversation_id", env.Conversation.ID)
		return nil
	}
}

// submitTicket creates a ticket from an ask-an-expert form submission,
// posts it into the SME team thread, and persists the returned linkage
// before the requester sees any acknowledgment.
func (h *EndUserHandler) submitTicket(ctx context.Context, env *envelope.Envelope, s *envelope.Submission) error {
	question := strings.TrimSpace(s.QuestionText)
	if question == "" {
		form := cards.AskAnExpertForm(prefillFromSubmission(s), cards.Strings.User.AskAnExpertRequired)
		return h.sendCard(ctx, env, form)
	}

	teamID, err := h.settings.TeamID(ctx)
	if err != nil {
		return fmt.Errorf("loading team id: %w", err)
	}
	if teamID == "" {
		return fmt.Errorf("no expert team configured")
	}

	now := time.Now().UTC()
	t := &ticket.Ticket{
		ID:                      uuid.NewString(),
		Title:                   question,
		Description:             question,
		RequesterID:             env.From.ID,
		RequesterName:           env.From.Name,
		RequesterUPN:            env.From.UserPrincipalName,
		RequesterConversationID: env.Conversation.ID,
		Status:                  ticket.StatusOpen,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	msg := connect.NewCardMessage(cards.SMETicket(t))
	msg.Summary = cards.TicketSummary(t, "")
	ref, err := h.notifier.PostToTeam(ctx, teamID, msg)
	if err != nil {
		return fmt.Errorf("posting ticket %s to team: %w", t.ID, err)
	}

	t.SMEThreadID = ref.ConversationID
	t.SMEMessageID = ref.MessageID
	if err := h.tickets.UpsertTicket(ctx, t); err != nil {
		return fmt.Errorf("persisting ticket %s: %w", t.ID, err)
	}

	h.logger.Info("ticket created",
		"ticket_id", t.ID,
		"requester_id", t.RequesterID,
		"sme_thread_id", t.SMEThreadID)

	return h.sendCard(ctx, env, cards.UserNotification(t, ""))
}

// submitFeedback relays a feedback form submission into the SME team
// thread; no ticket is created. The thank-you only goes out after the
// post succeeds.
func (h *EndUserHandler) submitFeedback(ctx context.Context, env *envelope.Envelope, s *envelope.Submission) error {
	feedback := strings.TrimSpace(s.FeedbackText)
	if feedback == "" {
		form := cards.ShareFeedbackForm(prefillFromSubmission(s), cards.Strings.User.ShareFeedbackRequired)
		return h.sendCard(ctx, env, form)
	}

	teamID, err := h.settings.TeamID(ctx)
	if err != nil {
		return fmt.Errorf("loading team id: %w", err)
	}
	if teamID == "" {
		return fmt.Errorf("no expert team configured")
	}

	card := cards.Hero(cards.Card{
		Title: cards.Expand(cards.Strings.SME.TicketSummaryNew, map[string]string{"requester": env.From.Name}),
		Text:  feedback,
	})
	msg := connect.NewCardMessage(card)
	if _, err := h.notifier.PostToTeam(ctx, teamID, msg); err != nil {
		return fmt.Errorf("posting feedback to team: %w", err)
	}

	_, err = h.sender.SendToConversation(ctx, env.Conversation.ID, connect.NewTextMessage(cards.Strings.User.FeedbackThankYou))
	return err
}

// answerQuestion resolves free text against the knowledge base and
// renders the classified outcome.
func (h *EndUserHandler) answerQuestion(ctx context.Context, env *envelope.Envelope, text string, prev *envelope.PreviousAnswer) error {
	kbID, err := h.settings.KnowledgeBaseID(ctx)
	if err != nil {
		return fmt.Errorf("loading knowledge base id: %w", err)
	}
	if kbID == "" {
		return h.sendCard(ctx, env, cards.PendingKnowledgeBase())
	}

	q := answers.Query{Text: text, KnowledgeBaseID: kbID, Test: h.cfg.TestKnowledgeBase}
	if prev != nil {
		q.PreviousAnswerID = prev.ID
		q.PreviousQuestion = prev.Question
	}

	result, err := h.resolver.Resolve(ctx, q)
	if err != nil {
		return fmt.Errorf("resolving question: %w", err)
	}

	switch result.Kind {
	case answers.NoMatch:
		return h.sendCard(ctx, env, cards.Unrecognized(text))
	case answers.BackendUnavailable:
		if !result.Published {
			return h.sendCard(ctx, env, cards.PendingKnowledgeBase())
		}
		return fmt.Errorf("answer backend rejected query for published knowledge base %s", kbID)
	}

	if body, ok := cards.ParseRichBody(result.Answer.Answer); ok {
		return h.sendCard(ctx, env, cards.RichAnswer(body))
	}
	return h.sendCard(ctx, env, cards.Response(text, result.Answer))
}

func (h *EndUserHandler) sendTour(ctx context.Context, env *envelope.Envelope) error {
	msg := connect.NewCarouselMessage(cards.UserTour(h.cfg.AppBaseURI))
	_, err := h.sender.SendToConversation(ctx, env.Conversation.ID, msg)
	return err
}

func (h *EndUserHandler) sendCard(ctx context.Context, env *envelope.Envelope, a connect.Attachment) error {
	_, err := h.sender.SendToConversation(ctx, env.Conversation.ID, connect.NewCardMessage(a))
	return err
}

// prefillFrom extracts answer context from a menu button click so the
// opened form shows the question the user already asked.
func prefillFrom(env *envelope.Envelope) *cards.Prefill {
	return prefillFromSubmission(optionalSubmission(env))
}

func prefillFromSubmission(s *envelope.Submission) *cards.Prefill {
	if s == nil || s.Previous == nil {
		return nil
	}
	return &cards.Prefill{Question: s.Previous.Question, AnswerID: s.Previous.ID}
}
