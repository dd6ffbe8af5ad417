// ABOUTME: Shared turn helpers and settings access for the two handlers
// ABOUTME: Tenant validation, typing signals, and the apology-on-failure reply

package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/2389/desk-gateway/internal/cache"
	"github.com/2389/desk-gateway/internal/cards"
	"github.com/2389/desk-gateway/internal/connect"
	"github.com/2389/desk-gateway/internal/envelope"
	"github.com/2389/desk-gateway/internal/store"
)

// Config is the immutable per-handler configuration captured at
// construction time.
type Config struct {
	// TenantID restricts inbound traffic to one tenant. Empty disables
	// the check.
	TenantID string

	// AppBaseURI is the externally reachable base URL used for absolute
	// links in rendered content (tour images).
	AppBaseURI string

	// TestKnowledgeBase routes questions to the backend's unpublished
	// test index instead of the published one.
	TestKnowledgeBase bool
}

// SettingsReader is the slice of the store the settings layer needs.
type SettingsReader interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// Settings fronts the slow-changing settings table with the TTL cache.
// Concurrent misses for the same key may each hit the store; the table
// changes rarely enough that redundant fetches are cheaper than
// coordination.
type Settings struct {
	store SettingsReader
	cache *cache.Cache
}

// NewSettings creates a cached settings reader.
func NewSettings(s SettingsReader, c *cache.Cache) *Settings {
	return &Settings{store: s, cache: c}
}

func (s *Settings) get(ctx context.Context, key string) (string, error) {
	return s.cache.GetOrFetch(ctx, key, func(ctx context.Context) (string, error) {
		value, err := s.store.GetSetting(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			// An unset key is a valid (empty) value, not a fetch failure.
			return "", nil
		}
		return value, err
	})
}

// WelcomeText returns the operator-configured welcome message, or ""
// when none is set.
func (s *Settings) WelcomeText(ctx context.Context) (string, error) {
	return s.get(ctx, store.SettingWelcomeText)
}

// TeamID returns the SME team conversation target for escalations.
func (s *Settings) TeamID(ctx context.Context) (string, error) {
	return s.get(ctx, store.SettingTeamID)
}

// KnowledgeBaseID returns the configured knowledge base, or "" when the
// backend has not been set up yet.
func (s *Settings) KnowledgeBaseID(ctx context.Context) (string, error) {
	return s.get(ctx, store.SettingKnowledgeBaseID)
}

// fromExpectedTenant reports whether the envelope originates from the
// configured tenant. An empty configured tenant accepts everything.
func fromExpectedTenant(tenantID string, env *envelope.Envelope) bool {
	if tenantID == "" {
		return true
	}
	return env.Conversation.TenantID == tenantID
}

// sendTyping emits the presence signal before a substantive reply.
// Failures are logged and swallowed; a turn never fails over typing.
func sendTyping(ctx context.Context, sender connect.Sender, conversationID string, logger *slog.Logger) {
	if err := sender.SendTyping(ctx, conversationID); err != nil {
		logger.Warn("typing signal failed", "conversation_id", conversationID, "error", err)
	}
}

// apologize sends the generic failure reply for a surfaced turn error.
// The original error is logged by the caller and propagates regardless
// of whether the apology itself lands.
func apologize(ctx context.Context, sender connect.Sender, conversationID string, logger *slog.Logger) {
	msg := connect.NewTextMessage(cards.Strings.User.ErrorGeneric)
	if _, err := sender.SendToConversation(ctx, conversationID, msg); err != nil {
		logger.Warn("failure reply not delivered", "conversation_id", conversationID, "error", err)
	}
}

// optionalSubmission decodes the structured payload riding on a message
// button click. Returns nil when the envelope carries none.
func optionalSubmission(env *envelope.Envelope) *envelope.Submission {
	if len(env.Value) == 0 {
		return nil
	}
	s, err := envelope.DecodeSubmission(env)
	if err != nil {
		return nil
	}
	return s
}
