// ABOUTME: Shared test doubles for handler tests
// ABOUTME: Recording sender, team notifier, and canned answer resolver

package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/2389/desk-gateway/internal/answers"
	"github.com/2389/desk-gateway/internal/cache"
	"github.com/2389/desk-gateway/internal/connect"
	"github.com/2389/desk-gateway/internal/envelope"
)

type sentMessage struct {
	ConversationID string
	Message        connect.Message
}

type mockSender struct {
	mu        sync.Mutex
	typing    []string
	sent      []sentMessage
	sendErr   error
	typingErr error
}

func (m *mockSender) SendToConversation(ctx context.Context, conversationID string, msg connect.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, sentMessage{ConversationID: conversationID, Message: msg})
	return "msg-sent", nil
}

func (m *mockSender) SendTyping(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.typingErr != nil {
		return m.typingErr
	}
	m.typing = append(m.typing, conversationID)
	return nil
}

type teamPost struct {
	TeamID  string
	Message connect.Message
}

type updateCall struct {
	Ref     connect.ThreadRef
	Message connect.Message
}

type mockNotifier struct {
	mu        sync.Mutex
	posts     []teamPost
	updates   []updateCall
	postErr   error
	updateErr error
	ref       connect.ThreadRef
}

func (m *mockNotifier) PostToTeam(ctx context.Context, teamID string, msg connect.Message) (connect.ThreadRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return connect.ThreadRef{}, m.postErr
	}
	m.posts = append(m.posts, teamPost{TeamID: teamID, Message: msg})
	return m.ref, nil
}

func (m *mockNotifier) UpdateMessage(ctx context.Context, ref connect.ThreadRef, msg connect.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, updateCall{Ref: ref, Message: msg})
	return nil
}

type mockResolver struct {
	result  answers.Result
	err     error
	queries []answers.Query
}

func (m *mockResolver) Resolve(ctx context.Context, q answers.Query) (answers.Result, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return answers.Result{}, m.err
	}
	return m.result, nil
}

func (m *mockResolver) IsKnowledgeBasePublished(ctx context.Context, knowledgeBaseID string) (bool, error) {
	return true, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c := cache.New(time.Minute)
	t.Cleanup(c.Close)
	return c
}

func personalMessage(text string) *envelope.Envelope {
	return &envelope.Envelope{
		Type:         envelope.TypeMessage,
		ID:           "env-1",
		Text:         text,
		From:         envelope.Account{ID: "user-1", Name: "Riley", UserPrincipalName: "riley@example.com"},
		Recipient:    envelope.Account{ID: "28:user-app"},
		Conversation: envelope.Conversation{ID: "conv-user-1", Type: envelope.ConversationPersonal, TenantID: "tenant-1"},
	}
}

func channelMessage(text string) *envelope.Envelope {
	return &envelope.Envelope{
		Type:         envelope.TypeMessage,
		ID:           "env-2",
		Text:         text,
		From:         envelope.Account{ID: "expert-1", Name: "Sam"},
		Recipient:    envelope.Account{ID: "28:sme-app"},
		Conversation: envelope.Conversation{ID: "conv-team-1", Type: envelope.ConversationChannel, TenantID: "tenant-1"},
	}
}

func withSubmission(t *testing.T, env *envelope.Envelope, s envelope.Submission) *envelope.Envelope {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	env.Value = raw
	env.ReplyToID = "prior-card-1"
	return env
}
