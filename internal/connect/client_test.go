// ABOUTME: Tests for the transport client against an httptest server
// ABOUTME: Covers team posts, in-place updates, replies, and failures

package connect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostToTeamReturnsThreadRef(t *testing.T) {
	var got createConversationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/conversations", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(conversationResponse{ID: "19:thread;x", ActivityID: "act-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", nil)
	ref, err := c.PostToTeam(context.Background(), "19:team", NewTextMessage("new ticket"))
	require.NoError(t, err)

	assert.Equal(t, ThreadRef{ConversationID: "19:thread;x", MessageID: "act-1"}, ref)
	assert.True(t, got.IsGroup)
	assert.Equal(t, "new ticket", got.Activity.Text)
}

func TestUpdateMessage(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewEncoder(w).Encode(activityResponse{ID: "act-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", nil)
	ref := ThreadRef{ConversationID: "19:thread", MessageID: "act-1"}
	err := c.UpdateMessage(context.Background(), ref, NewTextMessage("updated card"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/v3/conversations/19:thread/activities/act-1", gotPath)
}

func TestSendToConversation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/conversations/conv-1/activities", r.URL.Path)
		json.NewEncoder(w).Encode(activityResponse{ID: "msg-9"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", nil)
	id, err := c.SendToConversation(context.Background(), "conv-1", NewTextMessage("hello"))
	require.NoError(t, err)
	assert.Equal(t, "msg-9", id)
}

func TestSendTyping(t *testing.T) {
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		gotType = msg.Type
		json.NewEncoder(w).Encode(activityResponse{ID: "t-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", nil)
	require.NoError(t, c.SendTyping(context.Background(), "conv-1"))
	assert.Equal(t, "typing", gotType)
}

func TestDeliveryFailureIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", nil)
	_, err := c.PostToTeam(context.Background(), "19:team", NewTextMessage("x"))
	require.ErrorIs(t, err, ErrDeliveryFailed)
}

func TestContextCancellationHonored(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(srv.URL, "tok", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.PostToTeam(ctx, "19:team", NewTextMessage("x"))
	require.Error(t, err)
}
