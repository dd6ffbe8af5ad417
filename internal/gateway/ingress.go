// ABOUTME: Envelope ingress: decode, dedupe, dispatch, error mapping
// ABOUTME: One POST per envelope; the turn completes before the response is written

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/2389/desk-gateway/internal/dedupe"
	"github.com/2389/desk-gateway/internal/envelope"
	"github.com/2389/desk-gateway/internal/router"
	"github.com/2389/desk-gateway/internal/ticket"
)

// maxEnvelopeBytes caps the inbound body size.
const maxEnvelopeBytes = 1 << 20

// handleInbound processes one inbound envelope. The body is buffered
// once, so routing reads the recipient identity without consuming the
// stream the decoder needs.
func (g *Gateway) handleInbound(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEnvelopeBytes))
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "reading request body")
		return
	}

	var env envelope.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "malformed envelope")
		return
	}

	// Transports redeliver; a redelivered envelope must not replay its
	// side effects.
	key := dedupe.Key(env.Conversation.ID, env.ID)
	if env.ID != "" && g.dedupe.Seen(key) {
		g.logger.Info("duplicate envelope dropped",
			"envelope_id", env.ID,
			"conversation_id", env.Conversation.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := g.router.Dispatch(r.Context(), &env); err != nil {
		// A failed turn is forgotten so the transport's redelivery can
		// retry it.
		if env.ID != "" {
			g.dedupe.Forget(key)
		}
		g.logger.Error("envelope dispatch failed",
			"envelope_id", env.ID,
			"conversation_id", env.Conversation.ID,
			"recipient_id", env.Recipient.ID,
			"error", err)
		g.sendJSONError(w, statusForError(err), "envelope processing failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// statusForError maps turn errors onto transport status codes so the
// outer delivery layer can apply its retry policy.
func statusForError(err error) int {
	switch {
	case errors.Is(err, envelope.ErrInvalidIdentity):
		return http.StatusBadRequest
	case errors.Is(err, router.ErrUnroutableRecipient):
		// A recipient matching neither surface is a deployment
		// configuration problem, not a client one.
		return http.StatusInternalServerError
	case errors.Is(err, ticket.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ticket.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
