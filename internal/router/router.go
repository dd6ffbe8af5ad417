// ABOUTME: Router dispatches inbound envelopes to the end-user or SME handler
// ABOUTME: Selection is by the bot identity embedded in the recipient field

package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/desk-gateway/internal/envelope"
)

// ErrUnroutableRecipient means the envelope's recipient identity matches
// neither configured application id. This is a deployment configuration
// error; the envelope is not delivered to any handler.
var ErrUnroutableRecipient = errors.New("recipient matches no configured application")

// Handler processes one inbound envelope to completion.
type Handler interface {
	Handle(ctx context.Context, env *envelope.Envelope) error
}

// Router inspects inbound envelopes and dispatches each to the handler for
// its audience. Routing itself is side-effect-free: it only reads the
// recipient identity and delegates.
type Router struct {
	userAppID string
	smeAppID  string
	user      Handler
	sme       Handler
}

// New creates a Router for the two configured application identities.
func New(userAppID, smeAppID string, user, sme Handler) *Router {
	return &Router{
		userAppID: userAppID,
		smeAppID:  smeAppID,
		user:      user,
		sme:       sme,
	}
}

// Dispatch extracts the bot identity from the envelope's recipient and
// invokes the matching handler. Returns envelope.ErrInvalidIdentity when
// the recipient identifier is malformed and ErrUnroutableRecipient when
// the identity matches neither audience.
func (r *Router) Dispatch(ctx context.Context, env *envelope.Envelope) error {
	botID, err := envelope.ExtractBotID(env.Recipient.ID)
	if err != nil {
		return fmt.Errorf("extracting recipient identity from %q: %w", env.Recipient.ID, err)
	}

	switch botID {
	case r.userAppID:
		return r.user.Handle(ctx, env)
	case r.smeAppID:
		return r.sme.Handle(ctx, env)
	default:
		return fmt.Errorf("bot id %q: %w", botID, ErrUnroutableRecipient)
	}
}
