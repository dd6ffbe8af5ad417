// ABOUTME: Admin HTTP API for ticket inspection and settings changes
// ABOUTME: JWT-protected JSON endpoints consumed by the operator CLI

package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/2389/desk-gateway/internal/ticket"
)

// TicketResponse is the JSON view of a ticket returned by the admin API.
type TicketResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	RequesterName  string    `json:"requester_name"`
	RequesterUPN   string    `json:"requester_upn,omitempty"`
	AssigneeName   string    `json:"assignee_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastModifiedBy string    `json:"last_modified_by,omitempty"`
}

// ListTicketsResponse is the JSON response for GET /api/tickets.
type ListTicketsResponse struct {
	Tickets []TicketResponse `json:"tickets"`
}

func ticketResponse(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		Title:          t.Title,
		Status:         t.Status.String(),
		RequesterName:  t.RequesterName,
		RequesterUPN:   t.RequesterUPN,
		AssigneeName:   t.AssigneeName,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		LastModifiedBy: t.LastModifiedBy,
	}
}

func (g *Gateway) handleListTickets(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			g.sendJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	stored, err := g.store.ListTickets(r.Context(), limit)
	if err != nil {
		g.logger.Error("listing tickets failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "listing tickets failed")
		return
	}

	resp := ListTicketsResponse{Tickets: make([]TicketResponse, 0, len(stored))}
	for _, t := range stored {
		resp.Tickets = append(resp.Tickets, ticketResponse(t))
	}
	g.writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	t, err := g.store.GetTicket(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "ticket not found")
			return
		}
		g.logger.Error("loading ticket failed", "ticket_id", r.PathValue("id"), "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "loading ticket failed")
		return
	}
	g.writeJSON(w, http.StatusOK, ticketResponse(t))
}

// handlePutSetting updates one slow-changing setting (welcome text, team
// id, knowledge base id). The cache entry is invalidated so the change
// takes effect on the next turn rather than after TTL expiry.
func (g *Gateway) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var body struct {
		Value string `json:"value"`
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEnvelopeBytes))
	if err != nil || json.Unmarshal(raw, &body) != nil {
		g.sendJSONError(w, http.StatusBadRequest, "malformed setting value")
		return
	}

	if err := g.store.PutSetting(r.Context(), key, body.Value); err != nil {
		g.logger.Error("storing setting failed", "key", key, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "storing setting failed")
		return
	}
	g.settings.Invalidate(key)
	g.writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": body.Value})
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		g.logger.Error("encoding response failed", "error", err)
	}
}
