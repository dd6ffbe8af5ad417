// ABOUTME: Card builders for the expert team channel
// ABOUTME: Ticket work cards, team tour, and cross-audience notifications

package cards

import (
	"github.com/2389/desk-gateway/internal/connect"
	"github.com/2389/desk-gateway/internal/envelope"
	"github.com/2389/desk-gateway/internal/ticket"
)

const factTimeLayout = "Jan 2, 2006 15:04 MST"

// SMETour builds the three-panel tour carousel for the expert channel.
func SMETour(baseURI string) []connect.Attachment {
	tour := Strings.SME.Tour
	panels := []Card{
		{Title: tour.TicketsTitle, Text: tour.TicketsText, ImageURL: baseURI + "/content/tickets.png"},
		{Title: tour.AnswersTitle, Text: tour.AnswersText, ImageURL: baseURI + "/content/answers.png"},
		{Title: tour.FeedbackTitle, Text: tour.FeedbackText, ImageURL: baseURI + "/content/teamfeedback.png"},
	}

	items := make([]connect.Attachment, 0, len(panels))
	for _, p := range panels {
		items = append(items, Hero(p))
	}
	return items
}

// CustomMessage builds the short explainer card posted when an expert
// messages the bot directly instead of using a ticket card.
func CustomMessage() connect.Attachment {
	return Hero(Card{Text: Strings.SME.CustomMessage})
}

// SMETicket builds the team-channel work card for a ticket. The facts and
// action buttons follow the ticket's current status, so the same builder
// serves both the initial post and every in-place update.
func SMETicket(t *ticket.Ticket) connect.Attachment {
	card := Card{
		Title: t.Title,
		Text:  t.Description,
		Facts: ticketFacts(t),
	}

	switch t.Status {
	case ticket.StatusOpen:
		card.Actions = []Action{
			ticketAction(Strings.SME.ActionAssign, envelope.ActionAssignToSelf, t.ID),
			ticketAction(Strings.SME.ActionClose, envelope.ActionClose, t.ID),
		}
	case ticket.StatusAssigned:
		card.Actions = []Action{
			ticketAction(Strings.SME.ActionClose, envelope.ActionClose, t.ID),
			ticketAction(Strings.SME.ActionReopen, envelope.ActionReopen, t.ID),
		}
	case ticket.StatusClosed:
		card.Actions = []Action{
			ticketAction(Strings.SME.ActionReopen, envelope.ActionReopen, t.ID),
		}
	}

	return Adaptive(card)
}

func ticketAction(title, action, ticketID string) Action {
	return Action{
		Type:  ActionSubmit,
		Title: title,
		Value: envelope.Submission{Action: action, TicketID: ticketID},
	}
}

func ticketFacts(t *ticket.Ticket) []Fact {
	facts := []Fact{
		{Title: Strings.SME.StatusFact, Value: ticketStatusLabel(t)},
		{Title: Strings.SME.CreatedFact, Value: t.CreatedAt.Format(factTimeLayout)},
	}
	switch t.Status {
	case ticket.StatusAssigned:
		facts = append(facts, Fact{Title: Strings.SME.AssigneeFact, Value: t.AssigneeName})
	case ticket.StatusClosed:
		facts = append(facts, Fact{Title: Strings.SME.ClosedFact, Value: t.UpdatedAt.Format(factTimeLayout)})
	}
	return facts
}

func ticketStatusLabel(t *ticket.Ticket) string {
	switch t.Status {
	case ticket.StatusAssigned:
		return Expand(Strings.SME.StatusAssigned, map[string]string{"assignee": t.AssigneeName})
	case ticket.StatusClosed:
		return Strings.SME.StatusClosed
	default:
		return Strings.SME.StatusOpen
	}
}

// TicketSummary is the notification-feed summary line for a ticket post
// or update in the team channel.
func TicketSummary(t *ticket.Ticket, action ticket.Action) string {
	switch action {
	case ticket.ActionAssignToSelf:
		return Expand(Strings.SME.TicketSummaryAssigned, map[string]string{"assignee": t.AssigneeName})
	case ticket.ActionClose:
		return Strings.SME.TicketSummaryClosed
	case ticket.ActionReopen:
		return Strings.SME.TicketSummaryReopened
	default:
		return Expand(Strings.SME.TicketSummaryNew, map[string]string{"requester": t.RequesterName})
	}
}

// TransitionConfirmation is the short text posted into the team thread
// after an expert works a ticket.
func TransitionConfirmation(t *ticket.Ticket, action ticket.Action) string {
	switch action {
	case ticket.ActionAssignToSelf:
		return Expand(Strings.SME.ConfirmAssigned, map[string]string{"assignee": t.AssigneeName})
	case ticket.ActionClose:
		return Expand(Strings.SME.ConfirmClosed, map[string]string{"expert": t.LastModifiedBy})
	case ticket.ActionReopen:
		return Expand(Strings.SME.ConfirmReopened, map[string]string{"expert": t.LastModifiedBy})
	default:
		return ""
	}
}

// UserNotification builds the status card delivered back to the original
// requester when their ticket changes state.
func UserNotification(t *ticket.Ticket, action ticket.Action) connect.Attachment {
	var text string
	switch action {
	case ticket.ActionAssignToSelf:
		text = Strings.User.NotificationAssigned
	case ticket.ActionClose:
		text = Strings.User.NotificationClosed
	case ticket.ActionReopen:
		text = Strings.User.NotificationReopened
	default:
		text = Strings.User.NotificationCreated
	}

	return Hero(Card{
		Title: t.Title,
		Text:  text,
		Facts: []Fact{
			{Title: Strings.SME.StatusFact, Value: ticketStatusLabel(t)},
		},
	})
}
