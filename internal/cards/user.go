// ABOUTME: Card builders for the end-user conversation
// ABOUTME: Welcome, tour, forms, answer responses, and unrecognized replies

package cards

import (
	"github.com/2389/desk-gateway/internal/answers"
	"github.com/2389/desk-gateway/internal/connect"
	"github.com/2389/desk-gateway/internal/envelope"
)

// menuActions are the three standing menu buttons offered to end users.
func menuActions() []Action {
	return []Action{
		{Type: ActionMessageBack, Title: Strings.User.TakeATour, Text: Strings.User.TakeATour},
		{Type: ActionMessageBack, Title: Strings.User.AskAnExpert, Text: Strings.User.AskAnExpert},
		{Type: ActionMessageBack, Title: Strings.User.ShareFeedback, Text: Strings.User.ShareFeedback},
	}
}

// Welcome builds the one-time welcome card for a new personal
// conversation. welcomeText comes from the settings store; the embedded
// default is used when it is empty.
func Welcome(welcomeText string) connect.Attachment {
	if welcomeText == "" {
		welcomeText = Strings.User.WelcomeDefault
	}
	return Hero(Card{
		Text:    welcomeText,
		Actions: menuActions(),
	})
}

// UserTour builds the three-panel tour carousel for end users.
func UserTour(baseURI string) []connect.Attachment {
	tour := Strings.User.Tour
	panels := []Card{
		{Title: tour.AskTitle, Text: tour.AskText, ImageURL: baseURI + "/content/qna.png"},
		{Title: tour.ExpertTitle, Text: tour.ExpertText, ImageURL: baseURI + "/content/expert.png"},
		{Title: tour.FeedbackTitle, Text: tour.FeedbackText, ImageURL: baseURI + "/content/feedback.png"},
	}

	items := make([]connect.Attachment, 0, len(panels))
	for _, p := range panels {
		items = append(items, Hero(p))
	}
	return items
}

// Prefill carries answer context into a form opened from an answer card,
// so the expert sees what the user already asked and what the bot said.
type Prefill struct {
	Question string
	AnswerID int
}

// AskAnExpertForm builds the escalation form. A non-empty validationErr
// re-renders the form flagged for correction instead of accepting it.
func AskAnExpertForm(prefill *Prefill, validationErr string) connect.Attachment {
	question := ""
	var submitValue envelope.Submission
	submitValue.Action = envelope.ActionAskAnExpert
	if prefill != nil {
		question = prefill.Question
		if prefill.AnswerID != 0 {
			submitValue.Previous = &envelope.PreviousAnswer{ID: prefill.AnswerID, Question: prefill.Question}
		}
	}

	return Adaptive(Card{
		Title: Strings.User.AskAnExpertTitle,
		Inputs: []Input{{
			ID:          "questionText",
			Placeholder: Strings.User.AskAnExpertPlaceholder,
			Value:       question,
			Multiline:   true,
		}},
		Actions: []Action{{
			Type:  ActionSubmit,
			Title: Strings.User.AskAnExpertTitle,
			Value: submitValue,
		}},
		Error: validationErr,
	})
}

// ShareFeedbackForm builds the feedback form.
func ShareFeedbackForm(prefill *Prefill, validationErr string) connect.Attachment {
	var submitValue envelope.Submission
	submitValue.Action = envelope.ActionShareFeedback
	if prefill != nil && prefill.AnswerID != 0 {
		submitValue.Previous = &envelope.PreviousAnswer{ID: prefill.AnswerID, Question: prefill.Question}
	}

	return Adaptive(Card{
		Title: Strings.User.ShareFeedbackTitle,
		Inputs: []Input{{
			ID:          "feedbackText",
			Placeholder: Strings.User.ShareFeedbackPlaceholder,
			Multiline:   true,
		}},
		Actions: []Action{{
			Type:  ActionSubmit,
			Title: Strings.User.ShareFeedbackTitle,
			Value: submitValue,
		}},
		Error: validationErr,
	})
}

// Response builds the default answer card: the rendered answer plus
// follow-up prompts and the standing escalation actions carrying the
// answer as context.
func Response(question string, answer *answers.Candidate) connect.Attachment {
	actions := make([]Action, 0, len(answer.Prompts)+2)
	for _, p := range answer.Prompts {
		actions = append(actions, Action{
			Type:  ActionMessageBack,
			Title: p.DisplayText,
			Text:  p.DisplayText,
			Value: envelope.Submission{
				IsPrompt: true,
				Previous: &envelope.PreviousAnswer{ID: answer.ID, Question: question},
			},
		})
	}

	escalation := &envelope.PreviousAnswer{ID: answer.ID, Question: question}
	actions = append(actions,
		Action{
			Type:  ActionMessageBack,
			Title: Strings.User.AskAnExpert,
			Text:  Strings.User.AskAnExpert,
			Value: envelope.Submission{Action: envelope.ActionAskAnExpert, Previous: escalation},
		},
		Action{
			Type:  ActionMessageBack,
			Title: Strings.User.ShareFeedback,
			Text:  Strings.User.ShareFeedback,
			Value: envelope.Submission{Action: envelope.ActionShareFeedback, Previous: escalation},
		},
	)

	return Adaptive(Card{
		Text:    RenderMarkdown(answer.Answer),
		Actions: actions,
	})
}

// RichAnswer builds the rich variant used when the answer body itself
// carries structured title/subtitle/image/link fields.
func RichAnswer(body *RichBody) connect.Attachment {
	text := body.Text
	if text == "" {
		text = body.Subtitle
	}

	card := Card{
		Title:    body.Title,
		Subtitle: body.Subtitle,
		Text:     RenderMarkdown(text),
		ImageURL: body.ImageURL,
	}
	if body.RedirectionURL != "" {
		card.Actions = append(card.Actions, Action{
			Type:  ActionOpenURL,
			Title: body.Title,
			URL:   body.RedirectionURL,
		})
	}
	return Hero(card)
}

// Unrecognized builds the reply for a question with no knowledge-base
// match, offering escalation with the question pre-filled.
func Unrecognized(question string) connect.Attachment {
	return Hero(Card{
		Text: Strings.User.Unrecognized,
		Actions: []Action{{
			Type:  ActionMessageBack,
			Title: Strings.User.AskAnExpert,
			Text:  Strings.User.AskAnExpert,
			Value: envelope.Submission{Action: envelope.ActionAskAnExpert, QuestionText: question},
		}},
	})
}

// PendingKnowledgeBase builds the reply used while the knowledge base has
// not been published yet.
func PendingKnowledgeBase() connect.Attachment {
	return Hero(Card{
		Text: Strings.User.PendingKnowledgeBase,
		Actions: []Action{{
			Type:  ActionMessageBack,
			Title: Strings.User.AskAnExpert,
			Text:  Strings.User.AskAnExpert,
			Value: envelope.Submission{Action: envelope.ActionAskAnExpert},
		}},
	})
}
