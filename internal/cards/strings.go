// ABOUTME: Embedded text resources for user-visible strings
// ABOUTME: Loaded once from strings.toml at package init

package cards

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed strings.toml
var stringsTOML []byte

// TourStrings are the three tour panel texts for one audience.
type TourStrings struct {
	AskTitle      string `toml:"ask_title"`
	AskText       string `toml:"ask_text"`
	ExpertTitle   string `toml:"expert_title"`
	ExpertText    string `toml:"expert_text"`
	FeedbackTitle string `toml:"feedback_title"`
	FeedbackText  string `toml:"feedback_text"`
}

// SMETourStrings are the three SME tour panel texts.
type SMETourStrings struct {
	TicketsTitle  string `toml:"tickets_title"`
	TicketsText   string `toml:"tickets_text"`
	AnswersTitle  string `toml:"answers_title"`
	AnswersText   string `toml:"answers_text"`
	FeedbackTitle string `toml:"feedback_title"`
	FeedbackText  string `toml:"feedback_text"`
}

// UserStrings are the end-user audience texts.
type UserStrings struct {
	WelcomeDefault           string      `toml:"welcome_default"`
	TakeATour                string      `toml:"take_a_tour"`
	AskAnExpert              string      `toml:"ask_an_expert"`
	ShareFeedback            string      `toml:"share_feedback"`
	AskAnExpertTitle         string      `toml:"ask_an_expert_title"`
	AskAnExpertPlaceholder   string      `toml:"ask_an_expert_placeholder"`
	AskAnExpertRequired      string      `toml:"ask_an_expert_required"`
	ShareFeedbackTitle       string      `toml:"share_feedback_title"`
	ShareFeedbackPlaceholder string      `toml:"share_feedback_placeholder"`
	ShareFeedbackRequired    string      `toml:"share_feedback_required"`
	FeedbackThankYou         string      `toml:"feedback_thank_you"`
	Unrecognized             string      `toml:"unrecognized"`
	PendingKnowledgeBase     string      `toml:"pending_knowledge_base"`
	ErrorGeneric             string      `toml:"error_generic"`
	AskPrompt                string      `toml:"ask_prompt"`
	NotificationCreated      string      `toml:"notification_created"`
	NotificationAssigned     string      `toml:"notification_assigned"`
	NotificationClosed       string      `toml:"notification_closed"`
	NotificationReopened     string      `toml:"notification_reopened"`
	Tour                     TourStrings `toml:"tour"`
}

// SMEStrings are the expert audience texts.
type SMEStrings struct {
	TeamTour              string         `toml:"team_tour"`
	CustomMessage         string         `toml:"custom_message"`
	TicketSummaryNew      string         `toml:"ticket_summary_new"`
	TicketSummaryAssigned string         `toml:"ticket_summary_assigned"`
	TicketSummaryClosed   string         `toml:"ticket_summary_closed"`
	TicketSummaryReopened string         `toml:"ticket_summary_reopened"`
	ConfirmAssigned       string         `toml:"confirm_assigned"`
	ConfirmClosed         string         `toml:"confirm_closed"`
	ConfirmReopened       string         `toml:"confirm_reopened"`
	StatusFact            string         `toml:"status_fact"`
	CreatedFact           string         `toml:"created_fact"`
	AssigneeFact          string         `toml:"assignee_fact"`
	ClosedFact            string         `toml:"closed_fact"`
	StatusOpen            string         `toml:"status_open"`
	StatusAssigned        string         `toml:"status_assigned"`
	StatusClosed          string         `toml:"status_closed"`
	ActionAssign          string         `toml:"action_assign"`
	ActionClose           string         `toml:"action_close"`
	ActionReopen          string         `toml:"action_reopen"`
	Tour                  SMETourStrings `toml:"tour"`
}

// Resources holds all loaded text resources.
type Resources struct {
	User UserStrings `toml:"user"`
	SME  SMEStrings  `toml:"sme"`
}

// Strings is the loaded resource set, populated at init.
var Strings Resources

func init() {
	if err := toml.Unmarshal(stringsTOML, &Strings); err != nil {
		panic(fmt.Sprintf("cards: parsing embedded strings.toml: %v", err))
	}
}

// Expand substitutes {name} placeholders in a resource string.
func Expand(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}
