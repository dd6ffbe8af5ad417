// ABOUTME: Answer body classification and markdown rendering
// ABOUTME: Detects structured rich answers embedded as JSON in the body

package cards

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/yuin/goldmark"
)

// RichBody is the structured metadata some knowledge-base answers embed
// directly in the answer text.
type RichBody struct {
	Title          string `json:"title"`
	Subtitle       string `json:"subtitle"`
	ImageURL       string `json:"imageUrl"`
	RedirectionURL string `json:"redirectionUrl"`
	Text           string `json:"text"`
}

// ParseRichBody attempts to decode an answer body as structured rich
// content. The second return is false when the body is plain text or the
// JSON carries none of the rich fields.
func ParseRichBody(raw string) (*RichBody, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var body RichBody
	if err := json.Unmarshal([]byte(trimmed), &body); err != nil {
		return nil, false
	}
	if body.Title == "" && body.Subtitle == "" && body.ImageURL == "" && body.RedirectionURL == "" {
		return nil, false
	}
	return &body, true
}

// RenderMarkdown converts a markdown answer body to HTML for card text.
// On a rendering failure the raw text is returned unchanged; a readable
// plain answer beats a failed turn.
func RenderMarkdown(raw string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(raw), &buf); err != nil {
		return raw
	}
	return strings.TrimSpace(buf.String())
}
