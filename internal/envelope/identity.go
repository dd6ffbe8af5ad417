// ABOUTME: Bot identity extraction from raw recipient identifiers
// ABOUTME: Strips the channel-account prefix to recover the logical app id

package envelope

import (
	"errors"
	"strings"
)

// ErrInvalidIdentity is returned when a recipient identifier is empty or
// does not carry the expected channel-account prefix.
var ErrInvalidIdentity = errors.New("invalid recipient identity")

// botIDPrefix is the channel-account-kind marker plus delimiter that
// frontends prepend to the logical app id (e.g. "28:app-guid").
const botIDPrefix = "28:"

// ExtractBotID strips the channel-account prefix from a raw recipient
// identifier and returns the logical bot identity.
//
// The split happens on the first occurrence of the prefix only, so the
// result stays correct even when the remainder itself contains the
// delimiter character. Callers get ErrInvalidIdentity rather than partial
// data when the prefix is absent.
func ExtractBotID(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidIdentity
	}
	idx := strings.Index(raw, botIDPrefix)
	if idx < 0 {
		return "", ErrInvalidIdentity
	}
	return raw[idx+len(botIDPrefix):], nil
}
