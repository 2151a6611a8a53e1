package model

import "time"

// Polarity is a moderator-facing up/down signal. The emoji are the literal
// select values stored in the analytics collection.
type Polarity string

const (
	PolarityPositive Polarity = "👍"
	PolarityNegative Polarity = "👎"
)

// ReactionBodyLimit caps the subject body persisted with a reaction; the
// structured store rejects rich-text fragments beyond 2000 characters.
const ReactionBodyLimit = 2000

// Reaction ties an up/down signal to the forum item a reply referenced.
// Date is assigned by the store at creation.
type Reaction struct {
	Date     time.Time
	Title    string
	Body     string
	URL      string
	Polarity Polarity
}

// TruncateBody trims the reaction body to ReactionBodyLimit runes, marking
// the cut with an ellipsis.
func TruncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= ReactionBodyLimit {
		return body
	}
	return string(runes[:ReactionBodyLimit-3]) + "..."
}
