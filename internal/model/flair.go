package model

import (
	"regexp"
	"strings"
)

// Flair is the category tag of a forum item, normalized to a closed set.
type Flair string

const (
	FlairHelp       Flair = "Help"
	FlairDiscussion Flair = "Discussion"
	FlairSuggestion Flair = "Suggestion"
	FlairMisc       Flair = "Misc"
	FlairGameplay   Flair = "Gameplay"
	FlairFeedback   Flair = "Feedback"
	FlairNone       Flair = "No Flair"
)

// Flairs lists the assignable categories, excluding FlairNone.
var Flairs = []Flair{
	FlairHelp,
	FlairDiscussion,
	FlairSuggestion,
	FlairMisc,
	FlairGameplay,
	FlairFeedback,
}

var flairTable = map[string]Flair{
	"help":       FlairHelp,
	"discussion": FlairDiscussion,
	"suggestion": FlairSuggestion,
	"misc":       FlairMisc,
	"gameplay":   FlairGameplay,
	"feedback":   FlairFeedback,
}

// emojiMarker matches the :name: emoji markers forum flairs are decorated with.
var emojiMarker = regexp.MustCompile(`:\w+:`)

// NormalizeFlair strips emoji markers, trims, lowercases, and maps the result
// through the canonical flair table. Anything unrecognized maps to FlairNone.
// The function is idempotent: feeding its output back in returns the same value.
func NormalizeFlair(raw string) Flair {
	cleaned := strings.ToLower(strings.TrimSpace(emojiMarker.ReplaceAllString(raw, "")))
	if flair, ok := flairTable[cleaned]; ok {
		return flair
	}
	return FlairNone
}

// Ingestible reports whether a submission with this flair is persisted by the
// polling scan. FlairNone is assignable only through the interactive flow's
// normalization fallback, never from ingestion.
func (f Flair) Ingestible() bool {
	return f != FlairNone
}
