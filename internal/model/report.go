package model

import "time"

type Platform string

const (
	PlatformDiscord Platform = "Discord"
	PlatformReddit  Platform = "Reddit"
)

// Status is the workflow state of an issue report. The values are the
// canonical display names stored in the structured store; they move through
// the declared order but carry no numeric meaning.
type Status string

const (
	StatusInQueue             Status = "In queue"
	StatusAskedForEmail       Status = "Asked for the email"
	StatusMadeRecommendations Status = "Made recommendations"
	StatusMadeATicket         Status = "Made a ticket"
	StatusSolved              Status = "Solved"
)

// Statuses lists all workflow states in their declared order.
var Statuses = []Status{
	StatusInQueue,
	StatusAskedForEmail,
	StatusMadeRecommendations,
	StatusMadeATicket,
	StatusSolved,
}

// StatusCodes maps each status to the short code used in interactive
// selector payloads, which have a tight length budget.
var StatusCodes = map[Status]string{
	StatusInQueue:             "IQ",
	StatusAskedForEmail:       "AFE",
	StatusMadeRecommendations: "MR",
	StatusMadeATicket:         "MT",
	StatusSolved:              "S",
}

// StatusByCode resolves a selector code back to its status.
func StatusByCode(code string) (Status, bool) {
	for status, c := range StatusCodes {
		if c == code {
			return status, true
		}
	}
	return "", false
}

// IssueReport is a user-submitted problem or request routed to moderators.
// The ID is assigned once at creation and never rewritten; for forum
// submissions it is the submission id, for chat reports a generated UUID.
type IssueReport struct {
	ID          string
	Date        time.Time
	Username    string
	Title       string
	Description string
	Platform    Platform
	Flair       Flair
	Status      Status
	URL         *string
	Email       *string

	// Moderator fields are empty until a privileged identity replies.
	ResponsibleModerator  *string
	ResponseFromModerator *string

	// PageID is the structured-store record handle used for updates.
	PageID string
}

// HasModeratorResponse reports whether a moderator has replied to the report.
func (r IssueReport) HasModeratorResponse() bool {
	return r.ResponseFromModerator != nil && *r.ResponseFromModerator != ""
}
