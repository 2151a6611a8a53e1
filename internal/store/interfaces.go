package store

import (
	"context"
	"errors"
	"time"

	"communitybridge/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")

	// ErrNoCollection is returned by stores whose backing collection is not
	// configured for this deployment.
	ErrNoCollection = errors.New("collection not configured")
)

// IssueReportStore persists issue reports and their workflow mutations.
type IssueReportStore interface {
	Create(ctx context.Context, report model.IssueReport) (model.IssueReport, error)
	UpdateStatus(ctx context.Context, pageID string, status model.Status) error
	UpdateEmail(ctx context.Context, pageID, email string) error
	UpdateFlair(ctx context.Context, pageID string, flair model.Flair) error
	UpdateModeratorResponse(ctx context.Context, pageID, moderator, response string) error

	// FindByExternalID resolves a report by its stable external id (forum
	// submission id or generated UUID). Returns ErrNotFound when absent.
	FindByExternalID(ctx context.Context, id string) (model.IssueReport, error)

	// SearchRecent returns reports since the given time whose title or
	// username contains the term.
	SearchRecent(ctx context.Context, term string, since time.Time) ([]model.IssueReport, error)

	// ListStale returns unresolved reports created before the given time.
	ListStale(ctx context.Context, before time.Time) ([]model.IssueReport, error)

	ListBetween(ctx context.Context, from, to time.Time) ([]model.IssueReport, error)
}

// ForumCommentStore archives mirrored forum comments.
type ForumCommentStore interface {
	Create(ctx context.Context, comment model.ForumComment) error
	ListBetween(ctx context.Context, from, to time.Time) ([]model.ForumComment, error)
}

// ReactionStore records up/down signals moderators attach to forum items.
type ReactionStore interface {
	Create(ctx context.Context, reaction model.Reaction) error
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Reaction, error)
}

// VideoCommentStore records manually entered video-platform outreach comments.
type VideoCommentStore interface {
	Create(ctx context.Context, comment model.VideoComment) error
	ListBetween(ctx context.Context, from, to time.Time) ([]model.VideoComment, error)
}
