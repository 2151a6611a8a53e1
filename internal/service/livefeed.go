package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"communitybridge/common/logger"
	"communitybridge/internal/store"
)

type LiveFeedConfig struct {
	Subreddit    string
	ChatID       string
	IgnoredUsers []string
	Moderators   []string
}

// LiveFeed consumes the real-time forum streams: new submissions and
// comments are relayed to the operator chat, and moderator comments update
// the matching issue report's response fields.
type LiveFeed struct {
	streams  redditStreamer
	telegram telegramSender
	reports  store.IssueReportStore
	cfg      LiveFeedConfig

	ignored    map[string]bool
	moderators map[string]bool
}

func NewLiveFeed(streams redditStreamer, telegram telegramSender, reports store.IssueReportStore, cfg LiveFeedConfig) *LiveFeed {
	return &LiveFeed{
		streams:    streams,
		telegram:   telegram,
		reports:    reports,
		cfg:        cfg,
		ignored:    stringSet(cfg.IgnoredUsers),
		moderators: stringSet(cfg.Moderators),
	}
}

// Run drains all three streams until ctx is done.
func (f *LiveFeed) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "bridge.service.livefeed"})

	slog.InfoContext(ctx, "live feed started", "subreddit", f.cfg.Subreddit)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.relayPosts(ctx) })
	g.Go(func() error { return f.relayComments(ctx) })
	g.Go(func() error { return f.trackModeratorComments(ctx) })
	return g.Wait()
}

func (f *LiveFeed) relayPosts(ctx context.Context) error {
	for post := range f.streams.StreamPosts(ctx, f.cfg.Subreddit) {
		if f.ignored[post.Author] {
			continue
		}

		text := fmt.Sprintf("📌 New post: %s\n🔗 Link: %s", post.Title, post.URL())
		if _, err := f.telegram.SendMessage(ctx, f.cfg.ChatID, text, nil); err != nil {
			slog.ErrorContext(ctx, "relaying post failed", "post_id", post.ID, "error", err)
		}
	}
	return ctx.Err()
}

func (f *LiveFeed) relayComments(ctx context.Context) error {
	for comment := range f.streams.StreamComments(ctx, f.cfg.Subreddit) {
		if f.ignored[comment.Author] {
			continue
		}

		text := fmt.Sprintf("💬 New comment:\n\n%s\n🔗 Link: %s", comment.Body, comment.URL())
		if _, err := f.telegram.SendMessage(ctx, f.cfg.ChatID, text, nil); err != nil {
			slog.ErrorContext(ctx, "relaying comment failed", "comment_id", comment.ID, "error", err)
		}
	}
	return ctx.Err()
}

// trackModeratorComments writes each new moderator comment back onto the
// report ingested for its parent submission. Submissions never ingested
// (wrong flair, too old) simply produce no match.
func (f *LiveFeed) trackModeratorComments(ctx context.Context) error {
	for comment := range f.streams.StreamComments(ctx, f.cfg.Subreddit) {
		if !f.moderators[comment.Author] {
			continue
		}

		report, err := f.reports.FindByExternalID(ctx, comment.PostID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				slog.DebugContext(ctx, "moderator comment on untracked submission",
					"post_id", comment.PostID, "moderator", comment.Author)
				continue
			}
			slog.ErrorContext(ctx, "looking up report failed", "post_id", comment.PostID, "error", err)
			continue
		}

		if err := f.reports.UpdateModeratorResponse(ctx, report.PageID, comment.Author, comment.Body); err != nil {
			slog.ErrorContext(ctx, "recording moderator response failed",
				"post_id", comment.PostID, "error", err)
			continue
		}

		slog.InfoContext(ctx, "moderator response recorded",
			"post_id", comment.PostID, "moderator", comment.Author)
	}
	return ctx.Err()
}
