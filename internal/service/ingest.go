package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"communitybridge/common/logger"
	"communitybridge/internal/model"
	"communitybridge/internal/store"
)

const (
	scanInterval = time.Hour

	// scanWindow is how far back each cycle looks. Slightly overlapping
	// windows are preferred over missed items; duplicate records are
	// tolerated downstream.
	scanWindow = time.Hour

	scanLimit = 100
)

type IngestorConfig struct {
	Subreddit    string
	IgnoredUsers []string
	Moderators   []string
}

// Ingestor periodically persists fresh forum activity: submissions with an
// ingestible flair become issue reports (with a moderator-response backfill
// from the submission's comment tree), and subreddit comments are mirrored
// into the archive.
type Ingestor struct {
	reddit   redditBrowser
	reports  store.IssueReportStore
	comments store.ForumCommentStore
	cfg      IngestorConfig

	ignored    map[string]bool
	moderators map[string]bool
}

func NewIngestor(reddit redditBrowser, reports store.IssueReportStore, comments store.ForumCommentStore, cfg IngestorConfig) *Ingestor {
	return &Ingestor{
		reddit:     reddit,
		reports:    reports,
		comments:   comments,
		cfg:        cfg,
		ignored:    stringSet(cfg.IgnoredUsers),
		moderators: stringSet(cfg.Moderators),
	}
}

// Run scans immediately and then on every tick until ctx is done.
func (i *Ingestor) Run(ctx context.Context) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "bridge.service.ingest"})

	ticker := time.NewTicker(scanInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "ingest scanner started",
		"interval", scanInterval, "subreddit", i.cfg.Subreddit)

	for {
		if err := i.ScanPosts(ctx); err != nil {
			slog.ErrorContext(ctx, "post scan failed", "error", err)
		}
		if err := i.MirrorComments(ctx); err != nil {
			slog.ErrorContext(ctx, "comment mirror failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ScanPosts persists submissions created within the scan window whose flair
// is on the allow-list, then backfills moderator responses from each
// submission's comments. The listing is newest first, so the loop stops at
// the first submission past the cutoff.
func (i *Ingestor) ScanPosts(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-scanWindow)

	posts, err := i.reddit.ListNewPosts(ctx, i.cfg.Subreddit, scanLimit)
	if err != nil {
		return fmt.Errorf("listing new posts: %w", err)
	}

	for _, post := range posts {
		if post.Created.Before(cutoff) {
			break
		}
		if i.ignored[post.Author] {
			continue
		}

		flair := model.NormalizeFlair(post.Flair)
		if !flair.Ingestible() {
			continue
		}

		postCtx := logger.WithLogFields(ctx, logger.LogFields{
			PostID:   &post.ID,
			Platform: logger.Ptr(string(model.PlatformReddit)),
		})

		url := post.URL()
		report, err := i.reports.Create(ctx, model.IssueReport{
			ID:          post.ID,
			Date:        post.Created,
			Username:    post.Author,
			Title:       post.Title,
			Description: post.Body,
			Platform:    model.PlatformReddit,
			Flair:       flair,
			Status:      model.StatusInQueue,
			URL:         &url,
		})
		if err != nil {
			slog.ErrorContext(postCtx, "persisting submission failed", "error", err)
			continue
		}

		slog.InfoContext(postCtx, "submission ingested", "flair", flair)

		if err := i.backfillModeratorResponse(postCtx, report); err != nil {
			slog.ErrorContext(postCtx, "moderator backfill failed", "error", err)
		}
	}
	return nil
}

// backfillModeratorResponse records the moderator replies already present on
// a freshly ingested submission. Later replies overwrite earlier ones, same
// as the live stream path.
func (i *Ingestor) backfillModeratorResponse(ctx context.Context, report model.IssueReport) error {
	comments, err := i.reddit.ListPostComments(ctx, report.ID)
	if err != nil {
		return fmt.Errorf("listing submission comments: %w", err)
	}

	for _, comment := range comments {
		if !i.moderators[comment.Author] {
			continue
		}
		if err := i.reports.UpdateModeratorResponse(ctx, report.PageID, comment.Author, comment.Body); err != nil {
			return fmt.Errorf("recording moderator response: %w", err)
		}
		slog.InfoContext(ctx, "moderator response backfilled", "moderator", comment.Author)
	}
	return nil
}

// MirrorComments archives subreddit comments created within the scan
// window. The listing is newest first, so the loop stops at the first
// comment past the cutoff.
func (i *Ingestor) MirrorComments(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-scanWindow)

	comments, err := i.reddit.ListNewComments(ctx, i.cfg.Subreddit, scanLimit)
	if err != nil {
		return fmt.Errorf("listing new comments: %w", err)
	}

	for _, comment := range comments {
		if i.ignored[comment.Author] {
			continue
		}
		if comment.Created.Before(cutoff) {
			break
		}

		err := i.comments.Create(ctx, model.ForumComment{
			Date:     comment.Created,
			Username: comment.Author,
			Body:     comment.Body,
			URL:      comment.URL(),
		})
		if err != nil {
			slog.ErrorContext(ctx, "archiving comment failed",
				"comment_id", comment.ID, "error", err)
		}
	}
	return nil
}
