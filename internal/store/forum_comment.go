package store

import (
	"context"
	"fmt"
	"time"

	"communitybridge/internal/model"
	"communitybridge/internal/notion"
)

// Column names in the forum comments collection.
const (
	commentPropDate     = "Date"
	commentPropUsername = "Username"
	commentPropBody     = "Comment Text"
	commentPropURL      = "URL"
)

type forumCommentStore struct {
	client     notionAPI
	databaseID string
}

func NewForumCommentStore(client notionAPI, databaseID string) ForumCommentStore {
	return &forumCommentStore{client: client, databaseID: databaseID}
}

func (s *forumCommentStore) Create(ctx context.Context, comment model.ForumComment) error {
	properties := map[string]notion.Property{
		commentPropDate:     notion.NewDate(comment.Date),
		commentPropUsername: notion.NewTitle(comment.Username),
		commentPropBody:     notion.NewRichText(comment.Body),
		commentPropURL:      notion.NewURL(comment.URL),
	}
	if _, err := s.client.CreatePage(ctx, s.databaseID, properties); err != nil {
		return fmt.Errorf("creating forum comment by %s: %w", comment.Username, err)
	}
	return nil
}

func (s *forumCommentStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.ForumComment, error) {
	pages, err := s.client.QueryDatabase(ctx, s.databaseID, notion.DateBetween(commentPropDate, from, to))
	if err != nil {
		return nil, fmt.Errorf("listing forum comments: %w", err)
	}

	comments := make([]model.ForumComment, 0, len(pages))
	for _, page := range pages {
		props := page.Properties
		comments = append(comments, model.ForumComment{
			Date:     props[commentPropDate].DateStart(),
			Username: props[commentPropUsername].TitleText(),
			Body:     props[commentPropBody].RichTextContent(),
			URL:      props[commentPropURL].URLValue(),
		})
	}
	return comments, nil
}
