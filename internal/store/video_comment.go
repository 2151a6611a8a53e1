package store

import (
	"context"
	"fmt"
	"time"

	"communitybridge/internal/model"
	"communitybridge/internal/notion"
)

// Column names in the video comments collection.
const (
	videoPropChannel = "Youtube Channel"
	videoPropLink    = "Link to the video"
	videoPropComment = "Text of the comment"
	videoPropProfile = "Profile"
	videoPropAuthor  = "Author ( Community Manager )"
	videoPropDate    = "Date"
)

type videoCommentStore struct {
	client     notionAPI
	databaseID string
}

func NewVideoCommentStore(client notionAPI, databaseID string) VideoCommentStore {
	return &videoCommentStore{client: client, databaseID: databaseID}
}

func (s *videoCommentStore) Create(ctx context.Context, comment model.VideoComment) error {
	properties := map[string]notion.Property{
		videoPropChannel: notion.NewRichText(comment.Channel),
		videoPropLink:    notion.NewURL(comment.Link),
		videoPropComment: notion.NewRichText(comment.Comment),
		videoPropProfile: notion.NewSelect(string(comment.Profile)),
		videoPropAuthor:  notion.NewSelect(string(comment.Author)),
		videoPropDate:    notion.NewDate(comment.Date),
	}
	if _, err := s.client.CreatePage(ctx, s.databaseID, properties); err != nil {
		return fmt.Errorf("creating video comment on %s: %w", comment.Channel, err)
	}
	return nil
}

func (s *videoCommentStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.VideoComment, error) {
	pages, err := s.client.QueryDatabase(ctx, s.databaseID, notion.DateBetween(videoPropDate, from, to))
	if err != nil {
		return nil, fmt.Errorf("listing video comments: %w", err)
	}

	comments := make([]model.VideoComment, 0, len(pages))
	for _, page := range pages {
		props := page.Properties
		comments = append(comments, model.VideoComment{
			Date:    props[videoPropDate].DateStart(),
			Channel: props[videoPropChannel].RichTextContent(),
			Link:    props[videoPropLink].URLValue(),
			Comment: props[videoPropComment].RichTextContent(),
			Profile: model.ViewerProfile(props[videoPropProfile].SelectName()),
			Author:  model.TeamMember(props[videoPropAuthor].SelectName()),
		})
	}
	return comments, nil
}

// disabledVideoCommentStore stands in when no video comments collection is
// configured. Every call fails with ErrNoCollection.
type disabledVideoCommentStore struct{}

func NewDisabledVideoCommentStore() VideoCommentStore {
	return disabledVideoCommentStore{}
}

func (disabledVideoCommentStore) Create(context.Context, model.VideoComment) error {
	return ErrNoCollection
}

func (disabledVideoCommentStore) ListBetween(context.Context, time.Time, time.Time) ([]model.VideoComment, error) {
	return nil, ErrNoCollection
}
