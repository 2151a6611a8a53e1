package store

import (
	"context"
	"fmt"
	"time"

	"communitybridge/internal/model"
	"communitybridge/internal/notion"
)

// Column names in the reactions collection.
const (
	reactionPropTitle    = "Title"
	reactionPropContent  = "Content"
	reactionPropURL      = "URL"
	reactionPropPolarity = "Reaction"
	reactionPropDate     = "Date"
)

type reactionStore struct {
	client     notionAPI
	databaseID string
}

func NewReactionStore(client notionAPI, databaseID string) ReactionStore {
	return &reactionStore{client: client, databaseID: databaseID}
}

func (s *reactionStore) Create(ctx context.Context, reaction model.Reaction) error {
	properties := map[string]notion.Property{
		reactionPropTitle:    notion.NewTitle(reaction.Title),
		reactionPropContent:  notion.NewRichText(model.TruncateBody(reaction.Body)),
		reactionPropURL:      notion.NewURL(reaction.URL),
		reactionPropPolarity: notion.NewSelect(string(reaction.Polarity)),
		reactionPropDate:     notion.NewDate(time.Now().UTC()),
	}
	if _, err := s.client.CreatePage(ctx, s.databaseID, properties); err != nil {
		return fmt.Errorf("creating reaction for %s: %w", reaction.URL, err)
	}
	return nil
}

func (s *reactionStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.Reaction, error) {
	pages, err := s.client.QueryDatabase(ctx, s.databaseID, notion.DateBetween(reactionPropDate, from, to))
	if err != nil {
		return nil, fmt.Errorf("listing reactions: %w", err)
	}

	reactions := make([]model.Reaction, 0, len(pages))
	for _, page := range pages {
		props := page.Properties
		reactions = append(reactions, model.Reaction{
			Date:     props[reactionPropDate].DateStart(),
			Title:    props[reactionPropTitle].TitleText(),
			Body:     props[reactionPropContent].RichTextContent(),
			URL:      props[reactionPropURL].URLValue(),
			Polarity: model.Polarity(props[reactionPropPolarity].SelectName()),
		})
	}
	return reactions, nil
}
