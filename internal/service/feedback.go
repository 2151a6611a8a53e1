package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"communitybridge/internal/model"
	"communitybridge/internal/reddit"
	"communitybridge/internal/store"
)

// Feedback turns 👍/👎 replies in the operator chat into reaction records.
// The replied-to message must contain a link into the tracked subreddit;
// the linked post or comment is fetched so the record carries its text.
type Feedback struct {
	reddit    redditBrowser
	reactions store.ReactionStore
	linkRe    *regexp.Regexp
}

func NewFeedback(redditClient redditBrowser, reactions store.ReactionStore, subreddit string) *Feedback {
	return &Feedback{
		reddit:    redditClient,
		reactions: reactions,
		linkRe: regexp.MustCompile(
			`https?://www\.reddit\.com/r/` + regexp.QuoteMeta(subreddit) + `/comments/\S+`),
	}
}

// HandleReply inspects a reply and records a reaction when it carries a
// polarity marker and the quoted message links a tracked forum item.
// Reports whether a reaction was recorded.
func (f *Feedback) HandleReply(ctx context.Context, replyText, quotedText string) (bool, error) {
	link := f.linkRe.FindString(quotedText)
	if link == "" {
		return false, nil
	}

	var polarity model.Polarity
	switch {
	case strings.Contains(replyText, string(model.PolarityPositive)):
		polarity = model.PolarityPositive
	case strings.Contains(replyText, string(model.PolarityNegative)):
		polarity = model.PolarityNegative
	default:
		return false, nil
	}

	title, body, err := f.resolve(ctx, link)
	if err != nil {
		return false, fmt.Errorf("resolving linked item: %w", err)
	}

	err = f.reactions.Create(ctx, model.Reaction{
		Title:    title,
		Body:     body,
		URL:      link,
		Polarity: polarity,
	})
	if err != nil {
		return false, fmt.Errorf("recording reaction: %w", err)
	}
	return true, nil
}

func (f *Feedback) resolve(ctx context.Context, link string) (title, body string, err error) {
	itemID, isComment, err := reddit.ParsePermalink(link)
	if err != nil {
		return "", "", err
	}

	if isComment {
		comment, err := f.reddit.GetComment(ctx, itemID)
		if err != nil {
			return "", "", err
		}
		return "Comment: " + comment.Body, comment.Body, nil
	}

	post, err := f.reddit.GetPost(ctx, itemID)
	if err != nil {
		return "", "", err
	}
	body = post.Body
	if body == "" {
		body = "[no text]"
	}
	return post.Title, body, nil
}
