package service

import (
	"context"

	"communitybridge/internal/reddit"
	"communitybridge/internal/telegram"
)

// Collaborator surfaces the services depend on, narrowed so tests can swap
// in hand-written fakes.

type redditBrowser interface {
	ListNewPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
	ListNewComments(ctx context.Context, subreddit string, limit int) ([]reddit.Comment, error)
	ListPostComments(ctx context.Context, postID string) ([]reddit.Comment, error)
	GetPost(ctx context.Context, id string) (reddit.Post, error)
	GetComment(ctx context.Context, id string) (reddit.Comment, error)
}

type redditStreamer interface {
	StreamPosts(ctx context.Context, subreddit string) <-chan reddit.Post
	StreamComments(ctx context.Context, subreddit string) <-chan reddit.Comment
}

type telegramSender interface {
	SendMessage(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error)
	SendDocument(ctx context.Context, chatID, filename string, content []byte, caption string) error
}

type discordSender interface {
	SendDirect(ctx context.Context, userID, content string) error
}

func stringSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
