package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"communitybridge/internal/model"
	"communitybridge/internal/reddit"
	"communitybridge/internal/service"
	"communitybridge/internal/store"
	"communitybridge/internal/telegram"
)

func postStream(posts ...reddit.Post) <-chan reddit.Post {
	ch := make(chan reddit.Post, len(posts))
	for _, post := range posts {
		ch <- post
	}
	close(ch)
	return ch
}

func commentStream(comments ...reddit.Comment) <-chan reddit.Comment {
	ch := make(chan reddit.Comment, len(comments))
	for _, comment := range comments {
		ch <- comment
	}
	close(ch)
	return ch
}

var _ = Describe("LiveFeed", func() {
	var (
		ctx     context.Context
		streams *mockRedditStreamer
		tg      *mockTelegramSender
		reports *mockIssueReportStore
		feed    *service.LiveFeed
	)

	BeforeEach(func() {
		ctx = context.Background()
		streams = &mockRedditStreamer{}
		tg = &mockTelegramSender{}
		reports = &mockIssueReportStore{}

		feed = service.NewLiveFeed(streams, tg, reports, service.LiveFeedConfig{
			Subreddit:    "testsub",
			ChatID:       "-100123",
			IgnoredUsers: []string{"AutoModerator"},
			Moderators:   []string{"Alex_Boosteroid"},
		})
	})

	Describe("submission stream", func() {
		It("relays each new submission to the operator chat", func() {
			streams.streamPostsFn = func(ctx context.Context, subreddit string) <-chan reddit.Post {
				return postStream(reddit.Post{
					ID:        "p1",
					Title:     "Game keeps crashing",
					Author:    "someuser",
					Permalink: "/r/testsub/comments/p1/game_keeps_crashing/",
				})
			}

			Expect(feed.Run(ctx)).To(Succeed())

			Expect(tg.messages).To(HaveLen(1))
			Expect(tg.messages[0].chatID).To(Equal("-100123"))
			Expect(tg.messages[0].text).To(ContainSubstring("Game keeps crashing"))
			Expect(tg.messages[0].text).To(ContainSubstring("https://www.reddit.com/r/testsub/comments/p1/"))
		})

		It("never relays submissions from ignored authors", func() {
			streams.streamPostsFn = func(ctx context.Context, subreddit string) <-chan reddit.Post {
				return postStream(
					reddit.Post{ID: "sticky", Title: "Weekly thread", Author: "AutoModerator"},
					reddit.Post{ID: "p2", Title: "Input lag on TV app", Author: "someuser"},
				)
			}

			Expect(feed.Run(ctx)).To(Succeed())

			Expect(tg.messages).To(HaveLen(1))
			Expect(tg.messages[0].text).To(ContainSubstring("Input lag on TV app"))
		})

		It("tolerates delivery failures", func() {
			streams.streamPostsFn = func(ctx context.Context, subreddit string) <-chan reddit.Post {
				return postStream(
					reddit.Post{ID: "p1", Title: "first", Author: "someuser"},
					reddit.Post{ID: "p2", Title: "second", Author: "otheruser"},
				)
			}
			tg.sendMessageFn = func(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error) {
				return telegram.Message{}, errors.New("boom")
			}

			Expect(feed.Run(ctx)).To(Succeed())
			Expect(tg.messages).To(HaveLen(2))
		})
	})

	Describe("comment stream", func() {
		It("relays each new comment, skipping ignored authors", func() {
			streams.streamCommentsFn = func(ctx context.Context, subreddit string) <-chan reddit.Comment {
				return commentStream(
					reddit.Comment{ID: "c1", Author: "AutoModerator", Body: "sticky"},
					reddit.Comment{ID: "c2", Author: "someuser", Body: "works now", Permalink: "/r/testsub/comments/p1/x/c2/"},
				)
			}

			Expect(feed.Run(ctx)).To(Succeed())

			Expect(tg.messages).To(HaveLen(1))
			Expect(tg.messages[0].text).To(ContainSubstring("works now"))
			Expect(tg.messages[0].text).To(ContainSubstring("/comments/p1/"))
		})
	})

	Describe("moderator comments", func() {
		moderatorComment := reddit.Comment{
			ID:     "c9",
			Author: "Alex_Boosteroid",
			Body:   "try reinstalling",
			PostID: "p1",
		}

		It("records the response on the report ingested for the parent submission", func() {
			streams.streamCommentsFn = func(ctx context.Context, subreddit string) <-chan reddit.Comment {
				return commentStream(moderatorComment)
			}
			reports.findByExternalIDFn = func(ctx context.Context, id string) (model.IssueReport, error) {
				Expect(id).To(Equal("p1"))
				return model.IssueReport{ID: "p1", PageID: "page-p1"}, nil
			}

			Expect(feed.Run(ctx)).To(Succeed())

			Expect(reports.moderatorUpdates).To(HaveLen(1))
			update := reports.moderatorUpdates[0]
			Expect(update.pageID).To(Equal("page-p1"))
			Expect(update.moderator).To(Equal("Alex_Boosteroid"))
			Expect(update.response).To(Equal("try reinstalling"))
		})

		It("skips comments on submissions that were never ingested", func() {
			streams.streamCommentsFn = func(ctx context.Context, subreddit string) <-chan reddit.Comment {
				return commentStream(moderatorComment)
			}

			Expect(feed.Run(ctx)).To(Succeed())
			Expect(reports.moderatorUpdates).To(BeEmpty())
		})

		It("never looks up reports for regular comments", func() {
			var lookups int
			streams.streamCommentsFn = func(ctx context.Context, subreddit string) <-chan reddit.Comment {
				return commentStream(reddit.Comment{ID: "c1", Author: "someuser", Body: "same issue", PostID: "p1"})
			}
			reports.findByExternalIDFn = func(ctx context.Context, id string) (model.IssueReport, error) {
				lookups++
				return model.IssueReport{}, store.ErrNotFound
			}

			Expect(feed.Run(ctx)).To(Succeed())
			Expect(lookups).To(BeZero())
		})

		It("tolerates lookup failures", func() {
			streams.streamCommentsFn = func(ctx context.Context, subreddit string) <-chan reddit.Comment {
				return commentStream(moderatorComment)
			}
			reports.findByExternalIDFn = func(ctx context.Context, id string) (model.IssueReport, error) {
				return model.IssueReport{}, errors.New("boom")
			}

			Expect(feed.Run(ctx)).To(Succeed())
			Expect(reports.moderatorUpdates).To(BeEmpty())
		})
	})
})
