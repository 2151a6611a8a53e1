package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"communitybridge/common/logger"
	"communitybridge/internal/model"
	"communitybridge/internal/service"
	"communitybridge/internal/store"
	"communitybridge/internal/telegram"
)

var _ = Describe("Reporter", func() {
	var (
		ctx      context.Context
		issues   *mockIssueReportStore
		comments *mockForumCommentStore
		react    *mockReactionStore
		videos   *mockVideoCommentStore
		mockTg   *mockTelegramSender
		reporter *service.Reporter

		from, to time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		issues = &mockIssueReportStore{}
		comments = &mockForumCommentStore{}
		react = &mockReactionStore{}
		videos = &mockVideoCommentStore{}
		mockTg = &mockTelegramSender{}

		reporter = service.NewReporter(store.Stores{
			IssueReports:  issues,
			ForumComments: comments,
			Reactions:     react,
			VideoComments: videos,
		}, mockTg, "-100123")

		to = time.Now().UTC()
		from = to.Add(-13 * time.Hour)
	})

	Describe("Summarize", func() {
		BeforeEach(func() {
			response := "try reinstalling"
			issues.listBetweenFn = func(ctx context.Context, from, to time.Time) ([]model.IssueReport, error) {
				return []model.IssueReport{
					{ID: "p1", Flair: model.FlairHelp, Status: model.StatusInQueue},
					{ID: "p2", Flair: model.FlairHelp, Status: model.StatusSolved, ResponseFromModerator: &response},
					{ID: "p3", Flair: model.FlairDiscussion, Status: model.StatusInQueue},
				}, nil
			}
			comments.listBetweenFn = func(ctx context.Context, from, to time.Time) ([]model.ForumComment, error) {
				return []model.ForumComment{{Username: "someuser"}}, nil
			}
			videos.listBetweenFn = func(ctx context.Context, from, to time.Time) ([]model.VideoComment, error) {
				return []model.VideoComment{
					{Author: model.TeamMemberIvan},
					{Author: model.TeamMemberIvan},
					{Author: model.TeamMemberRoman},
				}, nil
			}
			react.listBetweenFn = func(ctx context.Context, from, to time.Time) ([]model.Reaction, error) {
				return []model.Reaction{
					{Polarity: model.PolarityPositive},
					{Polarity: model.PolarityNegative},
					{Polarity: model.PolarityNegative},
				}, nil
			}
		})

		It("aggregates every record kind over the window", func() {
			summary, err := reporter.Summarize(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())

			Expect(summary.Total).To(Equal(3))
			Expect(summary.HelpCount).To(Equal(2))
			Expect(summary.OtherFlairs).To(Equal(1))
			Expect(summary.ModeratorResponses).To(Equal(1))
			Expect(summary.StatusCounts[model.StatusInQueue]).To(Equal(1))
			Expect(summary.StatusCounts[model.StatusSolved]).To(Equal(1))
			Expect(summary.ForumComments).To(Equal(1))
			Expect(summary.VideoTotal).To(Equal(3))
			Expect(summary.VideoByAuthor[model.TeamMemberIvan]).To(Equal(2))
			Expect(summary.Positive).To(Equal(1))
			Expect(summary.Negative).To(Equal(2))
			Expect(summary.Empty()).To(BeFalse())
		})

		It("counts statuses for Help records only", func() {
			summary, err := reporter.Summarize(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())

			// p3 is In queue but carries the Discussion flair.
			Expect(summary.StatusCounts[model.StatusInQueue]).To(Equal(1))
		})

		It("tolerates a missing video comments collection", func() {
			videos.listBetweenFn = func(ctx context.Context, from, to time.Time) ([]model.VideoComment, error) {
				return nil, store.ErrNoCollection
			}

			summary, err := reporter.Summarize(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.VideoTotal).To(BeZero())
		})

		It("propagates store failures", func() {
			issues.listBetweenFn = func(ctx context.Context, from, to time.Time) ([]model.IssueReport, error) {
				return nil, errors.New("boom")
			}

			_, err := reporter.Summarize(ctx, from, to)
			Expect(err).To(MatchError(ContainSubstring("listing issue reports")))
		})
	})

	Describe("Send", func() {
		It("delivers the digest and then the detail file", func() {
			Expect(reporter.Send(ctx, service.ReportDay)).To(Succeed())

			Expect(mockTg.messages).To(HaveLen(1))
			Expect(mockTg.messages[0].chatID).To(Equal("-100123"))
			Expect(mockTg.messages[0].text).To(HavePrefix("Report (Day) for period:"))

			Expect(mockTg.documents).To(HaveLen(1))
			Expect(mockTg.documents[0].filename).To(MatchRegexp(`^detailed_report_\d{8}_\d{6}\.txt$`))
		})

		It("tags delivery context with the report kind", func() {
			var sendFields, docFields logger.LogFields
			mockTg.sendMessageFn = func(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error) {
				sendFields = logger.GetLogFields(ctx)
				return telegram.Message{}, nil
			}
			mockTg.sendDocumentFn = func(ctx context.Context, chatID, filename string, content []byte, caption string) error {
				docFields = logger.GetLogFields(ctx)
				return nil
			}

			Expect(reporter.Send(ctx, service.ReportWeekly)).To(Succeed())

			Expect(sendFields.Report).To(HaveValue(Equal("weekly")))
			Expect(docFields.Report).To(HaveValue(Equal("weekly")))
		})

		It("sends an empty-window digest with the trailer", func() {
			Expect(reporter.Send(ctx, service.ReportNight)).To(Succeed())

			Expect(mockTg.messages[0].text).To(HaveSuffix("Not enough data for a report."))
		})

		It("renders every record kind section in the detail file", func() {
			url := "https://www.reddit.com/r/testsub/comments/p1/"
			issues.listBetweenFn = func(ctx context.Context, from, to time.Time) ([]model.IssueReport, error) {
				return []model.IssueReport{{
					ID:       "p1",
					Username: "someuser",
					Title:    "Game keeps crashing",
					Platform: model.PlatformReddit,
					Status:   model.StatusInQueue,
					URL:      &url,
				}}, nil
			}

			Expect(reporter.Send(ctx, service.ReportDay)).To(Succeed())

			content := string(mockTg.documents[0].content)
			Expect(content).To(HavePrefix("DETAILED REPORT\n"))
			Expect(content).To(ContainSubstring("=== Technical Issues ==="))
			Expect(content).To(ContainSubstring("Username: someuser"))
			Expect(content).To(ContainSubstring("Title: Game keeps crashing"))
			Expect(content).To(ContainSubstring("=== YouTube Comments ===\nNo data."))
			Expect(content).To(ContainSubstring("=== Reddit Comments ===\nNo data."))
			Expect(content).To(ContainSubstring("=== Analytics ===\nNo data."))
		})

		It("fails when the digest cannot be delivered", func() {
			mockTg.sendMessageFn = func(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error) {
				return telegram.Message{}, errors.New("boom")
			}

			Expect(reporter.Send(ctx, service.ReportDay)).To(MatchError(ContainSubstring("sending day digest")))
			Expect(mockTg.documents).To(BeEmpty())
		})
	})
})
