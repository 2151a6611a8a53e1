package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"communitybridge/internal/model"
	"communitybridge/internal/service"
)

var _ = Describe("Sweeper", func() {
	var (
		ctx     context.Context
		reports *mockIssueReportStore
		sweeper *service.Sweeper
	)

	BeforeEach(func() {
		ctx = context.Background()
		reports = &mockIssueReportStore{}
		sweeper = service.NewSweeper(reports)
	})

	It("marks every stale report solved", func() {
		reports.listStaleFn = func(ctx context.Context, before time.Time) ([]model.IssueReport, error) {
			Expect(before).To(BeTemporally("~", time.Now().UTC().AddDate(0, 0, -7), time.Minute))
			return []model.IssueReport{
				{ID: "p1", PageID: "page-1", Status: model.StatusInQueue},
				{ID: "p2", PageID: "page-2", Status: model.StatusMadeATicket},
			}, nil
		}

		Expect(sweeper.SweepOnce(ctx)).To(Succeed())

		Expect(reports.statusUpdates).To(HaveLen(2))
		for _, update := range reports.statusUpdates {
			Expect(update.status).To(Equal(model.StatusSolved))
		}
		Expect(reports.statusUpdates[0].pageID).To(Equal("page-1"))
		Expect(reports.statusUpdates[1].pageID).To(Equal("page-2"))
	})

	It("does nothing when no report is stale", func() {
		Expect(sweeper.SweepOnce(ctx)).To(Succeed())
		Expect(reports.statusUpdates).To(BeEmpty())
	})

	It("keeps going when one update fails", func() {
		reports.listStaleFn = func(ctx context.Context, before time.Time) ([]model.IssueReport, error) {
			return []model.IssueReport{
				{ID: "p1", PageID: "page-1"},
				{ID: "p2", PageID: "page-2"},
			}, nil
		}
		reports.updateStatusFn = func(ctx context.Context, pageID string, status model.Status) error {
			if pageID == "page-1" {
				return errors.New("boom")
			}
			return nil
		}

		Expect(sweeper.SweepOnce(ctx)).To(Succeed())
		Expect(reports.statusUpdates).To(HaveLen(2))
	})

	It("propagates a listing failure", func() {
		reports.listStaleFn = func(ctx context.Context, before time.Time) ([]model.IssueReport, error) {
			return nil, errors.New("boom")
		}
		Expect(sweeper.SweepOnce(ctx)).To(MatchError(ContainSubstring("listing stale reports")))
	})
})
