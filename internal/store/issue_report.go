package store

import (
	"context"
	"fmt"
	"time"

	"communitybridge/internal/model"
	"communitybridge/internal/notion"
)

// Column names in the issue reports collection.
const (
	propDate                  = "Date"
	propExternalID            = "ID"
	propUsername              = "Username"
	propTitle                 = "Title"
	propPlatform              = "Platform"
	propURL                   = "URL"
	propDescription           = "Description"
	propStatus                = "Status"
	propFlair                 = "Post Flair"
	propResponsibleModerator  = "Responsible moderator"
	propResponseFromModerator = "Response from moderator"
	propEmail                 = "Email"
)

// notionAPI is the subset of the structured-store client the stores depend on.
type notionAPI interface {
	CreatePage(ctx context.Context, databaseID string, properties map[string]notion.Property) (*notion.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]notion.Property) (*notion.Page, error)
	QueryDatabase(ctx context.Context, databaseID string, filter notion.Filter) ([]notion.Page, error)
}

type issueReportStore struct {
	client     notionAPI
	databaseID string
}

func NewIssueReportStore(client notionAPI, databaseID string) IssueReportStore {
	return &issueReportStore{client: client, databaseID: databaseID}
}

func (s *issueReportStore) Create(ctx context.Context, report model.IssueReport) (model.IssueReport, error) {
	properties := map[string]notion.Property{
		propDate:        notion.NewDate(report.Date),
		propExternalID:  notion.NewRichText(report.ID),
		propUsername:    notion.NewTitle(report.Username),
		propTitle:       notion.NewRichText(report.Title),
		propDescription: notion.NewRichText(report.Description),
		propPlatform:    notion.NewSelect(string(report.Platform)),
		propStatus:      notion.NewStatus(string(report.Status)),
		propFlair:       notion.NewSelect(string(report.Flair)),
	}
	if report.URL != nil {
		properties[propURL] = notion.NewURL(*report.URL)
	}
	if report.Email != nil {
		properties[propEmail] = notion.NewEmail(*report.Email)
	}

	page, err := s.client.CreatePage(ctx, s.databaseID, properties)
	if err != nil {
		return model.IssueReport{}, fmt.Errorf("creating issue report %s: %w", report.ID, err)
	}

	report.PageID = page.ID
	return report, nil
}

func (s *issueReportStore) UpdateStatus(ctx context.Context, pageID string, status model.Status) error {
	_, err := s.client.UpdatePage(ctx, pageID, map[string]notion.Property{
		propStatus: notion.NewStatus(string(status)),
	})
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", pageID, err)
	}
	return nil
}

func (s *issueReportStore) UpdateEmail(ctx context.Context, pageID, email string) error {
	_, err := s.client.UpdatePage(ctx, pageID, map[string]notion.Property{
		propEmail: notion.NewEmail(email),
	})
	if err != nil {
		return fmt.Errorf("updating email of %s: %w", pageID, err)
	}
	return nil
}

func (s *issueReportStore) UpdateFlair(ctx context.Context, pageID string, flair model.Flair) error {
	_, err := s.client.UpdatePage(ctx, pageID, map[string]notion.Property{
		propFlair: notion.NewSelect(string(flair)),
	})
	if err != nil {
		return fmt.Errorf("updating flair of %s: %w", pageID, err)
	}
	return nil
}

func (s *issueReportStore) UpdateModeratorResponse(ctx context.Context, pageID, moderator, response string) error {
	_, err := s.client.UpdatePage(ctx, pageID, map[string]notion.Property{
		propResponsibleModerator:  notion.NewRichText(moderator),
		propResponseFromModerator: notion.NewRichText(response),
	})
	if err != nil {
		return fmt.Errorf("updating moderator response of %s: %w", pageID, err)
	}
	return nil
}

func (s *issueReportStore) FindByExternalID(ctx context.Context, id string) (model.IssueReport, error) {
	pages, err := s.client.QueryDatabase(ctx, s.databaseID, notion.RichTextEquals(propExternalID, id))
	if err != nil {
		return model.IssueReport{}, fmt.Errorf("finding issue report %s: %w", id, err)
	}
	if len(pages) == 0 {
		return model.IssueReport{}, ErrNotFound
	}
	return pageToIssueReport(pages[0]), nil
}

func (s *issueReportStore) SearchRecent(ctx context.Context, term string, since time.Time) ([]model.IssueReport, error) {
	filter := notion.And(
		notion.DateAfter(propDate, since),
		notion.Or(
			notion.RichTextContains(propTitle, term),
			notion.TitleContains(propUsername, term),
		),
	)
	pages, err := s.client.QueryDatabase(ctx, s.databaseID, filter)
	if err != nil {
		return nil, fmt.Errorf("searching issue reports for %q: %w", term, err)
	}
	return pagesToIssueReports(pages), nil
}

func (s *issueReportStore) ListStale(ctx context.Context, before time.Time) ([]model.IssueReport, error) {
	filter := notion.And(
		notion.DateBefore(propDate, before),
		notion.StatusNotEquals(propStatus, string(model.StatusSolved)),
	)
	pages, err := s.client.QueryDatabase(ctx, s.databaseID, filter)
	if err != nil {
		return nil, fmt.Errorf("listing stale issue reports: %w", err)
	}
	return pagesToIssueReports(pages), nil
}

func (s *issueReportStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.IssueReport, error) {
	pages, err := s.client.QueryDatabase(ctx, s.databaseID, notion.DateBetween(propDate, from, to))
	if err != nil {
		return nil, fmt.Errorf("listing issue reports: %w", err)
	}
	return pagesToIssueReports(pages), nil
}

func pagesToIssueReports(pages []notion.Page) []model.IssueReport {
	reports := make([]model.IssueReport, 0, len(pages))
	for _, page := range pages {
		reports = append(reports, pageToIssueReport(page))
	}
	return reports
}

func pageToIssueReport(page notion.Page) model.IssueReport {
	props := page.Properties
	report := model.IssueReport{
		ID:          props[propExternalID].RichTextContent(),
		Date:        props[propDate].DateStart(),
		Username:    props[propUsername].TitleText(),
		Title:       props[propTitle].RichTextContent(),
		Description: props[propDescription].RichTextContent(),
		Platform:    model.Platform(props[propPlatform].SelectName()),
		Flair:       model.Flair(props[propFlair].SelectName()),
		Status:      model.Status(props[propStatus].StatusName()),
		PageID:      page.ID,
	}
	if url := props[propURL].URLValue(); url != "" {
		report.URL = &url
	}
	if email := props[propEmail].EmailValue(); email != "" {
		report.Email = &email
	}
	if moderator := props[propResponsibleModerator].RichTextContent(); moderator != "" {
		report.ResponsibleModerator = &moderator
	}
	if response := props[propResponseFromModerator].RichTextContent(); response != "" {
		report.ResponseFromModerator = &response
	}
	return report
}
