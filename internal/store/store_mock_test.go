package store

import (
	"context"

	"communitybridge/internal/notion"
)

// mockNotionAPI is a function-field test double for the structured-store
// client. Unset methods panic so a test can only exercise calls it declared.
type mockNotionAPI struct {
	createPageFn    func(ctx context.Context, databaseID string, properties map[string]notion.Property) (*notion.Page, error)
	updatePageFn    func(ctx context.Context, pageID string, properties map[string]notion.Property) (*notion.Page, error)
	queryDatabaseFn func(ctx context.Context, databaseID string, filter notion.Filter) ([]notion.Page, error)
}

func (m *mockNotionAPI) CreatePage(ctx context.Context, databaseID string, properties map[string]notion.Property) (*notion.Page, error) {
	return m.createPageFn(ctx, databaseID, properties)
}

func (m *mockNotionAPI) UpdatePage(ctx context.Context, pageID string, properties map[string]notion.Property) (*notion.Page, error) {
	return m.updatePageFn(ctx, pageID, properties)
}

func (m *mockNotionAPI) QueryDatabase(ctx context.Context, databaseID string, filter notion.Filter) ([]notion.Page, error) {
	return m.queryDatabaseFn(ctx, databaseID, filter)
}
