package store

import (
	"communitybridge/core/config"
)

// Stores bundles every record-kind store over a shared structured-store
// client.
type Stores struct {
	IssueReports  IssueReportStore
	ForumComments ForumCommentStore
	Reactions     ReactionStore
	VideoComments VideoCommentStore
}

// NewStores builds stores for each collection named in the configuration.
// The video comments store is stubbed out when no collection is configured.
func NewStores(client notionAPI, cfg config.NotionConfig) Stores {
	stores := Stores{
		IssueReports:  NewIssueReportStore(client, cfg.IssuesDB),
		ForumComments: NewForumCommentStore(client, cfg.CommentsDB),
		Reactions:     NewReactionStore(client, cfg.AnalyticsDB),
		VideoComments: NewDisabledVideoCommentStore(),
	}
	if cfg.HasVideoComments() {
		stores.VideoComments = NewVideoCommentStore(client, cfg.VideoCommentsDB)
	}
	return stores
}
