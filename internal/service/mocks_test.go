package service_test

import (
	"context"
	"time"

	"communitybridge/internal/model"
	"communitybridge/internal/reddit"
	"communitybridge/internal/store"
	"communitybridge/internal/telegram"
)

type mockRedditBrowser struct {
	listNewPostsFn     func(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error)
	listNewCommentsFn  func(ctx context.Context, subreddit string, limit int) ([]reddit.Comment, error)
	listPostCommentsFn func(ctx context.Context, postID string) ([]reddit.Comment, error)
	getPostFn          func(ctx context.Context, id string) (reddit.Post, error)
	getCommentFn       func(ctx context.Context, id string) (reddit.Comment, error)
}

func (m *mockRedditBrowser) ListNewPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
	if m.listNewPostsFn != nil {
		return m.listNewPostsFn(ctx, subreddit, limit)
	}
	return nil, nil
}

func (m *mockRedditBrowser) ListNewComments(ctx context.Context, subreddit string, limit int) ([]reddit.Comment, error) {
	if m.listNewCommentsFn != nil {
		return m.listNewCommentsFn(ctx, subreddit, limit)
	}
	return nil, nil
}

func (m *mockRedditBrowser) ListPostComments(ctx context.Context, postID string) ([]reddit.Comment, error) {
	if m.listPostCommentsFn != nil {
		return m.listPostCommentsFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockRedditBrowser) GetPost(ctx context.Context, id string) (reddit.Post, error) {
	if m.getPostFn != nil {
		return m.getPostFn(ctx, id)
	}
	return reddit.Post{}, reddit.ErrNotFound
}

func (m *mockRedditBrowser) GetComment(ctx context.Context, id string) (reddit.Comment, error) {
	if m.getCommentFn != nil {
		return m.getCommentFn(ctx, id)
	}
	return reddit.Comment{}, reddit.ErrNotFound
}

type mockRedditStreamer struct {
	streamPostsFn    func(ctx context.Context, subreddit string) <-chan reddit.Post
	streamCommentsFn func(ctx context.Context, subreddit string) <-chan reddit.Comment
}

func (m *mockRedditStreamer) StreamPosts(ctx context.Context, subreddit string) <-chan reddit.Post {
	if m.streamPostsFn != nil {
		return m.streamPostsFn(ctx, subreddit)
	}
	ch := make(chan reddit.Post)
	close(ch)
	return ch
}

func (m *mockRedditStreamer) StreamComments(ctx context.Context, subreddit string) <-chan reddit.Comment {
	if m.streamCommentsFn != nil {
		return m.streamCommentsFn(ctx, subreddit)
	}
	ch := make(chan reddit.Comment)
	close(ch)
	return ch
}

type sentMessage struct {
	chatID string
	text   string
}

type sentDocument struct {
	chatID   string
	filename string
	content  []byte
}

type mockTelegramSender struct {
	sendMessageFn  func(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error)
	sendDocumentFn func(ctx context.Context, chatID, filename string, content []byte, caption string) error

	messages  []sentMessage
	documents []sentDocument
}

func (m *mockTelegramSender) SendMessage(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error) {
	m.messages = append(m.messages, sentMessage{chatID: chatID, text: text})
	if m.sendMessageFn != nil {
		return m.sendMessageFn(ctx, chatID, text, opts)
	}
	return telegram.Message{}, nil
}

func (m *mockTelegramSender) SendDocument(ctx context.Context, chatID, filename string, content []byte, caption string) error {
	m.documents = append(m.documents, sentDocument{chatID: chatID, filename: filename, content: content})
	if m.sendDocumentFn != nil {
		return m.sendDocumentFn(ctx, chatID, filename, content, caption)
	}
	return nil
}

type mockDiscordSender struct {
	sendDirectFn func(ctx context.Context, userID, content string) error

	directs []sentMessage
}

func (m *mockDiscordSender) SendDirect(ctx context.Context, userID, content string) error {
	m.directs = append(m.directs, sentMessage{chatID: userID, text: content})
	if m.sendDirectFn != nil {
		return m.sendDirectFn(ctx, userID, content)
	}
	return nil
}

type statusUpdate struct {
	pageID string
	status model.Status
}

type moderatorUpdate struct {
	pageID    string
	moderator string
	response  string
}

type mockIssueReportStore struct {
	createFn                  func(ctx context.Context, report model.IssueReport) (model.IssueReport, error)
	findByExternalIDFn        func(ctx context.Context, id string) (model.IssueReport, error)
	searchRecentFn            func(ctx context.Context, term string, since time.Time) ([]model.IssueReport, error)
	listStaleFn               func(ctx context.Context, before time.Time) ([]model.IssueReport, error)
	listBetweenFn             func(ctx context.Context, from, to time.Time) ([]model.IssueReport, error)
	updateStatusFn            func(ctx context.Context, pageID string, status model.Status) error
	updateModeratorResponseFn func(ctx context.Context, pageID, moderator, response string) error

	created          []model.IssueReport
	statusUpdates    []statusUpdate
	moderatorUpdates []moderatorUpdate
}

func (m *mockIssueReportStore) Create(ctx context.Context, report model.IssueReport) (model.IssueReport, error) {
	m.created = append(m.created, report)
	if m.createFn != nil {
		return m.createFn(ctx, report)
	}
	report.PageID = "page-" + report.ID
	return report, nil
}

func (m *mockIssueReportStore) UpdateStatus(ctx context.Context, pageID string, status model.Status) error {
	m.statusUpdates = append(m.statusUpdates, statusUpdate{pageID: pageID, status: status})
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, pageID, status)
	}
	return nil
}

func (m *mockIssueReportStore) UpdateEmail(ctx context.Context, pageID, email string) error {
	return nil
}

func (m *mockIssueReportStore) UpdateFlair(ctx context.Context, pageID string, flair model.Flair) error {
	return nil
}

func (m *mockIssueReportStore) UpdateModeratorResponse(ctx context.Context, pageID, moderator, response string) error {
	m.moderatorUpdates = append(m.moderatorUpdates, moderatorUpdate{pageID: pageID, moderator: moderator, response: response})
	if m.updateModeratorResponseFn != nil {
		return m.updateModeratorResponseFn(ctx, pageID, moderator, response)
	}
	return nil
}

func (m *mockIssueReportStore) FindByExternalID(ctx context.Context, id string) (model.IssueReport, error) {
	if m.findByExternalIDFn != nil {
		return m.findByExternalIDFn(ctx, id)
	}
	return model.IssueReport{}, store.ErrNotFound
}

func (m *mockIssueReportStore) SearchRecent(ctx context.Context, term string, since time.Time) ([]model.IssueReport, error) {
	if m.searchRecentFn != nil {
		return m.searchRecentFn(ctx, term, since)
	}
	return nil, nil
}

func (m *mockIssueReportStore) ListStale(ctx context.Context, before time.Time) ([]model.IssueReport, error) {
	if m.listStaleFn != nil {
		return m.listStaleFn(ctx, before)
	}
	return nil, nil
}

func (m *mockIssueReportStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.IssueReport, error) {
	if m.listBetweenFn != nil {
		return m.listBetweenFn(ctx, from, to)
	}
	return nil, nil
}

type mockForumCommentStore struct {
	createFn      func(ctx context.Context, comment model.ForumComment) error
	listBetweenFn func(ctx context.Context, from, to time.Time) ([]model.ForumComment, error)

	created []model.ForumComment
}

func (m *mockForumCommentStore) Create(ctx context.Context, comment model.ForumComment) error {
	m.created = append(m.created, comment)
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockForumCommentStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.ForumComment, error) {
	if m.listBetweenFn != nil {
		return m.listBetweenFn(ctx, from, to)
	}
	return nil, nil
}

type mockReactionStore struct {
	createFn      func(ctx context.Context, reaction model.Reaction) error
	listBetweenFn func(ctx context.Context, from, to time.Time) ([]model.Reaction, error)

	created []model.Reaction
}

func (m *mockReactionStore) Create(ctx context.Context, reaction model.Reaction) error {
	m.created = append(m.created, reaction)
	if m.createFn != nil {
		return m.createFn(ctx, reaction)
	}
	return nil
}

func (m *mockReactionStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.Reaction, error) {
	if m.listBetweenFn != nil {
		return m.listBetweenFn(ctx, from, to)
	}
	return nil, nil
}

type mockVideoCommentStore struct {
	createFn      func(ctx context.Context, comment model.VideoComment) error
	listBetweenFn func(ctx context.Context, from, to time.Time) ([]model.VideoComment, error)

	created []model.VideoComment
}

func (m *mockVideoCommentStore) Create(ctx context.Context, comment model.VideoComment) error {
	m.created = append(m.created, comment)
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockVideoCommentStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.VideoComment, error) {
	if m.listBetweenFn != nil {
		return m.listBetweenFn(ctx, from, to)
	}
	return nil, nil
}
