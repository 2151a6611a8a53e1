package bot

import (
	"context"
	"time"

	"communitybridge/internal/model"
	"communitybridge/internal/store"
	"communitybridge/internal/telegram"
)

type sentMessage struct {
	chatID string
	text   string
	opts   *telegram.SendOptions
}

type editedMessage struct {
	chatID    string
	messageID int64
	text      string
	opts      *telegram.SendOptions
}

type mockMessenger struct {
	sendMessageFn func(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error)

	messages []sentMessage
	edits    []editedMessage
	answered []string
}

func (m *mockMessenger) SendMessage(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error) {
	m.messages = append(m.messages, sentMessage{chatID: chatID, text: text, opts: opts})
	if m.sendMessageFn != nil {
		return m.sendMessageFn(ctx, chatID, text, opts)
	}
	return telegram.Message{}, nil
}

func (m *mockMessenger) EditMessageText(ctx context.Context, chatID string, messageID int64, text string, opts *telegram.SendOptions) error {
	m.edits = append(m.edits, editedMessage{chatID: chatID, messageID: messageID, text: text, opts: opts})
	return nil
}

func (m *mockMessenger) AnswerCallbackQuery(ctx context.Context, callbackID, text string) error {
	m.answered = append(m.answered, callbackID)
	return nil
}

func (m *mockMessenger) lastEdit() editedMessage {
	return m.edits[len(m.edits)-1]
}

type mockReportStore struct {
	searchRecentFn func(ctx context.Context, term string, since time.Time) ([]model.IssueReport, error)
	updateStatusFn func(ctx context.Context, pageID string, status model.Status) error
	updateEmailFn  func(ctx context.Context, pageID, email string) error
	updateFlairFn  func(ctx context.Context, pageID string, flair model.Flair) error
}

func (m *mockReportStore) Create(ctx context.Context, report model.IssueReport) (model.IssueReport, error) {
	return report, nil
}

func (m *mockReportStore) UpdateStatus(ctx context.Context, pageID string, status model.Status) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, pageID, status)
	}
	return nil
}

func (m *mockReportStore) UpdateEmail(ctx context.Context, pageID, email string) error {
	if m.updateEmailFn != nil {
		return m.updateEmailFn(ctx, pageID, email)
	}
	return nil
}

func (m *mockReportStore) UpdateFlair(ctx context.Context, pageID string, flair model.Flair) error {
	if m.updateFlairFn != nil {
		return m.updateFlairFn(ctx, pageID, flair)
	}
	return nil
}

func (m *mockReportStore) UpdateModeratorResponse(ctx context.Context, pageID, moderator, response string) error {
	return nil
}

func (m *mockReportStore) FindByExternalID(ctx context.Context, id string) (model.IssueReport, error) {
	return model.IssueReport{}, store.ErrNotFound
}

func (m *mockReportStore) SearchRecent(ctx context.Context, term string, since time.Time) ([]model.IssueReport, error) {
	if m.searchRecentFn != nil {
		return m.searchRecentFn(ctx, term, since)
	}
	return nil, nil
}

func (m *mockReportStore) ListStale(ctx context.Context, before time.Time) ([]model.IssueReport, error) {
	return nil, nil
}

func (m *mockReportStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.IssueReport, error) {
	return nil, nil
}

type mockVideoStore struct {
	createFn func(ctx context.Context, comment model.VideoComment) error

	created []model.VideoComment
}

func (m *mockVideoStore) Create(ctx context.Context, comment model.VideoComment) error {
	m.created = append(m.created, comment)
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockVideoStore) ListBetween(ctx context.Context, from, to time.Time) ([]model.VideoComment, error) {
	return nil, nil
}

type trackedReply struct {
	replyText  string
	quotedText string
}

type mockFeedback struct {
	handleReplyFn func(ctx context.Context, replyText, quotedText string) (bool, error)

	replies []trackedReply
}

func (m *mockFeedback) HandleReply(ctx context.Context, replyText, quotedText string) (bool, error) {
	m.replies = append(m.replies, trackedReply{replyText: replyText, quotedText: quotedText})
	if m.handleReplyFn != nil {
		return m.handleReplyFn(ctx, replyText, quotedText)
	}
	return false, nil
}
