// Package bot wires the operator-facing chat commands: record mutation
// flows, the video comment wizard, and reply feedback tracking.
package bot

import (
	"context"

	"communitybridge/internal/session"
	"communitybridge/internal/store"
	"communitybridge/internal/telegram"
)

// Callback payload prefixes. Selector payloads are kept short because the
// transport caps them at 64 bytes.
const (
	cbSelectStatus  = "csp_"
	cbSetStatus     = "ss|"
	cbSelectEmail   = "cep_"
	cbSelectFlair   = "cfp_"
	cbSetFlair      = "cf|"
	cbWizardProfile = "avc_profile|"
	cbWizardAuthor  = "avc_author|"
)

type messenger interface {
	SendMessage(ctx context.Context, chatID, text string, opts *telegram.SendOptions) (telegram.Message, error)
	EditMessageText(ctx context.Context, chatID string, messageID int64, text string, opts *telegram.SendOptions) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

type feedbackTracker interface {
	HandleReply(ctx context.Context, replyText, quotedText string) (bool, error)
}

// Bot handles operator commands, selector callbacks, and free-text input.
type Bot struct {
	telegram messenger
	reports  store.IssueReportStore
	videos   store.VideoCommentStore
	sessions *session.Manager
	feedback feedbackTracker
}

func New(telegramClient messenger, reports store.IssueReportStore, videos store.VideoCommentStore, sessions *session.Manager, feedback feedbackTracker) *Bot {
	return &Bot{
		telegram: telegramClient,
		reports:  reports,
		videos:   videos,
		sessions: sessions,
		feedback: feedback,
	}
}

// Register attaches every handler to the dispatcher. The empty-prefix
// callback route is the unknown-payload fallback and must stay last.
func (b *Bot) Register(d *telegram.Dispatcher) {
	d.HandleCommand("changestatus", b.handleChangeStatus)
	d.HandleCommand("changeemail", b.handleChangeEmail)
	d.HandleCommand("changeflair", b.handleChangeFlair)
	d.HandleCommand("addvc", b.handleAddVideoComment)
	d.HandleCommand("cancel", b.handleCancel)

	d.HandleCallbackPrefix(cbSelectStatus, b.handleSelectStatus)
	d.HandleCallbackPrefix(cbSetStatus, b.handleSetStatus)
	d.HandleCallbackPrefix(cbSelectEmail, b.handleSelectEmail)
	d.HandleCallbackPrefix(cbSelectFlair, b.handleSelectFlair)
	d.HandleCallbackPrefix(cbSetFlair, b.handleSetFlair)
	d.HandleCallbackPrefix(cbWizardProfile, b.handleWizardProfile)
	d.HandleCallbackPrefix(cbWizardAuthor, b.handleWizardAuthor)
	d.HandleCallbackPrefix("", b.handleUnknownCallback)

	d.HandleText(b.handleText)
}
