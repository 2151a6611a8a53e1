package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"communitybridge/common/logger"
	"communitybridge/internal/model"
	"communitybridge/internal/session"
	"communitybridge/internal/store"
	"communitybridge/internal/telegram"
)

const searchDepth = 7 * 24 * time.Hour

// --- Record mutation commands -----------------------------------------------

func (b *Bot) handleChangeStatus(ctx context.Context, msg telegram.Message, args string) error {
	return b.promptRecordSelection(ctx, msg, args, cbSelectStatus, "Select a record to change the status:")
}

func (b *Bot) handleChangeEmail(ctx context.Context, msg telegram.Message, args string) error {
	return b.promptRecordSelection(ctx, msg, args, cbSelectEmail, "Select a record to change the email:")
}

func (b *Bot) handleChangeFlair(ctx context.Context, msg telegram.Message, args string) error {
	return b.promptRecordSelection(ctx, msg, args, cbSelectFlair, "Select a record to change the flair:")
}

// promptRecordSelection searches the last week of reports by keyword and
// offers the matches as a selection keyboard carrying the given payload
// prefix.
func (b *Bot) promptRecordSelection(ctx context.Context, msg telegram.Message, keyword, prefix, prompt string) error {
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	matches, err := b.reports.SearchRecent(ctx, keyword, time.Now().UTC().Add(-searchDepth))
	if err != nil {
		return fmt.Errorf("searching records for %q: %w", keyword, err)
	}
	if len(matches) == 0 {
		_, err := b.telegram.SendMessage(ctx, chatID, "No records found.", nil)
		return err
	}

	buttons := make([]telegram.InlineKeyboardButton, 0, len(matches))
	for _, report := range matches {
		label := report.Title
		if label == "" {
			label = "(untitled)"
		}
		buttons = append(buttons, telegram.InlineKeyboardButton{
			Text:         label,
			CallbackData: prefix + report.PageID,
		})
	}

	_, err = b.telegram.SendMessage(ctx, chatID, prompt, &telegram.SendOptions{
		ReplyMarkup: telegram.KeyboardColumn(buttons...),
	})
	return err
}

// --- Selector callbacks -----------------------------------------------------

func (b *Bot) handleSelectStatus(ctx context.Context, query telegram.CallbackQuery) error {
	b.answer(ctx, query)

	pageID := strings.TrimPrefix(query.Data, cbSelectStatus)
	buttons := make([]telegram.InlineKeyboardButton, 0, len(model.Statuses))
	for _, status := range model.Statuses {
		buttons = append(buttons, telegram.InlineKeyboardButton{
			Text:         string(status),
			CallbackData: fmt.Sprintf("%s%s|%s", cbSetStatus, pageID, model.StatusCodes[status]),
		})
	}
	return b.edit(ctx, query, "Select the new status:", telegram.KeyboardColumn(buttons...))
}

func (b *Bot) handleSetStatus(ctx context.Context, query telegram.CallbackQuery) error {
	b.answer(ctx, query)

	parts := strings.SplitN(query.Data, "|", 3)
	if len(parts) != 3 {
		return b.edit(ctx, query, "Malformed selection.", nil)
	}
	pageID, code := parts[1], parts[2]

	status, ok := model.StatusByCode(code)
	if !ok {
		return b.edit(ctx, query, "Unknown status.", nil)
	}

	if err := b.reports.UpdateStatus(ctx, pageID, status); err != nil {
		return b.edit(ctx, query, fmt.Sprintf("Failed to update status: %v", err), nil)
	}
	return b.edit(ctx, query, fmt.Sprintf("Status of record %s changed to %s", pageID, status), nil)
}

func (b *Bot) handleSelectEmail(ctx context.Context, query telegram.CallbackQuery) error {
	b.answer(ctx, query)

	pageID := strings.TrimPrefix(query.Data, cbSelectEmail)
	b.sessions.Set(query.From.ID, session.State{Step: session.StepEmail, PageID: pageID})
	return b.edit(ctx, query, "Enter the new email for the selected record:", nil)
}

func (b *Bot) handleSelectFlair(ctx context.Context, query telegram.CallbackQuery) error {
	b.answer(ctx, query)

	pageID := strings.TrimPrefix(query.Data, cbSelectFlair)
	buttons := make([]telegram.InlineKeyboardButton, 0, len(model.Flairs))
	for _, flair := range model.Flairs {
		buttons = append(buttons, telegram.InlineKeyboardButton{
			Text:         string(flair),
			CallbackData: fmt.Sprintf("%s%s|%s", cbSetFlair, pageID, flair),
		})
	}
	return b.edit(ctx, query, "Select the new flair:", telegram.KeyboardColumn(buttons...))
}

func (b *Bot) handleSetFlair(ctx context.Context, query telegram.CallbackQuery) error {
	b.answer(ctx, query)

	parts := strings.SplitN(query.Data, "|", 3)
	if len(parts) != 3 {
		return b.edit(ctx, query, "Malformed selection.", nil)
	}
	pageID, flair := parts[1], parts[2]

	if err := b.reports.UpdateFlair(ctx, pageID, model.Flair(flair)); err != nil {
		return b.edit(ctx, query, fmt.Sprintf("Failed to update flair: %v", err), nil)
	}
	return b.edit(ctx, query, fmt.Sprintf("Flair of record %s changed to %s", pageID, flair), nil)
}

func (b *Bot) handleUnknownCallback(ctx context.Context, query telegram.CallbackQuery) error {
	b.answer(ctx, query)
	return b.edit(ctx, query, "Unknown command.", nil)
}

// --- Video comment wizard ---------------------------------------------------

func (b *Bot) handleAddVideoComment(ctx context.Context, msg telegram.Message, _ string) error {
	if msg.From == nil {
		return nil
	}
	b.sessions.Set(msg.From.ID, session.State{Step: session.StepVideoChannel})
	_, err := b.telegram.SendMessage(ctx, strconv.FormatInt(msg.Chat.ID, 10),
		"Enter the Youtube channel name:", nil)
	return err
}

func (b *Bot) handleWizardProfile(ctx context.Context, query telegram.CallbackQuery) error {
	b.answer(ctx, query)

	state, ok := b.sessions.Get(query.From.ID)
	if !ok || state.Step != session.StepVideoProfile {
		return b.edit(ctx, query, "Unknown command.", nil)
	}

	state.Video.Profile = model.ViewerProfile(strings.TrimPrefix(query.Data, cbWizardProfile))
	state.Step = session.StepVideoAuthor
	b.sessions.Set(query.From.ID, state)

	buttons := make([]telegram.InlineKeyboardButton, 0, len(model.TeamMembers))
	for _, member := range model.TeamMembers {
		buttons = append(buttons, telegram.InlineKeyboardButton{
			Text:         string(member),
			CallbackData: cbWizardAuthor + string(member),
		})
	}
	return b.edit(ctx, query, "Select the comment author:", telegram.KeyboardColumn(buttons...))
}

func (b *Bot) handleWizardAuthor(ctx context.Context, query telegram.CallbackQuery) error {
	b.answer(ctx, query)

	state, ok := b.sessions.Get(query.From.ID)
	if !ok || state.Step != session.StepVideoAuthor {
		return b.edit(ctx, query, "Unknown command.", nil)
	}
	b.sessions.Clear(query.From.ID)

	state.Video.Author = model.TeamMember(strings.TrimPrefix(query.Data, cbWizardAuthor))
	state.Video.Date = time.Now().UTC()

	if err := b.videos.Create(ctx, state.Video); err != nil {
		if errors.Is(err, store.ErrNoCollection) {
			return b.edit(ctx, query, "No database configured for Youtube comments.", nil)
		}
		return b.edit(ctx, query, fmt.Sprintf("Failed to add comment: %v", err), nil)
	}
	return b.edit(ctx, query, "Comment added to the database.", nil)
}

func (b *Bot) handleCancel(ctx context.Context, msg telegram.Message, _ string) error {
	if msg.From != nil {
		b.sessions.Clear(msg.From.ID)
	}
	_, err := b.telegram.SendMessage(ctx, strconv.FormatInt(msg.Chat.ID, 10),
		"Operation canceled.", nil)
	return err
}

// --- Free-text input --------------------------------------------------------

// handleText consumes text for whatever the operator's active flow is
// waiting on; with no active flow, replies are checked for feedback
// reactions.
func (b *Bot) handleText(ctx context.Context, msg telegram.Message) error {
	if msg.From == nil {
		return nil
	}
	operator := msg.From.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{Operator: &operator})

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	text := strings.TrimSpace(msg.Text)

	state, active := b.sessions.Get(operator)
	if !active {
		return b.trackFeedback(ctx, msg)
	}

	switch state.Step {
	case session.StepEmail:
		b.sessions.Clear(operator)
		if err := b.reports.UpdateEmail(ctx, state.PageID, text); err != nil {
			_, sendErr := b.telegram.SendMessage(ctx, chatID,
				fmt.Sprintf("Failed to update email: %v", err), nil)
			return sendErr
		}
		_, err := b.telegram.SendMessage(ctx, chatID,
			fmt.Sprintf("Email of record %s changed to %s", state.PageID, text), nil)
		return err

	case session.StepVideoChannel:
		state.Video.Channel = text
		state.Step = session.StepVideoLink
		b.sessions.Set(operator, state)
		_, err := b.telegram.SendMessage(ctx, chatID, "Enter the video link:", nil)
		return err

	case session.StepVideoLink:
		state.Video.Link = text
		state.Step = session.StepVideoText
		b.sessions.Set(operator, state)
		_, err := b.telegram.SendMessage(ctx, chatID, "Enter the comment text:", nil)
		return err

	case session.StepVideoText:
		state.Video.Comment = text
		state.Step = session.StepVideoProfile
		b.sessions.Set(operator, state)

		buttons := make([]telegram.InlineKeyboardButton, 0, len(model.ViewerProfiles))
		for _, profile := range model.ViewerProfiles {
			buttons = append(buttons, telegram.InlineKeyboardButton{
				Text:         string(profile),
				CallbackData: cbWizardProfile + string(profile),
			})
		}
		_, err := b.telegram.SendMessage(ctx, chatID, "Select the profile:", &telegram.SendOptions{
			ReplyMarkup: telegram.KeyboardColumn(buttons...),
		})
		return err

	default:
		// Keyboard-driven steps ignore free text.
		return nil
	}
}

func (b *Bot) trackFeedback(ctx context.Context, msg telegram.Message) error {
	if msg.ReplyTo == nil {
		return nil
	}

	recorded, err := b.feedback.HandleReply(ctx, msg.Text, msg.ReplyTo.Text)
	if err != nil {
		return fmt.Errorf("tracking feedback: %w", err)
	}
	if recorded {
		slog.InfoContext(ctx, "feedback reaction recorded")
	}
	return nil
}

// --- Helpers ----------------------------------------------------------------

// answer acknowledges a button press; failures only cost the client its
// progress indicator, so they are logged and ignored.
func (b *Bot) answer(ctx context.Context, query telegram.CallbackQuery) {
	if err := b.telegram.AnswerCallbackQuery(ctx, query.ID, ""); err != nil {
		slog.WarnContext(ctx, "answering callback failed", "error", err)
	}
}

// edit rewrites the message the pressed keyboard was attached to.
func (b *Bot) edit(ctx context.Context, query telegram.CallbackQuery, text string, markup *telegram.InlineKeyboardMarkup) error {
	if query.Message == nil {
		return nil
	}
	var opts *telegram.SendOptions
	if markup != nil {
		opts = &telegram.SendOptions{ReplyMarkup: markup}
	}
	return b.telegram.EditMessageText(ctx,
		strconv.FormatInt(query.Message.Chat.ID, 10), query.Message.MessageID, text, opts)
}
