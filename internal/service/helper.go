package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"communitybridge/common/id"
	"communitybridge/common/logger"
	"communitybridge/internal/discord"
	"communitybridge/internal/model"
	"communitybridge/internal/store"
)

const reportCommand = "/communityhelper"

type ChatRelayConfig struct {
	ChatID        string
	ModeratorTags []string
}

// ChatRelay processes chat messages from the Discord gateway: support
// reports become issue reports relayed to the operator chat and
// acknowledged by DM, and messages mentioning a known moderator raise an
// alert.
type ChatRelay struct {
	telegram telegramSender
	discord  discordSender
	reports  store.IssueReportStore
	cfg      ChatRelayConfig

	moderatorTags map[string]bool
}

func NewChatRelay(telegram telegramSender, discord discordSender, reports store.IssueReportStore, cfg ChatRelayConfig) *ChatRelay {
	return &ChatRelay{
		telegram:      telegram,
		discord:       discord,
		reports:       reports,
		cfg:           cfg,
		moderatorTags: stringSet(cfg.ModeratorTags),
	}
}

// HandleMessage is the gateway dispatch entry point.
func (r *ChatRelay) HandleMessage(ctx context.Context, msg discord.GatewayMessage) {
	if msg.Author.Bot {
		return
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "bridge.service.chatrelay",
		Platform:  logger.Ptr(string(model.PlatformDiscord)),
	})

	r.alertMentions(ctx, msg)

	if text, ok := strings.CutPrefix(msg.Content, reportCommand); ok {
		r.handleReport(ctx, msg, strings.TrimSpace(text))
	}
}

// alertMentions notifies the operator chat when a message mentions any
// moderator, matched by account or display name.
func (r *ChatRelay) alertMentions(ctx context.Context, msg discord.GatewayMessage) {
	var mentioned []string
	for _, user := range msg.Mentions {
		if r.moderatorTags[user.Username] || r.moderatorTags[user.DisplayName()] {
			mentioned = append(mentioned, user.DisplayName())
		}
	}
	if len(mentioned) == 0 {
		return
	}

	alert := fmt.Sprintf("⚠️ %s mentioned %s in channel %s:\n%s",
		msg.Author.Username, strings.Join(mentioned, ", "), msg.ChannelID, msg.Content)
	if _, err := r.telegram.SendMessage(ctx, r.cfg.ChatID, alert, nil); err != nil {
		slog.ErrorContext(ctx, "sending mention alert failed", "error", err)
	}
}

func (r *ChatRelay) handleReport(ctx context.Context, msg discord.GatewayMessage, text string) {
	if text == "" {
		return
	}

	requestID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{RecordID: &requestID})

	copyText := fmt.Sprintf("📢 %s sent a report:\n%s\n\n🆔 Request ID: %s",
		msg.Author.Username, text, requestID)
	if _, err := r.telegram.SendMessage(ctx, r.cfg.ChatID, copyText, nil); err != nil {
		slog.ErrorContext(ctx, "relaying report failed", "error", err)
	}

	_, err := r.reports.Create(ctx, model.IssueReport{
		ID:          requestID,
		Date:        time.Now().UTC(),
		Username:    msg.Author.Username,
		Title:       text,
		Description: text,
		Platform:    model.PlatformDiscord,
		Flair:       model.FlairHelp,
		Status:      model.StatusInQueue,
	})
	if err != nil {
		slog.ErrorContext(ctx, "persisting report failed", "error", err)
	} else {
		slog.InfoContext(ctx, "report ingested", "author", msg.Author.Username)
	}

	// Acknowledgment is best effort: users can disable DMs.
	ack := fmt.Sprintf("Your report has been sent to support!\n"+
		"🆔 Request ID: %s\n"+
		"Your message text: %s\n"+
		"Please wait for a response from the moderator and save the report ID",
		requestID, text)
	if err := r.discord.SendDirect(ctx, msg.Author.ID, ack); err != nil {
		slog.ErrorContext(ctx, "sending report acknowledgment failed", "error", err)
	}
}
