package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"communitybridge/internal/discord"
	"communitybridge/internal/model"
	"communitybridge/internal/service"
)

var _ = Describe("ChatRelay", func() {
	var (
		ctx         context.Context
		mockTg      *mockTelegramSender
		mockDiscord *mockDiscordSender
		reports     *mockIssueReportStore
		relay       *service.ChatRelay
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockTg = &mockTelegramSender{}
		mockDiscord = &mockDiscordSender{}
		reports = &mockIssueReportStore{}

		relay = service.NewChatRelay(mockTg, mockDiscord, reports, service.ChatRelayConfig{
			ChatID:        "-100123",
			ModeratorTags: []string{"Alex_Boosteroid", "Mark | Boosteroid"},
		})
	})

	Context("with a support report command", func() {
		msg := discord.GatewayMessage{
			ID:        "m1",
			ChannelID: "ch1",
			Content:   "/communityhelper game crashes on startup",
			Author:    discord.GatewayUser{ID: "u1", Username: "someuser"},
		}

		It("relays the report to the operator chat with a request id", func() {
			relay.HandleMessage(ctx, msg)

			Expect(mockTg.messages).To(HaveLen(1))
			Expect(mockTg.messages[0].chatID).To(Equal("-100123"))
			Expect(mockTg.messages[0].text).To(ContainSubstring("someuser sent a report"))
			Expect(mockTg.messages[0].text).To(ContainSubstring("game crashes on startup"))
			Expect(mockTg.messages[0].text).To(ContainSubstring("Request ID:"))
		})

		It("persists an issue report with the chat defaults", func() {
			relay.HandleMessage(ctx, msg)

			Expect(reports.created).To(HaveLen(1))
			report := reports.created[0]
			Expect(report.ID).NotTo(BeEmpty())
			Expect(report.Username).To(Equal("someuser"))
			Expect(report.Title).To(Equal("game crashes on startup"))
			Expect(report.Platform).To(Equal(model.PlatformDiscord))
			Expect(report.Flair).To(Equal(model.FlairHelp))
			Expect(report.Status).To(Equal(model.StatusInQueue))
		})

		It("acknowledges the author by direct message", func() {
			relay.HandleMessage(ctx, msg)

			Expect(mockDiscord.directs).To(HaveLen(1))
			Expect(mockDiscord.directs[0].chatID).To(Equal("u1"))
			Expect(mockDiscord.directs[0].text).To(ContainSubstring("Your report has been sent to support!"))
			Expect(mockDiscord.directs[0].text).To(ContainSubstring("game crashes on startup"))
		})

		It("uses the same request id in relay, record, and acknowledgment", func() {
			relay.HandleMessage(ctx, msg)

			requestID := reports.created[0].ID
			Expect(mockTg.messages[0].text).To(ContainSubstring(requestID))
			Expect(mockDiscord.directs[0].text).To(ContainSubstring(requestID))
		})

		It("still persists the report when the acknowledgment cannot be delivered", func() {
			mockDiscord.sendDirectFn = func(ctx context.Context, userID, content string) error {
				return errors.New("cannot send messages to this user")
			}

			relay.HandleMessage(ctx, msg)

			Expect(reports.created).To(HaveLen(1))
		})

		It("ignores the bare command", func() {
			relay.HandleMessage(ctx, discord.GatewayMessage{
				Content: "/communityhelper   ",
				Author:  discord.GatewayUser{ID: "u1", Username: "someuser"},
			})

			Expect(reports.created).To(BeEmpty())
			Expect(mockTg.messages).To(BeEmpty())
		})
	})

	Context("with a message mentioning a moderator", func() {
		It("alerts the operator chat, matching by account name", func() {
			relay.HandleMessage(ctx, discord.GatewayMessage{
				ChannelID: "ch1",
				Content:   "hey @Alex_Boosteroid my game broke",
				Author:    discord.GatewayUser{ID: "u1", Username: "someuser"},
				Mentions:  []discord.GatewayUser{{ID: "u2", Username: "Alex_Boosteroid"}},
			})

			Expect(mockTg.messages).To(HaveLen(1))
			Expect(mockTg.messages[0].text).To(ContainSubstring("someuser mentioned Alex_Boosteroid in channel ch1"))
		})

		It("matches by display name too", func() {
			relay.HandleMessage(ctx, discord.GatewayMessage{
				ChannelID: "ch1",
				Content:   "ping",
				Author:    discord.GatewayUser{ID: "u1", Username: "someuser"},
				Mentions:  []discord.GatewayUser{{ID: "u3", Username: "mark123", GlobalName: "Mark | Boosteroid"}},
			})

			Expect(mockTg.messages).To(HaveLen(1))
			Expect(mockTg.messages[0].text).To(ContainSubstring("Mark | Boosteroid"))
		})

		It("stays silent for mentions of regular users", func() {
			relay.HandleMessage(ctx, discord.GatewayMessage{
				Content:  "ping",
				Author:   discord.GatewayUser{ID: "u1", Username: "someuser"},
				Mentions: []discord.GatewayUser{{ID: "u4", Username: "friend"}},
			})

			Expect(mockTg.messages).To(BeEmpty())
		})
	})

	It("ignores messages from bots", func() {
		relay.HandleMessage(ctx, discord.GatewayMessage{
			Content:  "/communityhelper spam",
			Author:   discord.GatewayUser{ID: "b1", Username: "somebot", Bot: true},
			Mentions: []discord.GatewayUser{{Username: "Alex_Boosteroid"}},
		})

		Expect(mockTg.messages).To(BeEmpty())
		Expect(reports.created).To(BeEmpty())
		Expect(mockDiscord.directs).To(BeEmpty())
	})

	It("ignores plain chatter", func() {
		relay.HandleMessage(ctx, discord.GatewayMessage{
			Content: "anyone up for a match?",
			Author:  discord.GatewayUser{ID: "u1", Username: "someuser"},
		})

		Expect(mockTg.messages).To(BeEmpty())
		Expect(reports.created).To(BeEmpty())
	})
})
