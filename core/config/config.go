package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Reddit   RedditConfig
	Telegram TelegramConfig
	Discord  DiscordConfig
	Notion   NotionConfig
	OTel     OTelConfig
	Env      string

	// IgnoredUsers are identities whose activity is never ingested or relayed.
	IgnoredUsers []string

	// Moderators are the privileged Reddit identities whose comments mark a
	// report as handled.
	Moderators []string

	// ChatModerators are the Discord identities whose mentions trigger an
	// alert relay.
	ChatModerators []string
}

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	Subreddit    string
}

type TelegramConfig struct {
	BotToken string
	ChatID   string
}

type DiscordConfig struct {
	BotToken string
}

// NotionConfig holds the structured-store auth token and the per-record-kind
// collection identifiers. VideoCommentsDB is optional; the guided wizard
// refuses to write when it is unset.
type NotionConfig struct {
	Token           string
	IssuesDB        string
	CommentsDB      string
	AnalyticsDB     string
	VideoCommentsDB string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

var defaultModerators = []string{
	"Alex_Boosteroid",
	"Andrew__Boosteroid",
	"Arthur_Boosteroid",
	"Mark_Boosteroid",
}

var defaultChatModerators = []string{
	"[Mod] Alex",
	"[Mod] Artorias",
	"[Mod] Denys",
	"[Mod] Andrii",
	"artorias_the_one",
	"ggdeviant.",
	"bomboclat0109",
	"andrii4496",
}

// Load loads configuration from environment variables.
// In development it first loads a .env file from the working directory.
func Load() (Config, error) {
	if getEnv("BRIDGE_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env: getEnv("BRIDGE_ENV", "development"),
		Reddit: RedditConfig{
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:    getEnv("REDDIT_USER_AGENT", "communitybridge/1.0"),
			Subreddit:    getEnv("SUBREDDIT_NAME", "BoosteroidCommunity"),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Discord: DiscordConfig{
			BotToken: getEnv("DISCORD_TOKEN", ""),
		},
		Notion: NotionConfig{
			Token:           getEnv("NOTION_TOKEN", ""),
			IssuesDB:        getEnv("NOTION_ISSUES_DB", ""),
			CommentsDB:      getEnv("NOTION_COMMENTS_DB", ""),
			AnalyticsDB:     getEnv("NOTION_ANALYTICS_DB", ""),
			VideoCommentsDB: getEnv("NOTION_VIDEO_DB", ""),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "communitybridge"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		IgnoredUsers:   getEnvList("IGNORED_USERS", nil),
		Moderators:     getEnvList("MODERATORS", defaultModerators),
		ChatModerators: getEnvList("CHAT_MODERATORS", defaultChatModerators),
	}

	if cfg.Reddit.ClientID == "" || cfg.Reddit.ClientSecret == "" {
		return Config{}, fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required")
	}

	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required")
	}

	if cfg.Notion.Token == "" || cfg.Notion.IssuesDB == "" {
		return Config{}, fmt.Errorf("NOTION_TOKEN and NOTION_ISSUES_DB are required")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

// HeaderMap parses the comma-separated key=value pairs of
// OTEL_EXPORTER_OTLP_HEADERS into the form the exporters take.
func (c OTelConfig) HeaderMap() map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.Headers, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}

func (c DiscordConfig) Enabled() bool {
	return c.BotToken != ""
}

func (c NotionConfig) HasVideoComments() bool {
	return c.VideoCommentsDB != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
