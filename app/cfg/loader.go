package cfg

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Channels and state
	ChannelsDir  string `long:"channels-dir" env:"CHANNELS_DIR" default:"./channels" description:"Directory containing channel configuration files"`
	StateBackend string `long:"state-backend" env:"STATE_BACKEND" default:"file" choice:"file" choice:"sqlite" choice:"mysql" description:"Processed video log backend"`
	StateFile    string `long:"state-file" env:"STATE_FILE" default:"./processed_videos.txt" description:"Path of the processed video log (file and sqlite backends)"`
	StateDSN     string `long:"state-dsn" env:"STATE_DSN" description:"MySQL DSN for the mysql backend (user:pass@tcp(host:port)/db)"`

	// Discovery
	FeedBaseURL    string `long:"feed-base-url" env:"FEED_BASE_URL" default:"https://www.youtube.com/feeds/videos.xml" description:"Channel feed endpoint"`
	FeedWindow     int    `long:"feed-window" env:"FEED_WINDOW" default:"5" description:"Number of most recent videos inspected per channel"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests (defaults to a desktop browser)"`
	AcceptLanguage string `long:"accept-language" env:"ACCEPT_LANGUAGE" default:"ja,en;q=0.8" description:"Accept-Language header for page requests"`
	HTTPTimeout    int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"HTTP client timeout in seconds"`
	YouTubeAPIKey  string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key for the search fallback (optional)"`
	SearchBaseURL  string `long:"search-base-url" env:"SEARCH_BASE_URL" default:"https://www.googleapis.com/youtube/v3/search" description:"Channel search endpoint"`

	// Transcripts
	TranscriptLanguage         string `long:"transcript-lang" env:"TRANSCRIPT_LANG" default:"ja" description:"Preferred transcript language"`
	TranscriptFallbackLanguage string `long:"transcript-fallback-lang" env:"TRANSCRIPT_FALLBACK_LANG" default:"en" description:"Secondary transcript language"`
	TranscriptMaxChars         int    `long:"transcript-max-chars" env:"TRANSCRIPT_MAX_CHARS" default:"20000" description:"Transcript character budget"`

	// Report generation
	LLMAPIKey      string `long:"llm-api-key" env:"GEMINI_API_KEY" description:"API key for the report model"`
	LLMBaseURL     string `long:"llm-base-url" env:"LLM_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai/" description:"OpenAI-compatible endpoint for the report model"`
	LLMModel       string `long:"llm-model" env:"LLM_MODEL" default:"gemini-1.5-pro" description:"Report model name"`
	ReportLanguage string `long:"report-language" env:"REPORT_LANGUAGE" default:"Japanese" description:"Language the report is written in"`

	// Delivery
	Notifier        string `long:"notifier" env:"NOTIFIER" default:"line" choice:"line" choice:"telegram" description:"Chat service the report is pushed to"`
	LineAccessToken string `long:"line-access-token" env:"LINE_ACCESS_TOKEN" description:"LINE channel access token"`
	LineUserID      string `long:"line-user-id" env:"LINE_USER_ID" description:"LINE destination user or group id"`
	TelegramToken   string `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Telegram bot token"`
	TelegramChatID  int64  `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram destination chat id"`

	// Daemon mode
	Schedule     string `long:"schedule" env:"SCHEDULE" description:"Cron expression; when set the process stays up and runs on schedule"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP status port (daemon mode)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Tokyo" description:"Timezone for schedules and timestamps"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
	DryRun    bool   `long:"dry-run" env:"DRY_RUN" description:"Generate reports without delivering or recording them"`
}

// Load parses flags and environment. It returns nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return build(raw)
}

func build(raw rawCfg) (*Cfg, error) {
	cfg := &Cfg{
		ChannelsDir:                raw.ChannelsDir,
		StateBackend:               raw.StateBackend,
		StateFile:                  raw.StateFile,
		StateDSN:                   raw.StateDSN,
		FeedBaseURL:                raw.FeedBaseURL,
		FeedWindow:                 raw.FeedWindow,
		UserAgent:                  cmp.Or(raw.UserAgent, defaultUserAgent),
		AcceptLanguage:             raw.AcceptLanguage,
		HTTPTimeout:                time.Duration(raw.HTTPTimeout) * time.Second,
		YouTubeAPIKey:              raw.YouTubeAPIKey,
		SearchBaseURL:              raw.SearchBaseURL,
		TranscriptLanguage:         raw.TranscriptLanguage,
		TranscriptFallbackLanguage: raw.TranscriptFallbackLanguage,
		TranscriptMaxChars:         raw.TranscriptMaxChars,
		LLMAPIKey:                  raw.LLMAPIKey,
		LLMBaseURL:                 raw.LLMBaseURL,
		LLMModel:                   raw.LLMModel,
		ReportLanguage:             raw.ReportLanguage,
		Notifier:                   raw.Notifier,
		LineAccessToken:            raw.LineAccessToken,
		LineUserID:                 raw.LineUserID,
		TelegramToken:              raw.TelegramToken,
		TelegramChatID:             raw.TelegramChatID,
		Schedule:                   raw.Schedule,
		Port:                       raw.Port,
		APIAccessKey:               raw.APIAccessKey,
		Timezone:                   raw.Timezone,
		Debug:                      raw.Debug,
		LogFormat:                  raw.LogFormat,
		DryRun:                     raw.DryRun,
		Version:                    GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.FeedWindow < 1 {
		return fmt.Errorf("feed window must be positive, got %d", cfg.FeedWindow)
	}
	if cfg.TranscriptMaxChars < 1 {
		return fmt.Errorf("transcript max chars must be positive, got %d", cfg.TranscriptMaxChars)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if cfg.StateBackend == "mysql" && cfg.StateDSN == "" {
		return fmt.Errorf("state DSN is required for the mysql backend")
	}
	if !slices.Contains([]string{"line", "telegram"}, cfg.Notifier) {
		return fmt.Errorf("unknown notifier %q", cfg.Notifier)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Cfg) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
