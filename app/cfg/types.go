package cfg

import "time"

type Cfg struct {
	// Channels and state
	ChannelsDir  string
	StateBackend string
	StateFile    string
	StateDSN     string

	// Discovery
	FeedBaseURL    string
	FeedWindow     int
	UserAgent      string
	AcceptLanguage string
	HTTPTimeout    time.Duration
	YouTubeAPIKey  string
	SearchBaseURL  string

	// Transcripts
	TranscriptLanguage         string
	TranscriptFallbackLanguage string
	TranscriptMaxChars         int

	// Report generation
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	ReportLanguage string

	// Delivery
	Notifier        string
	LineAccessToken string
	LineUserID      string
	TelegramToken   string
	TelegramChatID  int64

	// Daemon mode
	Schedule     string
	Port         string
	APIAccessKey string

	// Application metadata
	Timezone  string
	Debug     bool
	LogFormat string
	DryRun    bool
	Version   string
}

// Daemon reports whether the process should stay up and run batches on a schedule.
func (c *Cfg) Daemon() bool {
	return c.Schedule != ""
}
