package config

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	Turso     TursoConfig
	Google    GoogleConfig
	Telegram  TelegramConfig
	Inngest   InngestConfig
	ProjectID string
	Roster    RosterConfig
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

// TursoConfig is optional; without a primary URL the local database file is used.
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type GoogleConfig struct {
	CredentialsFile string
	// Shown to admins so they can share their spreadsheet with the bot.
	ServiceAccountEmail string
}

// TelegramConfig is optional; group chat announcements are off without a token.
type TelegramConfig struct {
	Token string
}
type InngestConfig struct {
	AppID      string
	SigningKey string
	EventKey   string
	Dev        bool
}

// Enabled reports whether the scheduled sync should be served.
func (c InngestConfig) Enabled() bool {
	return c.Dev || c.SigningKey != ""
}

// RosterConfig tunes the registration and sync behaviour.
type RosterConfig struct {
	WorksheetPrefix   string
	SyncWorkers       int
	SyncCron          string
	MaxGroupsPerAdmin int
}
