package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	cfg := Config{
		DBName: getEnv("DB_NAME"),
		Port:   getEnv("PORT"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvDefault("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvDefault("TURSO_AUTH_TOKEN", ""),
		},
		Google: GoogleConfig{
			CredentialsFile:     getEnv("GOOGLE_CREDENTIALS_FILE"),
			ServiceAccountEmail: getEnvDefault("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
		},
		Telegram: TelegramConfig{
			Token: getEnvDefault("TELEGRAM_BOT_TOKEN", ""),
		},
		Inngest: InngestConfig{
			AppID:      getEnvDefault("INNGEST_APP_ID", "padel-roster"),
			SigningKey: getEnvDefault("INNGEST_SIGNING_KEY", ""),
			EventKey:   getEnvDefault("INNGEST_EVENT_KEY", ""),
			Dev:        getEnvBool("INNGEST_DEV", false),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		Roster:    loadRoster(),
	}
	return cfg
}

func loadRoster() RosterConfig {
	return RosterConfig{
		WorksheetPrefix:   getEnvDefault("WORKSHEET_PREFIX", "Americano"),
		SyncWorkers:       getEnvInt("SYNC_WORKERS", 4),
		SyncCron:          getEnvDefault("SYNC_CRON", "*/15 * * * *"),
		MaxGroupsPerAdmin: getEnvInt("MAX_GROUPS_PER_ADMIN", 3),
	}
}

func getEnvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Warn("Ignoring invalid value, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn("Ignoring invalid value, using default", "key", key, "value", value, "default", fallback)
		return fallback
	}
	return b
}
