package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrInvalidPrice = errors.New("default price must be positive")

const DefaultPriceURL = "https://www.akcniceny.cz/akce/branik-pivo-vycepni-svetle-2-0l-pet/"

type Config struct {
	DBPath    string
	OutputDir string

	RedditUserAgent    string
	RedditClientID     string
	RedditClientSecret string
	RedditUsername     string
	RedditPassword     string
	RedditSubreddit    string
	RedditAPIBaseURL   string
	RedditTokenURL     string
	RedditRateLimitRPS float64
	RedditTimeoutMs    int
	RedditFetchLimit   int

	PriceURL           string
	PriceDefault       float64
	PriceRefreshCycles int

	BotInterval       time.Duration
	BotMaxCycles      int
	BotRepliesPerPost int
	BotPostResponse   bool
	BotSaveResponse   bool

	LogLevel    string
	LogFormat   string
	LogOutput   string
	MetricsAddr string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "branikbot.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "branikbot/1.0"),
		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUsername:     getEnv("REDDIT_USERNAME", ""),
		RedditPassword:     getEnv("REDDIT_PASSWORD", ""),
		RedditSubreddit:    getEnv("REDDIT_SUBREDDIT", "czech"),
		RedditAPIBaseURL:   getEnv("REDDIT_API_BASE_URL", "https://oauth.reddit.com"),
		RedditTokenURL:     getEnv("REDDIT_TOKEN_URL", "https://www.reddit.com/api/v1/access_token"),
		RedditRateLimitRPS: getEnvFloat("REDDIT_RATE_LIMIT_RPS", 1),
		RedditTimeoutMs:    getEnvInt("REDDIT_TIMEOUT_MS", 30000),
		RedditFetchLimit:   getEnvInt("REDDIT_FETCH_LIMIT", 20),

		PriceURL:           getEnv("PRICE_URL", DefaultPriceURL),
		PriceDefault:       getEnvFloat("PRICE_DEFAULT", 39.90),
		PriceRefreshCycles: getEnvInt("PRICE_REFRESH_CYCLES", 12),

		BotInterval:       getEnvDuration("BOT_INTERVAL_SEC", 5*time.Minute),
		BotMaxCycles:      getEnvInt("BOT_MAX_CYCLES", 120),
		BotRepliesPerPost: getEnvInt("BOT_REPLIES_PER_POST", 3),
		BotPostResponse:   getEnvBool("BOT_POST_RESPONSE", false),
		BotSaveResponse:   getEnvBool("BOT_SAVE_RESPONSE", false),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "console"),
		LogOutput:   getEnv("LOG_OUTPUT", "stderr"),
		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}

	if cfg.PriceDefault <= 0 {
		return Config{}, fmt.Errorf("PRICE_DEFAULT=%v: %w", cfg.PriceDefault, ErrInvalidPrice)
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// RequireReddit checks the credentials the listener needs to log in.
func (c Config) RequireReddit() error {
	required := []struct{ name, value string }{
		{"REDDIT_CLIENT_ID", c.RedditClientID},
		{"REDDIT_CLIENT_SECRET", c.RedditClientSecret},
		{"REDDIT_USERNAME", c.RedditUsername},
		{"REDDIT_PASSWORD", c.RedditPassword},
		{"REDDIT_SUBREDDIT", c.RedditSubreddit},
	}
	for _, r := range required {
		if err := c.Require(r.name, r.value); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvDuration reads a whole number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	secs := getEnvInt(key, -1)
	if secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
