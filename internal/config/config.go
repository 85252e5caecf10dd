package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// News API modes.
const (
	ModeQuery = "query"
	ModeChat  = "chat"
)

const (
	DefaultMaxItems = 5
	DefaultRegion   = "DACH region (Germany, Austria, Switzerland)"
)

// Relay holds everything one workflow invocation needs. It is read from the
// environment at invocation time and not modified afterwards.
type Relay struct {
	APIKey      string
	WebhookURL  string
	MaxItems    int
	Mode        string
	NewsAPIURL  string
	NewsModel   string
	Region      string
	HTTPTimeout time.Duration
	Mirror      Mirror
}

// Mirror configures the optional Kafka copy of relayed items.
type Mirror struct {
	KafkaBrokers []string
	KafkaTopic   string
}

// Enabled reports whether relayed items should also be written to Kafka.
func (m Mirror) Enabled() bool {
	return len(m.KafkaBrokers) > 0
}

// Server describes the long-running trigger process.
type Server struct {
	BindAddr        string
	Cron            string
	CronTimezone    string
	ShutdownTimeout time.Duration
}

// LoadRelay builds a Relay config from environment variables.
func LoadRelay() (*Relay, error) {
	mode := strings.ToLower(getEnv("NEWS_API_MODE", ModeQuery))

	c := &Relay{
		APIKey:      strings.TrimSpace(os.Getenv("SECRET_PERPLEXITY_API_KEY")),
		WebhookURL:  strings.TrimSpace(os.Getenv("SECRET_SLACK_WEBHOOK_URL")),
		MaxItems:    getInt("MAX_NEWS_ITEMS", DefaultMaxItems),
		Mode:        mode,
		NewsAPIURL:  getEnv("NEWS_API_URL", defaultAPIURL(mode)),
		NewsModel:   getEnv("NEWS_MODEL", defaultModel(mode)),
		Region:      getEnv("NEWS_REGION", DefaultRegion),
		HTTPTimeout: getDuration("RELAY_HTTP_TIMEOUT", "30s"),
		Mirror: Mirror{
			KafkaBrokers: splitAndTrim(os.Getenv("MIRROR_KAFKA_BROKERS")),
			KafkaTopic:   getEnv("MIRROR_KAFKA_TOPIC", "news_raw"),
		},
	}

	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}

	if c.APIKey == "" {
		return nil, fmt.Errorf("SECRET_PERPLEXITY_API_KEY must be set")
	}
	if c.WebhookURL == "" {
		return nil, fmt.Errorf("SECRET_SLACK_WEBHOOK_URL must be set")
	}
	if c.Mode != ModeQuery && c.Mode != ModeChat {
		return nil, fmt.Errorf("NEWS_API_MODE must be %q or %q", ModeQuery, ModeChat)
	}
	if c.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("RELAY_HTTP_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadServer builds a Server config from environment variables.
func LoadServer() (*Server, error) {
	c := &Server{
		BindAddr:        getEnv("RELAY_BIND_ADDR", "0.0.0.0:8080"),
		Cron:            getEnv("RELAY_CRON", "0 7 * * 1-5"),
		CronTimezone:    getEnv("RELAY_CRON_TZ", "UTC"),
		ShutdownTimeout: getDuration("RELAY_SHUTDOWN_TIMEOUT", "30s"),
	}

	if len(strings.Fields(c.Cron)) != 5 {
		return nil, fmt.Errorf("RELAY_CRON must have five fields")
	}
	if _, err := time.LoadLocation(c.CronTimezone); err != nil {
		return nil, fmt.Errorf("RELAY_CRON_TZ is not a known location: %w", err)
	}
	if c.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("RELAY_SHUTDOWN_TIMEOUT must be positive")
	}

	return c, nil
}

func defaultAPIURL(mode string) string {
	if mode == ModeChat {
		return "https://api.perplexity.ai"
	}
	return "https://api.perplexity.ai/v1/query"
}

func defaultModel(mode string) string {
	if mode == ModeChat {
		return "sonar-pro"
	}
	return "perplexity-advanced-v1"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
