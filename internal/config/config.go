package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr  string
	BaseURL     string
	FrontendURL string
	Env         string
	LogLevel    string
	TimeZone    string

	DB struct {
		DSN string
	}

	Session struct {
		Secret string
		TTL    time.Duration
	}

	Google struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
		CalendarID   string
	}

	RabbitMQ struct {
		URL string
	}

	Mail struct {
		Host     string
		Port     int
		User     string
		Password string
		From     string
		NotifyTo string
		BackupTo string
	}

	Webhook struct {
		Secret              string
		DefaultChiropractor string
	}

	Calendar struct {
		OpenHour  int
		CloseHour int
		SlotStep  int
	}

	CompletionInterval time.Duration
	BackupInterval     time.Duration
	AllowedOrigins     []string
	TrustedProxies     []string
	PrometheusEnabled  bool
	AutoMigrate        bool
}

// Load reads configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.ListenAddr = getenvDefault("APP_LISTEN_ADDR", ":8080")
	cfg.BaseURL = getenvDefault("APP_BASE_URL", "http://localhost:8080")
	cfg.Env = getenvDefault("APP_ENV", "development")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.TimeZone = getenvDefault("APP_TIMEZONE", "Europe/Warsaw")

	cfg.DB.DSN = os.Getenv("DATABASE_URL")

	cfg.Session.Secret = os.Getenv("APP_SESSION_SECRET")
	cfg.Session.TTL = getenvDuration("APP_SESSION_TTL", 12*time.Hour)

	cfg.Google.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.Google.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.Google.RedirectURL = getenvDefault("GOOGLE_REDIRECT_URL", strings.TrimSuffix(cfg.BaseURL, "/")+"/api/google/callback")
	cfg.Google.CalendarID = getenvDefault("GOOGLE_CALENDAR_ID", "primary")

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")

	cfg.Mail.Host = os.Getenv("MAIL_HOST")
	cfg.Mail.Port = getenvInt("MAIL_PORT", 587)
	cfg.Mail.User = os.Getenv("MAIL_USER")
	cfg.Mail.Password = os.Getenv("MAIL_PASS")
	cfg.Mail.From = getenvDefault("MAIL_FROM", "recepcja@localhost")
	cfg.Mail.NotifyTo = os.Getenv("MAIL_NOTIFY_TO")
	cfg.Mail.BackupTo = os.Getenv("MAIL_BACKUP_TO")

	cfg.Webhook.Secret = os.Getenv("WEBHOOK_SECRET")
	cfg.Webhook.DefaultChiropractor = os.Getenv("WEBHOOK_DEFAULT_CHIROPRACTOR")

	cfg.Calendar.OpenHour = getenvInt("CALENDAR_OPEN_HOUR", 8)
	cfg.Calendar.CloseHour = getenvInt("CALENDAR_CLOSE_HOUR", 20)
	cfg.Calendar.SlotStep = getenvInt("CALENDAR_SLOT_MINUTES", 30)

	cfg.CompletionInterval = getenvDuration("BOOKING_COMPLETION_INTERVAL", time.Minute)
	cfg.BackupInterval = getenvDuration("BACKUP_INTERVAL", 24*time.Hour)
	cfg.AllowedOrigins = getenvList("APP_ALLOWED_ORIGINS")
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}
	cfg.FrontendURL = getenvDefault("APP_FRONTEND_URL", cfg.AllowedOrigins[0])
	cfg.TrustedProxies = getenvList("APP_TRUSTED_PROXIES")
	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", false)
	cfg.AutoMigrate = getenvBool("APP_AUTO_MIGRATE", true)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.DSN == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Session.Secret == "" {
		return errors.New("APP_SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("APP_SESSION_SECRET must be at least 32 characters long (got %d)", len(c.Session.Secret))
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.TimeZone, err)
	}
	if c.Calendar.OpenHour < 0 || c.Calendar.CloseHour > 24 || c.Calendar.OpenHour >= c.Calendar.CloseHour {
		return fmt.Errorf("calendar hours out of range: %d-%d", c.Calendar.OpenHour, c.Calendar.CloseHour)
	}
	if c.Calendar.SlotStep <= 0 || 60%c.Calendar.SlotStep != 0 {
		return fmt.Errorf("CALENDAR_SLOT_MINUTES must divide 60 (got %d)", c.Calendar.SlotStep)
	}
	return nil
}

// Location returns the clinic time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != ""
}

func (c *Config) MailEnabled() bool {
	return c.Mail.Host != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
