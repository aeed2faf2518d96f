package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config captures environment driven configuration for the studio scheduler.
type Config struct {
	HTTPPort  int    `env:"SCHEDULER_HTTP_PORT" env-default:"8080"`
	SQLiteDSN string `env:"SCHEDULER_SQLITE_DSN" env-default:"file:studio.db?_pragma=foreign_keys(1)"`
	LogLevel  string `env:"SCHEDULER_LOG_LEVEL" env-default:"info"`

	// SchedulerSecret gates the internal trigger endpoints. It may be either
	// an argon2id hash (preferred, keeps the plaintext out of the process
	// environment) or a plaintext value. Empty disables the check.
	SchedulerSecret string `env:"SCHEDULER_SECRET"`

	Poller   Poller   `env-prefix:""`
	Provider Provider `env-prefix:""`
	Mail     Mail     `env-prefix:""`
}

// Poller controls the due-session scan.
type Poller struct {
	LeadTime      time.Duration `env:"NOTIFY_LEAD_TIME" env-default:"12h"`
	Window        time.Duration `env:"NOTIFY_WINDOW" env-default:"5m"`
	Horizon       time.Duration `env:"NOTIFY_SCAN_HORIZON" env-default:"48h"`
	Forced        bool          `env:"NOTIFY_FORCE_ALL" env-default:"false"`
	CronSpec      string        `env:"NOTIFY_CRON_SPEC" env-default:"@every 5m"`
	CandidateStop time.Duration `env:"NOTIFY_CANDIDATE_TIMEOUT" env-default:"2m"`
}

// Provider holds meeting-provider API credentials.
type Provider struct {
	AuthURL      string        `env:"MEETING_AUTH_URL" env-default:"https://auth.meetings.example.com/oauth/token"`
	APIBaseURL   string        `env:"MEETING_API_BASE_URL" env-default:"https://api.meetings.example.com/v2"`
	ClientID     string        `env:"MEETING_CLIENT_ID"`
	ClientSecret string        `env:"MEETING_CLIENT_SECRET"`
	AccountID    string        `env:"MEETING_ACCOUNT_ID"`
	Timeout      time.Duration `env:"MEETING_HTTP_TIMEOUT" env-default:"15s"`
}

// Mail holds outbound email delivery settings.
type Mail struct {
	SMTPHost     string   `env:"MAIL_SMTP_HOST" env-default:"localhost"`
	SMTPPort     int      `env:"MAIL_SMTP_PORT" env-default:"587"`
	SMTPUsername string   `env:"MAIL_SMTP_USERNAME"`
	SMTPPassword string   `env:"MAIL_SMTP_PASSWORD"`
	From         string   `env:"MAIL_FROM" env-default:"classes@studio.example.com"`
	Stakeholders []string `env:"MAIL_STAKEHOLDER_BCC" env-separator:","`
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTPPort <= 0 {
		return fmt.Errorf("config: SCHEDULER_HTTP_PORT must be positive, got %d", c.HTTPPort)
	}
	if c.Poller.LeadTime <= 0 {
		return fmt.Errorf("config: NOTIFY_LEAD_TIME must be positive, got %s", c.Poller.LeadTime)
	}
	if c.Poller.Window < 0 {
		return fmt.Errorf("config: NOTIFY_WINDOW must not be negative, got %s", c.Poller.Window)
	}
	if c.Poller.Horizon < c.Poller.LeadTime {
		return fmt.Errorf("config: NOTIFY_SCAN_HORIZON (%s) must cover NOTIFY_LEAD_TIME (%s)", c.Poller.Horizon, c.Poller.LeadTime)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("config: MEETING_HTTP_TIMEOUT must be positive, got %s", c.Provider.Timeout)
	}
	return nil
}
