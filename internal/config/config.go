package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Slack      SlackConfig      `mapstructure:"slack"`
	Automation AutomationConfig `mapstructure:"automation"`
	Dedup      DedupConfig      `mapstructure:"dedup"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type SlackConfig struct {
	SigningSecret string `mapstructure:"signing_secret"`
	BotToken      string `mapstructure:"bot_token"`
	APIURL        string `mapstructure:"api_url"`
	BotName       string `mapstructure:"bot_name"`
}

type AutomationConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	SiteEmail    string        `mapstructure:"site_email"`
	SitePassword string        `mapstructure:"site_password"`
	ProfileID    string        `mapstructure:"profile_id"`
	APIURL       string        `mapstructure:"api_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type DedupConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	RedisURL string        `mapstructure:"redis_url"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("slack.api_url", "https://slack.com/api")
	v.SetDefault("slack.bot_name", "@trolley-bot")
	v.SetDefault("automation.api_url", "https://api.browser-use.com")
	v.SetDefault("automation.poll_interval", "5s")
	v.SetDefault("dedup.ttl", "15m")
	v.SetDefault("dedup.cleanup_interval", "1m")
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.redis_url", "redis://localhost:6379/0")
	v.SetDefault("ratelimit.requests", 60)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/trolleybot")
	}

	// Environment variables override
	v.SetEnvPrefix("TROLLEYBOT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Keys without defaults must be bound explicitly: AutomaticEnv only
	// resolves keys viper already knows about, and Unmarshal never sees
	// env-only values otherwise.
	for _, key := range []string{
		"slack.signing_secret",
		"slack.bot_token",
		"automation.api_key",
		"automation.site_email",
		"automation.site_password",
		"automation.profile_id",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration required before the listener binds.
// The service refuses to start without Slack credentials and the
// automation collaborator's key and site login.
func (c *Config) Validate() error {
	if c.Slack.SigningSecret == "" {
		return fmt.Errorf("slack.signing_secret is required (TROLLEYBOT_SLACK_SIGNING_SECRET)")
	}
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required (TROLLEYBOT_SLACK_BOT_TOKEN)")
	}
	if c.Automation.APIKey == "" {
		return fmt.Errorf("automation.api_key is required (TROLLEYBOT_AUTOMATION_API_KEY)")
	}
	if c.Automation.SiteEmail == "" || c.Automation.SitePassword == "" {
		return fmt.Errorf("automation.site_email and automation.site_password are required")
	}
	return nil
}
