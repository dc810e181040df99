package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Sync      SyncConfig
	Alert     AlertConfig
	Mail      MailConfig
	Broadcast BroadcastConfig
	Platform  PlatformConfig
	Webhook   WebhookConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level    string // debug, info, warn, error
	Format   string // json, console
	Output   string // stdout, stderr, or file path
	SQLLevel string // silent, error, warn, info
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	MigrationsPath  string
}

// RedisConfig holds Redis connection settings.
// An empty Host disables Redis and the in-memory lock and dedupe stores are used.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SyncConfig controls the store sync runner
type SyncConfig struct {
	PacingDelay  time.Duration // pause between stores in a batch run
	FetchTimeout time.Duration // bound on a single StoreClient call
	LockTTL      time.Duration // expiry of the distributed per-store lock
}

// AlertConfig controls alert evaluation and notification dedupe
type AlertConfig struct {
	DedupeTTL     time.Duration
	RenotifyAfter time.Duration // 0 disables re-notification of still-triggered alerts
}

// MailConfig holds SMTP settings. An empty Host disables the email channel.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// BroadcastConfig selects the real-time broadcast driver
type BroadcastConfig struct {
	Driver       string // log, redis, kafka
	KafkaBrokers []string
	KafkaTopic   string
}

// PlatformConfig configures the store platform API clients.
// Empty base URLs select each platform's production endpoint.
type PlatformConfig struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	ShopifyAPIVersion string
	ShopifyBaseURL    string
	EtsyAPIKey        string
	EtsyBaseURL       string
	AmazonBaseURL     string
}

// WebhookConfig protects the inbound webhook endpoint and bounds outbound webhook calls
type WebhookConfig struct {
	Secret          string
	OutboundTimeout time.Duration
	RateLimit       float64 // inbound requests per second per client IP
	RateBurst       int
}

// SchedulerConfig holds the periodic trigger intervals
type SchedulerConfig struct {
	Enabled            bool
	SyncInterval       time.Duration
	AlertCheckInterval time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// Load loads configuration from a .env file, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with INVSYNC_ prefix (e.g., INVSYNC_DATABASE_PASSWORD)
// 2. .env in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("INVSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			MigrationsPath:  v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Format:   v.GetString("log.format"),
			Output:   v.GetString("log.output"),
			SQLLevel: v.GetString("log.sql_level"),
		},
		Sync: SyncConfig{
			PacingDelay:  v.GetDuration("sync.pacing_delay"),
			FetchTimeout: v.GetDuration("sync.fetch_timeout"),
			LockTTL:      v.GetDuration("sync.lock_ttl"),
		},
		Alert: AlertConfig{
			DedupeTTL:     v.GetDuration("alert.dedupe_ttl"),
			RenotifyAfter: v.GetDuration("alert.renotify_after"),
		},
		Mail: MailConfig{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		Broadcast: BroadcastConfig{
			Driver:       v.GetString("broadcast.driver"),
			KafkaBrokers: v.GetStringSlice("broadcast.kafka_brokers"),
			KafkaTopic:   v.GetString("broadcast.kafka_topic"),
		},
		Platform: PlatformConfig{
			Timeout:           v.GetDuration("platform.timeout"),
			RequestsPerSecond: v.GetFloat64("platform.requests_per_second"),
			ShopifyAPIVersion: v.GetString("platform.shopify_api_version"),
			ShopifyBaseURL:    v.GetString("platform.shopify_base_url"),
			EtsyAPIKey:        v.GetString("platform.etsy_api_key"),
			EtsyBaseURL:       v.GetString("platform.etsy_base_url"),
			AmazonBaseURL:     v.GetString("platform.amazon_base_url"),
		},
		Webhook: WebhookConfig{
			Secret:          v.GetString("webhook.secret"),
			OutboundTimeout: v.GetDuration("webhook.outbound_timeout"),
			RateLimit:       v.GetFloat64("webhook.rate_limit"),
			RateBurst:       v.GetInt("webhook.rate_burst"),
		},
		Scheduler: SchedulerConfig{
			Enabled:            v.GetBool("scheduler.enabled"),
			SyncInterval:       v.GetDuration("scheduler.sync_interval"),
			AlertCheckInterval: v.GetDuration("scheduler.alert_check_interval"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "invsync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "inventory"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host != "" && cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.SQLLevel == "" {
		cfg.Log.SQLLevel = "warn"
	}
	if cfg.Sync.PacingDelay == 0 {
		cfg.Sync.PacingDelay = 2 * time.Second
	}
	if cfg.Sync.FetchTimeout == 0 {
		cfg.Sync.FetchTimeout = 60 * time.Second
	}
	if cfg.Sync.LockTTL == 0 {
		cfg.Sync.LockTTL = 10 * time.Minute
	}
	if cfg.Alert.DedupeTTL == 0 {
		cfg.Alert.DedupeTTL = 7 * 24 * time.Hour
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = "alerts@invsync.local"
	}
	if cfg.Broadcast.Driver == "" {
		cfg.Broadcast.Driver = "log"
	}
	if cfg.Broadcast.KafkaTopic == "" {
		cfg.Broadcast.KafkaTopic = "inventory.broadcast"
	}
	if cfg.Platform.Timeout == 0 {
		cfg.Platform.Timeout = 30 * time.Second
	}
	if cfg.Platform.RequestsPerSecond == 0 {
		cfg.Platform.RequestsPerSecond = 2
	}
	if cfg.Platform.ShopifyAPIVersion == "" {
		cfg.Platform.ShopifyAPIVersion = "2024-07"
	}
	if cfg.Webhook.OutboundTimeout == 0 {
		cfg.Webhook.OutboundTimeout = 10 * time.Second
	}
	if cfg.Webhook.RateLimit == 0 {
		cfg.Webhook.RateLimit = 5
	}
	if cfg.Webhook.RateBurst == 0 {
		cfg.Webhook.RateBurst = 10
	}
	if cfg.Scheduler.SyncInterval == 0 {
		cfg.Scheduler.SyncInterval = time.Hour
	}
	if cfg.Scheduler.AlertCheckInterval == 0 {
		cfg.Scheduler.AlertCheckInterval = 15 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "invsync"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Sync.PacingDelay < 0 {
		return fmt.Errorf("sync.pacing_delay cannot be negative")
	}
	if c.Platform.RequestsPerSecond < 0 {
		return fmt.Errorf("platform.requests_per_second cannot be negative")
	}
	if c.Alert.RenotifyAfter < 0 {
		return fmt.Errorf("alert.renotify_after cannot be negative")
	}

	switch c.Broadcast.Driver {
	case "log":
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("broadcast.driver=redis requires redis.host")
		}
	case "kafka":
		if len(c.Broadcast.KafkaBrokers) == 0 {
			return fmt.Errorf("broadcast.driver=kafka requires broadcast.kafka_brokers")
		}
	default:
		return fmt.Errorf("unknown broadcast.driver %q", c.Broadcast.Driver)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if len(c.Webhook.Secret) < 16 {
			return fmt.Errorf("webhook.secret must be at least 16 characters in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Enabled reports whether a Redis host is configured
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}
