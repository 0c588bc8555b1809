package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process configuration. Values come from an optional config
// file and are overridden by environment variables (app.port -> APP_PORT).
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Asynq    AsynqConfig    `mapstructure:"asynq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
}

type AppConfig struct {
	Env            string        `mapstructure:"env"` // development, production
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Development reports whether diagnostic detail may be exposed to clients.
func (a AppConfig) Development() bool {
	return strings.EqualFold(a.Env, "development")
}

// Addr is the gin listen address.
func (a AppConfig) Addr() string { return fmt.Sprintf(":%d", a.Port) }

type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	MaxConns    int32  `mapstructure:"max_conns"`
	ApplySchema bool   `mapstructure:"apply_schema"`
}

type RedisConfig struct {
	URL            string        `mapstructure:"url"`
	MembershipTTL  time.Duration `mapstructure:"membership_ttl"`
	RealtimeBridge bool          `mapstructure:"realtime_bridge"`
}

type AsynqConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	Queues      string `mapstructure:"queues"` // "chat=6,default=1"
	MaxRetry    int    `mapstructure:"max_retry"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Enabled reports whether message events should be streamed to Kafka.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	ChannelTokenTTL time.Duration `mapstructure:"channel_token_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

type RealtimeConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.request_timeout", 3*time.Second)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.apply_schema", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.membership_ttl", 10*time.Minute)
	v.SetDefault("redis.realtime_bridge", true)
	v.SetDefault("asynq.concurrency", 10)
	v.SetDefault("asynq.queues", "chat=6,default=1")
	v.SetDefault("asynq.max_retry", 5)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "message.sent")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.channel_token_ttl", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("realtime.rate_per_second", 10.0)
	v.SetDefault("realtime.burst", 20)
}

// Load reads configuration from path (when non-empty) and the environment.
// The legacy DB_URL and REDIS_URL variables are honored.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "DATABASE_URL", "DB_URL")
	_ = v.BindEnv("redis.url", "REDIS_URL")
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	// Env lists arrive as one comma separated string.
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = splitCSV(cfg.Kafka.Brokers[0])
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return errors.New("config: database.url (DB_URL) is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret (JWT_SECRET) is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("config: invalid app.port %d", c.App.Port)
	}
	return nil
}

func splitCSV(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
