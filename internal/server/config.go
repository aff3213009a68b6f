package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Tyrowin/webhooker/internal/security"
)

// EnvPrefix prefixes every configuration variable.
const EnvPrefix = "WEBHOOKER"

// Config holds the server configuration settings.
type Config struct {
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	Port int    `envconfig:"PORT" default:"8080"`

	DatabaseURL       string        `envconfig:"DATABASE_URL" default:"memory://"`
	Salt              string        `envconfig:"SALT" default:"webhooker"`
	TokenSecret       string        `envconfig:"TOKEN_SECRET"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"30m"`
	BootstrapPassword string        `envconfig:"BOOTSTRAP_PASSWORD"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	StaticDir      string   `envconfig:"STATIC_DIR"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPRateLimit int `envconfig:"HTTP_RATE_LIMIT" default:"120"`

	HubSendBuffer   int           `envconfig:"HUB_SEND_BUFFER" default:"256"`
	HubPingInterval time.Duration `envconfig:"HUB_PING_INTERVAL" default:"0s"`
	HubWriteTimeout time.Duration `envconfig:"HUB_WRITE_TIMEOUT" default:"0s"`

	HashTime      uint32 `envconfig:"HASH_TIME" default:"1"`
	HashMemoryKiB uint32 `envconfig:"HASH_MEMORY_KIB" default:"65536"`
	HashThreads   uint8  `envconfig:"HASH_THREADS" default:"4"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// NewConfig creates a Config populated with default values for all settings.
func NewConfig() *Config {
	params := security.DefaultHashParams()
	return &Config{
		Host:            "127.0.0.1",
		Port:            8080,
		DatabaseURL:     "memory://",
		Salt:            "webhooker",
		TokenTTL:        30 * time.Minute,
		LogFormat:       "text",
		LogLevel:        "info",
		HTTPRateLimit:   120,
		HubSendBuffer:   256,
		HashTime:        params.Time,
		HashMemoryKiB:   params.MemoryKiB,
		HashThreads:     params.Threads,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfig reads WEBHOOKER_* environment variables and validates them.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Port < 1 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.Salt == "":
		return errors.New("salt must not be empty")
	case c.TokenTTL <= 0:
		return errors.New("token ttl must be positive")
	case c.TokenSecret != "" && c.TokenSecret == c.Salt:
		return errors.New("token secret must differ from the salt")
	case c.HTTPRateLimit < 0:
		return errors.New("http rate limit must not be negative")
	case c.HubSendBuffer <= 0:
		return errors.New("hub send buffer must be positive")
	case c.HubPingInterval < 0 || c.HubWriteTimeout < 0:
		return errors.New("hub timeouts must not be negative")
	case c.HashTime == 0 || c.HashMemoryKiB == 0 || c.HashThreads == 0:
		return errors.New("hash parameters must be positive")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HashParams returns the configured argon2id parameters.
func (c *Config) HashParams() security.HashParams {
	params := security.DefaultHashParams()
	params.Time = c.HashTime
	params.MemoryKiB = c.HashMemoryKiB
	params.Threads = c.HashThreads
	return params
}
