// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a file or environment value cannot be parsed.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DefaultPort            = "3000"
	DefaultBodyLimit int64 = 100 * 1024 // 100kb, same as the usual JSON parser default
	defaultConfigPath      = "configs/config.yaml"
)

// Config holds everything the API server needs at startup.
type Config struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	BodyLimit       int64

	EnableUserRoute bool

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	OpsAddr string

	LogLevel  string
	LogFormat string
}

// fileConfig mirrors the YAML layout. Pointers distinguish "unset" from zero values.
type fileConfig struct {
	Server struct {
		Port            string        `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		IdleTimeout     time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		RequestTimeout  time.Duration `yaml:"requestTimeout"`
		BodyLimit       int64         `yaml:"bodyLimit"`
	} `yaml:"server"`
	Routes struct {
		User *bool `yaml:"user"`
	} `yaml:"routes"`
	RateLimit struct {
		Enabled *bool   `yaml:"enabled"`
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
	} `yaml:"rateLimit"`
	Ops struct {
		Addr string `yaml:"addr"`
	} `yaml:"ops"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Port:             DefaultPort,
		ReadTimeout:      15 * time.Second,
		WriteTimeout:     15 * time.Second,
		IdleTimeout:      60 * time.Second,
		ShutdownTimeout:  15 * time.Second,
		RequestTimeout:   60 * time.Second,
		BodyLimit:        DefaultBodyLimit,
		RateLimitEnabled: false,
		RateLimitRPS:     30,
		RateLimitBurst:   60,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load builds the configuration from defaults, an optional YAML file, an optional
// .env file and finally the process environment. Later layers win.
//
// If configPath is empty, CONFIG_PATH is consulted and then configs/config.yaml;
// a missing default file is not an error, a missing explicit file is.
func Load(configPath string) (Config, error) {
	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Default(), fmt.Errorf("%w: .env: %v", ErrInvalidConfig, err)
	}

	cfg := Default()

	explicit := true
	if configPath == "" {
		configPath = strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	}
	if configPath == "" {
		configPath = defaultConfigPath
		explicit = false
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := mergeYAML(&cfg, data); err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, configPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("reading config file %s: %w", configPath, err)
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func mergeYAML(dst *Config, data []byte) error {
	var src fileConfig
	if err := yaml.Unmarshal(data, &src); err != nil {
		return err
	}
	if src.Server.Port != "" {
		dst.Port = src.Server.Port
	}
	if src.Server.ReadTimeout != 0 {
		dst.ReadTimeout = src.Server.ReadTimeout
	}
	if src.Server.WriteTimeout != 0 {
		dst.WriteTimeout = src.Server.WriteTimeout
	}
	if src.Server.IdleTimeout != 0 {
		dst.IdleTimeout = src.Server.IdleTimeout
	}
	if src.Server.ShutdownTimeout != 0 {
		dst.ShutdownTimeout = src.Server.ShutdownTimeout
	}
	if src.Server.RequestTimeout != 0 {
		dst.RequestTimeout = src.Server.RequestTimeout
	}
	if src.Server.BodyLimit != 0 {
		dst.BodyLimit = src.Server.BodyLimit
	}
	if src.Routes.User != nil {
		dst.EnableUserRoute = *src.Routes.User
	}
	if src.RateLimit.Enabled != nil {
		dst.RateLimitEnabled = *src.RateLimit.Enabled
	}
	if src.RateLimit.RPS != 0 {
		dst.RateLimitRPS = src.RateLimit.RPS
	}
	if src.RateLimit.Burst != 0 {
		dst.RateLimitBurst = src.RateLimit.Burst
	}
	if src.Ops.Addr != "" {
		dst.OpsAddr = src.Ops.Addr
	}
	if src.Log.Level != "" {
		dst.LogLevel = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.LogFormat = src.Log.Format
	}
	return nil
}

// ApplyEnvOverrides copies any set environment variables onto cfg.
func ApplyEnvOverrides(cfg *Config) error {
	if v := getEnv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getEnv("OPS_ADDR"); v != "" {
		cfg.OpsAddr = v
	}
	if v := getEnv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"READ_TIMEOUT", &cfg.ReadTimeout},
		{"WRITE_TIMEOUT", &cfg.WriteTimeout},
		{"IDLE_TIMEOUT", &cfg.IdleTimeout},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
		{"REQUEST_TIMEOUT", &cfg.RequestTimeout},
	}
	for _, d := range durations {
		v := getEnv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, d.key, v, err)
		}
		*d.dst = parsed
	}

	if v := getEnv("BODY_LIMIT"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: BODY_LIMIT=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.BodyLimit = parsed
	}
	if v := getEnv("RATE_LIMIT_RPS"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: RATE_LIMIT_RPS=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.RateLimitRPS = parsed
	}
	if v := getEnv("RATE_LIMIT_BURST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RATE_LIMIT_BURST=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.RateLimitBurst = parsed
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"ENABLE_USER_ROUTE", &cfg.EnableUserRoute},
		{"RATE_LIMIT_ENABLED", &cfg.RateLimitEnabled},
	}
	for _, b := range bools {
		v := getEnv(b.key)
		if v == "" {
			continue
		}
		parsed, ok := parseBool(v)
		if !ok {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, b.key, v)
		}
		*b.dst = parsed
	}
	return nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %q", ErrInvalidConfig, c.Port)
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("%w: body limit must be positive, got %d", ErrInvalidConfig, c.BodyLimit)
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("%w: rate limit needs positive rps and burst", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// Addr is the listen address for the application server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
