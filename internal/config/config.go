package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/factory"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/bot"
	redisstorage "github.com/mcoot/seabattle/internal/storage/redis"
	"github.com/mcoot/seabattle/internal/ws"
)

// Config is the server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Bot       BotConfig       `yaml:"bot"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects the player store
type StorageConfig struct {
	Type     string `yaml:"type"`
	RedisURL string `yaml:"redis_url"`
}

// BotConfig holds solo play settings
type BotConfig struct {
	TurnInterval time.Duration `yaml:"turn_interval"`
	Strategy     string        `yaml:"strategy"`
}

// WebSocketConfig holds transport settings
type WebSocketConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxMessageSize int64    `yaml:"max_message_size"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	server := api.DefaultServerConfig()
	botCfg := bot.DefaultConfig()
	wsCfg := ws.DefaultConfig()

	return Config{
		Server: ServerConfig{
			Host:            server.Host,
			Port:            server.Port,
			ReadTimeout:     server.ReadTimeout,
			WriteTimeout:    server.WriteTimeout,
			ShutdownTimeout: server.ShutdownTimeout,
		},
		Storage: StorageConfig{
			Type: factory.StorageTypeMemory,
		},
		Bot: BotConfig{
			TurnInterval: botCfg.TurnInterval,
			Strategy:     botCfg.Strategy,
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: wsCfg.MaxMessageSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE if set, then environment overrides
func Load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads the configuration from the process environment
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := getenv("BOT_TURN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BOT_TURN_INTERVAL %q: %w", v, err)
		}
		c.Bot.TurnInterval = d
	}
	if v := getenv("BOT_STRATEGY"); v != "" {
		c.Bot.Strategy = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.WebSocket.AllowedOrigins = splitList(v)
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	switch c.Storage.Type {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	if c.Bot.TurnInterval <= 0 {
		return errors.New("bot turn interval must be positive")
	}
	if !slices.Contains(model.ValidBotStrategies(), c.Bot.Strategy) {
		return fmt.Errorf("unknown bot strategy %q", c.Bot.Strategy)
	}
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Logger builds the root logger writing to w
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLogLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Factory returns the application wiring configuration
func (c Config) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		BotConfig: bot.Config{
			TurnInterval: c.Bot.TurnInterval,
			Strategy:     c.Bot.Strategy,
		},
		WebSocketConfig: ws.Config{
			AllowedOrigins: c.WebSocket.AllowedOrigins,
			MaxMessageSize: c.WebSocket.MaxMessageSize,
		},
		Logger:      logger,
		StorageType: c.Storage.Type,
	}
	if c.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.Storage.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// APIServer returns the HTTP server configuration
func (c Config) APIServer() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
