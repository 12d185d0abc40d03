// Package config handles loading and validating the family-bell configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the family-bell daemon.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Speech    SpeechConfig     `mapstructure:"speech"`
	TTS       TTSConfig        `mapstructure:"tts"`
	Scheduler SchedulerConfig  `mapstructure:"scheduler"`
	Speakers  []SpeakerConfig  `mapstructure:"speakers"`
	Providers []ProviderConfig `mapstructure:"providers"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the listening ports and the inbound API credential.
type ServerConfig struct {
	APIPort    int    `mapstructure:"api_port"`
	APIToken   string `mapstructure:"api_token"` // empty disables auth
	HealthPort int    `mapstructure:"health_port"`
	GRPCPort   int    `mapstructure:"grpc_port"`
}

// StorageConfig locates the bell database.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// SpeechConfig points at the downstream service that performs the actual
// synthesis and playback. DryRun logs announcements instead of sending them.
type SpeechConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
	DryRun   bool   `mapstructure:"dry_run"`
}

// TTSConfig is the administrator-configured global default voice.
type TTSConfig struct {
	Provider string `mapstructure:"provider"`
	Voice    string `mapstructure:"voice"`
	Language string `mapstructure:"language"` // ISO-639-1 code (e.g., "en", "fr")
}

// SchedulerConfig tunes the firing loop.
type SchedulerConfig struct {
	TickInterval string `mapstructure:"tick_interval"` // Go duration; must stay under a minute
}

// SpeakerConfig declares a playback-capable device households can target.
type SpeakerConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// ProviderConfig declares a TTS engine and its voice inventory.
type ProviderConfig struct {
	ID        string              `mapstructure:"id"`
	Name      string              `mapstructure:"name"`
	Languages []string            `mapstructure:"languages"`
	Voices    map[string][]string `mapstructure:"voices"` // ISO-639-1 language code -> voice names
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./family-bell.yaml, ./configs/family-bell.yaml,
// /etc/family-bell/family-bell.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.api_port", 8090)
	v.SetDefault("server.health_port", 8091)
	v.SetDefault("server.grpc_port", 50052)
	v.SetDefault("storage.path", "family-bell.db")
	v.SetDefault("speech.endpoint", "http://localhost:8123/api")
	v.SetDefault("speech.dry_run", false)
	v.SetDefault("tts.language", "en")
	v.SetDefault("scheduler.tick_interval", "15s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("family-bell")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/family-bell")
	}

	// Environment variables: FAMILYBELL_SERVER_API_PORT, FAMILYBELL_SPEECH_TOKEN, etc.
	v.SetEnvPrefix("FAMILYBELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${SPEECH_TOKEN}")
	cfg.Speech.Token = resolveEnvRef(cfg.Speech.Token)
	cfg.Server.APIToken = resolveEnvRef(cfg.Server.APIToken)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
