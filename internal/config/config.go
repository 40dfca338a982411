// Package config provides configuration loading, validation, and management
// for percentbot. It reads a YAML file, applies BOT_* environment overrides
// on top of built-in defaults, and validates the result.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrConfiguration wraps every error returned by LoadConfig.
var ErrConfiguration = errors.New("configuration error")

// Config holds the complete application configuration. It is loaded once at
// startup and passed explicitly to every component; nothing mutates it after
// LoadConfig returns.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Percent   PercentConfig   `mapstructure:"percent"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Commands  CommandsConfig  `mapstructure:"commands"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram API settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// PercentConfig holds the defaults seeded into the settings table and the
// fallback joke list.
type PercentConfig struct {
	DefaultTemplate string   `mapstructure:"default_template" validate:"required,contains={percentage}"`
	DefaultJokes    []string `mapstructure:"default_jokes"    validate:"dive,required"`
}

// AdminConfig holds the admin allow-list and conversation settings.
type AdminConfig struct {
	UserIDs    []int64       `mapstructure:"user_ids"    validate:"required,min=1,unique,dive,gt=0"`
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"min=10s,max=24h"`
}

// RateLimitConfig throttles draws per user. PerUserPerMinute 0 disables it.
type RateLimitConfig struct {
	PerUserPerMinute int           `mapstructure:"per_user_per_minute" validate:"min=0"`
	Burst            int           `mapstructure:"burst"               validate:"min=1"`
	IdleTTL          time.Duration `mapstructure:"idle_ttl"            validate:"min=1m"`
}

// GeminiConfig configures the optional Gemini joke writer. An empty APIKey
// disables it.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	ModelName         string  `mapstructure:"model_name"          validate:"required_with=APIKey"`
	Temperature       float32 `mapstructure:"temperature"         validate:"min=0,max=2"`
	SystemInstruction string  `mapstructure:"system_instruction"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
	JokeCount         int     `mapstructure:"joke_count"          validate:"min=1,max=50"`
}

// Enabled reports whether a Gemini API key was configured.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// SchedulerConfig holds the scheduled task table keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// CommandsConfig holds command names (without the leading slash) and their
// descriptions shown in the Telegram command menu.
type CommandsConfig struct {
	Percent            string `mapstructure:"percent"             validate:"required,alphanum"`
	Stats              string `mapstructure:"stats"               validate:"required,alphanum"`
	Admin              string `mapstructure:"admin"               validate:"required,alphanum"`
	Cancel             string `mapstructure:"cancel"              validate:"required,alphanum"`
	PercentDescription string `mapstructure:"percent_description" validate:"required"`
	StatsDescription   string `mapstructure:"stats_description"   validate:"required"`
	HelpDescription    string `mapstructure:"help_description"    validate:"required"`
}

// MessagesConfig holds every user-facing string.
type MessagesConfig struct {
	Welcome         string `mapstructure:"welcome"          validate:"required"`
	Help            string `mapstructure:"help"             validate:"required"`
	GeneralError    string `mapstructure:"general_error"    validate:"required"`
	Unauthorized    string `mapstructure:"unauthorized"     validate:"required"`
	RateLimited     string `mapstructure:"rate_limited"     validate:"required"`
	NewResultButton string `mapstructure:"new_result_button" validate:"required"`
	TryAgainButton  string `mapstructure:"try_again_button" validate:"required"`

	InlineTitleFmt    string `mapstructure:"inline_title_fmt"   validate:"required"`
	InlineDescription string `mapstructure:"inline_description" validate:"required"`

	StatsHeader  string `mapstructure:"stats_header"   validate:"required"`
	StatsLineFmt string `mapstructure:"stats_line_fmt" validate:"required"`
	StatsWeek    string `mapstructure:"stats_week"     validate:"required"`
	StatsMonth   string `mapstructure:"stats_month"    validate:"required"`
	StatsYear    string `mapstructure:"stats_year"     validate:"required"`
	StatsAllTime string `mapstructure:"stats_all_time" validate:"required"`
	StatsEmpty   string `mapstructure:"stats_empty"    validate:"required"`

	AdminPanel           string `mapstructure:"admin_panel"            validate:"required"`
	AdminEditButton      string `mapstructure:"admin_edit_button"      validate:"required"`
	AdminShowButton      string `mapstructure:"admin_show_button"      validate:"required"`
	AdminEditPrompt      string `mapstructure:"admin_edit_prompt"      validate:"required"`
	AdminTemplateSaved   string `mapstructure:"admin_template_saved"   validate:"required"`
	AdminInvalidTemplate string `mapstructure:"admin_invalid_template" validate:"required"`
	AdminCurrentFmt      string `mapstructure:"admin_current_fmt"      validate:"required"`
	AdminCancelled       string `mapstructure:"admin_cancelled"        validate:"required"`
	AdminNothingToCancel string `mapstructure:"admin_nothing_to_cancel" validate:"required"`
}

// LoadConfig reads configuration from the YAML file at path, applies BOT_*
// environment overrides (e.g. BOT_TELEGRAM_TOKEN) and validates the result.
// A missing file is not an error; defaults and environment are used instead.
func LoadConfig(path string) (*Config, error) {
	startTime := time.Now()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("%w: failed to read config file %s: %w", ErrConfiguration, path, err)
			}
			slog.Debug("configuration file loaded", "path", path)
		} else if os.IsNotExist(err) {
			slog.Info("configuration file not found, using defaults and environment", "path", path)
		} else {
			return nil, fmt.Errorf("%w: failed to stat config file %s: %w", ErrConfiguration, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	slog.Info("configuration loaded successfully",
		"log_level", cfg.Logger.Level,
		"db_path", cfg.Database.Path,
		"admins", len(cfg.Admin.UserIDs),
		"gemini_enabled", cfg.Gemini.Enabled(),
		"duration_ms", time.Since(startTime).Milliseconds())

	return cfg, nil
}
