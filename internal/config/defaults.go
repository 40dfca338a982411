package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/edgard/percentbot/internal/percent"
)

// Default values for configuration.
const (
	DefaultLogLevel = "info"
	DefaultDBPath   = "storage.db"

	DefaultTemplate   = "🌈 Ты гей на {percentage}%!\n{joke}"
	DefaultSessionTTL = 5 * time.Minute

	DefaultRateLimitPerMinute = 20
	DefaultRateLimitBurst     = 5
	DefaultRateLimitIdleTTL   = 30 * time.Minute

	DefaultGeminiModel       = "gemini-2.0-flash"
	DefaultGeminiTemperature = 1.2
	DefaultGeminiMaxRetries  = 2
	DefaultGeminiRetryDelay  = 3
	DefaultGeminiJokeCount   = 10
)

// Task names known to the scheduler.
const (
	TaskSQLMaintenance      = "sql_maintenance"
	TaskAdminSessionCleanup = "admin_session_cleanup"
	TaskJokeRefresh         = "joke_refresh"
	TaskRateLimitCleanup    = "rate_limit_cleanup"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	// Registered so that BOT_TELEGRAM_TOKEN is picked up by AutomaticEnv.
	v.SetDefault("telegram.token", "")

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("percent.default_template", DefaultTemplate)
	v.SetDefault("percent.default_jokes", percent.BuiltinJokes)

	v.SetDefault("admin.user_ids", []int64{})
	v.SetDefault("admin.session_ttl", DefaultSessionTTL)

	v.SetDefault("rate_limit.per_user_per_minute", DefaultRateLimitPerMinute)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.idle_ttl", DefaultRateLimitIdleTTL)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", DefaultGeminiModel)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.system_instruction", "")
	v.SetDefault("gemini.max_retries", DefaultGeminiMaxRetries)
	v.SetDefault("gemini.retry_delay_seconds", DefaultGeminiRetryDelay)
	v.SetDefault("gemini.joke_count", DefaultGeminiJokeCount)

	// Cron expressions include the seconds field.
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskSQLMaintenance+".schedule", "0 0 3 * * *")
	v.SetDefault("scheduler.tasks."+TaskAdminSessionCleanup+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskAdminSessionCleanup+".schedule", "0 * * * * *")
	v.SetDefault("scheduler.tasks."+TaskRateLimitCleanup+".enabled", true)
	v.SetDefault("scheduler.tasks."+TaskRateLimitCleanup+".schedule", "0 */10 * * * *")
	v.SetDefault("scheduler.tasks."+TaskJokeRefresh+".enabled", false)
	v.SetDefault("scheduler.tasks."+TaskJokeRefresh+".schedule", "0 0 4 * * 1")

	v.SetDefault("commands.percent", "percent")
	v.SetDefault("commands.stats", "stats")
	v.SetDefault("commands.admin", "admin")
	v.SetDefault("commands.cancel", "cancel")
	v.SetDefault("commands.percent_description", "Узнать свой процент")
	v.SetDefault("commands.stats_description", "Статистика сообщества")
	v.SetDefault("commands.help_description", "Как пользоваться ботом")

	v.SetDefault("messages.welcome", "🎲 Бот для определения гей-процента!\nИспользуйте @botname в любом чате!")
	v.SetDefault("messages.help", "Просто начните ввод с @botname в любом чате!\n\n/percent — узнать свой процент\n/stats — статистика сообщества")
	v.SetDefault("messages.general_error", "❌ Произошла ошибка. Попробуйте позже.")
	v.SetDefault("messages.unauthorized", "🚫 Доступ запрещен!")
	v.SetDefault("messages.rate_limited", "⏳ Слишком часто! Попробуйте чуть позже.")
	v.SetDefault("messages.new_result_button", "✨ Новый результат")
	v.SetDefault("messages.try_again_button", "🔁 Ещё раз")

	v.SetDefault("messages.inline_title_fmt", "🎰 Результат: %d%%")
	v.SetDefault("messages.inline_description", "Нажмите чтобы отправить в чат")

	v.SetDefault("messages.stats_header", "📊 Средний процент сообщества:")
	v.SetDefault("messages.stats_line_fmt", "%s: %.1f%% (замеров: %d)")
	v.SetDefault("messages.stats_week", "7 дней")
	v.SetDefault("messages.stats_month", "30 дней")
	v.SetDefault("messages.stats_year", "365 дней")
	v.SetDefault("messages.stats_all_time", "Всё время")
	v.SetDefault("messages.stats_empty", "📊 Пока нет ни одного замера.")

	v.SetDefault("messages.admin_panel", "🔧 Админ-панель:")
	v.SetDefault("messages.admin_edit_button", "✏️ Изменить текст")
	v.SetDefault("messages.admin_show_button", "📄 Текущий текст")
	v.SetDefault("messages.admin_edit_prompt", "📝 Введите новый текст (используйте {percentage} и {joke}):")
	v.SetDefault("messages.admin_template_saved", "✅ Текст успешно обновлен!")
	v.SetDefault("messages.admin_invalid_template", "❌ Текст должен содержать {percentage}. Изменения не сохранены.")
	v.SetDefault("messages.admin_current_fmt", "📄 Текущий текст:\n\n%s")
	v.SetDefault("messages.admin_cancelled", "↩️ Редактирование отменено.")
	v.SetDefault("messages.admin_nothing_to_cancel", "Нечего отменять.")
}
