// Пакет config — загрузка и валидация конфигурации PanelHub
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации PanelHub.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration
	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Пользователь БД
	DBUser string
	// Пароль пользователя БД
	DBPassword string
	// Режим SSL (disable, require, verify-full)
	DBSSLMode string

	// --- JWT ---

	// Общий секрет подписи HS256. Обязателен, без значения по умолчанию.
	JWTSecret string
	// Время жизни выдаваемых токенов (по умолчанию 1h)
	JWTTTL time.Duration
	// Допустимое отклонение времени при проверке токена (по умолчанию 30s)
	JWTLeeway time.Duration

	// --- Внешний API провижининга (Pterodactyl) ---

	// Базовый URL внешнего API (например, https://restapi.example.com/api/pterodactyl)
	PteroBaseURL string
	// Таймаут HTTP-клиента внешнего API (по умолчанию 30s)
	PteroTimeout time.Duration

	// --- Уведомления ---

	// URL webhook для уведомлений о созданных панелях.
	// Пустая строка — уведомления выключены.
	NotifyWebhookURL string
	// Таймаут отправки уведомления (по умолчанию 10s)
	NotifyTimeout time.Duration

	// --- Topologymetrics ---

	// Имя группы в метриках dephealth
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// PH_PORT — порт HTTP-сервера (по умолчанию 8050)
	cfg.Port, err = getEnvInt("PH_PORT", 8050)
	if err != nil {
		return nil, fmt.Errorf("PH_PORT: %w", err)
	}

	// PH_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("PH_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("PH_LOG_LEVEL: %w", err)
	}

	// PH_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("PH_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("PH_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.HTTPReadTimeout, err = getEnvDuration("PH_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PH_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("PH_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PH_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("PH_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PH_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("PH_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PH_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("PH_DB_HOST")
	if err != nil {
		return nil, err
	}
	cfg.DBPort, err = getEnvInt("PH_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("PH_DB_PORT: %w", err)
	}
	cfg.DBName = getEnvDefault("PH_DB_NAME", "panelhub")
	cfg.DBUser, err = getEnvRequired("PH_DB_USER")
	if err != nil {
		return nil, err
	}
	cfg.DBPassword, err = getEnvRequired("PH_DB_PASSWORD")
	if err != nil {
		return nil, err
	}
	cfg.DBSSLMode = getEnvDefault("PH_DB_SSL_MODE", "disable")

	// --- JWT ---

	// PH_JWT_SECRET — общий секрет HS256.
	// Обязателен: захардкоженный fallback-секрет недопустим.
	cfg.JWTSecret, err = getEnvRequired("PH_JWT_SECRET")
	if err != nil {
		return nil, err
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("PH_JWT_SECRET: секрет короче 32 символов")
	}

	cfg.JWTTTL, err = getEnvDuration("PH_JWT_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("PH_JWT_TTL: %w", err)
	}
	cfg.JWTLeeway, err = getEnvDuration("PH_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PH_JWT_LEEWAY: %w", err)
	}

	// --- Внешний API провижининга ---

	cfg.PteroBaseURL, err = getEnvRequired("PH_PTERO_BASE_URL")
	if err != nil {
		return nil, err
	}
	cfg.PteroBaseURL = strings.TrimRight(cfg.PteroBaseURL, "/")

	cfg.PteroTimeout, err = getEnvDuration("PH_PTERO_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PH_PTERO_TIMEOUT: %w", err)
	}

	// --- Уведомления ---

	// PH_NOTIFY_WEBHOOK_URL — опциональный webhook (пусто — выключено)
	cfg.NotifyWebhookURL = getEnvDefault("PH_NOTIFY_WEBHOOK_URL", "")
	cfg.NotifyTimeout, err = getEnvDuration("PH_NOTIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PH_NOTIFY_TIMEOUT: %w", err)
	}

	// --- Topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("PH_DEPHEALTH_GROUP", "panelhub")
	cfg.DephealthCheckInterval, err = getEnvDuration("PH_DEPHEALTH_CHECK_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PH_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает DSN подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL (для dephealth-лейблов).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
