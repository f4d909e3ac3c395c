// Пакет config — загрузка и валидация конфигурации Verify Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Verify Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Базовый публичный URL сайта — встраивается в QR-изображения
	// (QR ведёт на {PublicBaseURL}/{code})
	PublicBaseURL string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Объектное хранилище (S3-совместимое) ---

	// Имя бакета для загружаемых файлов (изображения, COA)
	S3Bucket string
	// Регион S3
	S3Region string
	// Кастомный endpoint (MinIO и т.п.), пусто — AWS
	S3Endpoint string
	// Ключи доступа (опционально, иначе стандартная цепочка credentials)
	S3AccessKey string
	S3SecretKey string
	// Path-style адресация (нужна для MinIO)
	S3PathStyle bool
	// Базовый URL для публичных ссылок на объекты.
	// Если пуст — вычисляется из endpoint/bucket.
	S3PublicURL string

	// --- Сессии Admin API ---

	// Секрет для шифрования session cookie (base64 или произвольная строка).
	// Пусто — случайный ключ, сессии не переживают рестарт.
	SessionSecret string
	// Время жизни сессии
	SessionTTL time.Duration

	// --- Начальный администратор ---

	// Email и пароль администратора, создаваемого при первом запуске
	// (только если таблица admin_users пуста)
	BootstrapAdminEmail    string
	BootstrapAdminPassword string

	// --- Мониторинг зависимостей ---

	// Группа topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// NV_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("NV_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("NV_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("NV_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// NV_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("NV_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("NV_LOG_LEVEL: %w", err)
	}

	// NV_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("NV_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("NV_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// NV_PUBLIC_BASE_URL — обязательный, публичный адрес сайта
	cfg.PublicBaseURL, err = getEnvRequired("NV_PUBLIC_BASE_URL")
	if err != nil {
		return nil, err
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if u, parseErr := url.Parse(cfg.PublicBaseURL); parseErr != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("NV_PUBLIC_BASE_URL: некорректный URL %q", cfg.PublicBaseURL)
	}

	// --- PostgreSQL ---

	// NV_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("NV_DB_HOST")
	if err != nil {
		return nil, err
	}

	// NV_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("NV_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("NV_DB_PORT: %w", err)
	}

	// NV_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("NV_DB_NAME")
	if err != nil {
		return nil, err
	}

	// NV_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("NV_DB_USER")
	if err != nil {
		return nil, err
	}

	// NV_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("NV_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// NV_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("NV_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("NV_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Объектное хранилище ---

	// NV_S3_BUCKET — обязательный
	cfg.S3Bucket, err = getEnvRequired("NV_S3_BUCKET")
	if err != nil {
		return nil, err
	}

	// NV_S3_REGION — регион (по умолчанию us-east-1)
	cfg.S3Region = getEnvDefault("NV_S3_REGION", "us-east-1")

	// NV_S3_ENDPOINT — кастомный endpoint (опционально)
	cfg.S3Endpoint = strings.TrimRight(getEnvDefault("NV_S3_ENDPOINT", ""), "/")

	// NV_S3_ACCESS_KEY / NV_S3_SECRET_KEY — статические ключи (опционально)
	cfg.S3AccessKey = getEnvDefault("NV_S3_ACCESS_KEY", "")
	cfg.S3SecretKey = getEnvDefault("NV_S3_SECRET_KEY", "")
	if (cfg.S3AccessKey == "") != (cfg.S3SecretKey == "") {
		return nil, fmt.Errorf("NV_S3_ACCESS_KEY и NV_S3_SECRET_KEY должны задаваться вместе")
	}

	// NV_S3_PATH_STYLE — path-style адресация (по умолчанию false)
	cfg.S3PathStyle, err = getEnvBool("NV_S3_PATH_STYLE", false)
	if err != nil {
		return nil, fmt.Errorf("NV_S3_PATH_STYLE: %w", err)
	}

	// NV_S3_PUBLIC_URL — базовый URL публичных ссылок (опционально)
	cfg.S3PublicURL = strings.TrimRight(getEnvDefault("NV_S3_PUBLIC_URL", ""), "/")

	// --- Сессии ---

	// NV_SESSION_SECRET — секрет шифрования сессий (опционально)
	cfg.SessionSecret = getEnvDefault("NV_SESSION_SECRET", "")

	// NV_SESSION_TTL — время жизни сессии (по умолчанию 24h)
	cfg.SessionTTL, err = getEnvDuration("NV_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("NV_SESSION_TTL: %w", err)
	}

	// --- Начальный администратор ---

	// NV_ADMIN_EMAIL / NV_ADMIN_PASSWORD — создаются при первом запуске
	cfg.BootstrapAdminEmail = getEnvDefault("NV_ADMIN_EMAIL", "")
	cfg.BootstrapAdminPassword = getEnvDefault("NV_ADMIN_PASSWORD", "")
	if (cfg.BootstrapAdminEmail == "") != (cfg.BootstrapAdminPassword == "") {
		return nil, fmt.Errorf("NV_ADMIN_EMAIL и NV_ADMIN_PASSWORD должны задаваться вместе")
	}

	// --- Мониторинг зависимостей ---

	// NV_DEPHEALTH_GROUP — группа topologymetrics (по умолчанию nadova)
	cfg.DephealthGroup = getEnvDefault("NV_DEPHEALTH_GROUP", "nadova")

	// NV_DEPHEALTH_CHECK_INTERVAL — интервал проверки (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("NV_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("NV_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// NV_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("NV_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("NV_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL
// (для topologymetrics и golang-migrate).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword),
		c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SecureCookies сообщает, нужно ли ставить Secure flag на session cookie.
// Определяется по схеме публичного URL.
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.PublicBaseURL, "https")
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

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
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
