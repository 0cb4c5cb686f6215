package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Metrics  MetricsConfig
	Quiz     QuizConfig
	Live     LiveConfig
	Log      LogConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	// Mode: режим gin ("debug", "release", "test")
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig содержит настройки подключения к БД
type DatabaseConfig struct {
	// Driver: "postgres" (по умолчанию) или "sqlite"
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	// LogLevel: уровень SQL-логов gorm ("silent", "error", "warn", "info")
	LogLevel string `mapstructure:"log_level"`

	// AutoMigrate: применять миграции при старте API-сервера
	AutoMigrate bool `mapstructure:"auto_migrate"`

	// MigrationsPath: каталог с SQL-миграциями. Пусто - встроенные миграции.
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // в миллисекундах
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // в миллисекундах
}

// Enabled сообщает, задан ли хотя бы один адрес Redis
func (r RedisConfig) Enabled() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// AuthConfig содержит настройки аутентификации администратора
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// CORSConfig содержит настройки CORS. Пустой AllowOrigins разрешает любой источник.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// MetricsConfig содержит настройки Prometheus-метрик
type MetricsConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Namespace        string `mapstructure:"namespace"`
	IncludeRuntime   bool   `mapstructure:"include_runtime"`
	StatsIntervalSec int    `mapstructure:"stats_interval_sec"`
}

// QuizConfig содержит параметры генерации и проверки викторин
type QuizConfig struct {
	DefaultQuestionCount int `mapstructure:"default_question_count"`
	MaxQuestionCount     int `mapstructure:"max_question_count"`
	CacheTTLSec          int `mapstructure:"cache_ttl_sec"`
	SubmitRateLimit      int `mapstructure:"submit_rate_limit"`
	SubmitRateWindowSec  int `mapstructure:"submit_rate_window_sec"`
}

// LiveConfig содержит настройки WebSocket-ленты изменений контента
type LiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Channel: канал Redis Pub/Sub для рассылки событий между экземплярами
	Channel string `mapstructure:"channel"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DSN формирует строку подключения. URL имеет приоритет над отдельными полями.
// Для sqlite без имени возвращает пустую строку: каждое подключение получит свою БД в памяти.
func (d *DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if strings.EqualFold(d.Driver, "sqlite") {
		return d.DBName
	}
	return d.PostgresConnectionString()
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// setDefaults задает значения по умолчанию
func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8000")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 15)
	vip.SetDefault("server.mode", "debug")

	vip.SetDefault("database.driver", "postgres")
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.log_level", "warn")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("auth.token_ttl_hours", 24)

	vip.SetDefault("metrics.enabled", true)
	vip.SetDefault("metrics.namespace", "quiz_api")
	vip.SetDefault("metrics.include_runtime", true)
	vip.SetDefault("metrics.stats_interval_sec", 60)

	vip.SetDefault("quiz.default_question_count", 10)
	vip.SetDefault("quiz.max_question_count", 50)
	vip.SetDefault("quiz.cache_ttl_sec", 300)
	vip.SetDefault("quiz.submit_rate_limit", 30)
	vip.SetDefault("quiz.submit_rate_window_sec", 60)

	vip.SetDefault("live.enabled", true)
	vip.SetDefault("live.channel", "quiz-api:content-events")

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "text")
}

// bindEnv привязывает переменные окружения ЯВНО, как ключ -> имя переменной
func bindEnv(vip *viper.Viper) {
	bindings := map[string]string{
		"server.port":          "SERVER_PORT",
		"server.read_timeout":  "SERVER_READ_TIMEOUT",
		"server.write_timeout": "SERVER_WRITE_TIMEOUT",
		"server.mode":          "GIN_MODE",

		"database.driver":          "DATABASE_DRIVER",
		"database.url":             "DATABASE_URL",
		"database.host":            "DATABASE_HOST",
		"database.port":            "DATABASE_PORT",
		"database.user":            "DATABASE_USER",
		"database.password":        "DATABASE_PASSWORD",
		"database.dbname":          "DATABASE_DBNAME",
		"database.sslmode":         "DATABASE_SSLMODE",
		"database.log_level":       "DATABASE_LOG_LEVEL",
		"database.auto_migrate":    "DATABASE_AUTO_MIGRATE",
		"database.migrations_path": "DATABASE_MIGRATIONS_PATH",

		"redis.mode":        "REDIS_MODE",
		"redis.addrs":       "REDIS_ADDRS",
		"redis.addr":        "REDIS_ADDR",
		"redis.password":    "REDIS_PASSWORD",
		"redis.db":          "REDIS_DB",
		"redis.master_name": "REDIS_MASTER_NAME",

		"auth.jwt_secret":      "JWT_SECRET",
		"auth.token_ttl_hours": "JWT_TOKEN_TTL_HOURS",

		"cors.allow_origins": "CORS_ALLOW_ORIGINS",

		"metrics.enabled":            "METRICS_ENABLED",
		"metrics.namespace":          "METRICS_NAMESPACE",
		"metrics.include_runtime":    "METRICS_INCLUDE_RUNTIME",
		"metrics.stats_interval_sec": "METRICS_STATS_INTERVAL_SEC",

		"quiz.default_question_count": "QUIZ_DEFAULT_QUESTION_COUNT",
		"quiz.max_question_count":     "QUIZ_MAX_QUESTION_COUNT",
		"quiz.cache_ttl_sec":          "QUIZ_CACHE_TTL_SEC",
		"quiz.submit_rate_limit":      "QUIZ_SUBMIT_RATE_LIMIT",
		"quiz.submit_rate_window_sec": "QUIZ_SUBMIT_RATE_WINDOW_SEC",

		"live.enabled": "LIVE_ENABLED",
		"live.channel": "LIVE_CHANNEL",

		"log.level":  "LOG_LEVEL",
		"log.format": "LOG_FORMAT",
	}
	for key, env := range bindings {
		_ = vip.BindEnv(key, env)
	}
}

// Load загружает конфигурацию из файла и переменных окружения.
// Обязательные параметры здесь НЕ проверяются: для этого есть Validate.
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Новый экземпляр Viper, чтобы избежать глобального состояния

	setDefaults(vip)
	bindEnv(vip)

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть, это не ошибка: есть BindEnv и умолчания
		if err := vip.ReadInConfig(); err != nil {
			if !isMissingConfig(err) {
				return nil, fmt.Errorf("failed to read config %q: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// REDIS_ADDRS / CORS_ALLOW_ORIGINS из окружения приходят одной строкой через запятую
	cfg.Redis.Addrs = splitList(cfg.Redis.Addrs)
	cfg.CORS.AllowOrigins = splitList(cfg.CORS.AllowOrigins)

	return &cfg, nil
}
