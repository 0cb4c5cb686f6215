package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ValidationError перечисляет все отсутствующие или неверные ключи конфигурации
type ValidationError struct {
	Problems []string
	err      *multierror.Error
}

func (e *ValidationError) Error() string {
	return e.err.Error()
}

// Unwrap отдает отдельные ошибки для errors.Is/As
func (e *ValidationError) Unwrap() []error {
	return e.err.WrappedErrors()
}

// Validate проверяет конфигурацию целиком и возвращает все проблемы сразу.
// Сборщик приложения Validate не вызывает: недостающие настройки,
// которые не читает ни один маршрут, не мешают сборке.
func (c *Config) Validate() error {
	var result *multierror.Error
	var problems []string
	add := func(key, format string, args ...interface{}) {
		msg := key + ": " + fmt.Sprintf(format, args...)
		problems = append(problems, msg)
		result = multierror.Append(result, fmt.Errorf("%s", msg))
	}

	if c.Server.Port == "" {
		add("server.port", "is required")
	}

	switch strings.ToLower(c.Database.Driver) {
	case "postgres":
		if c.Database.URL == "" {
			if c.Database.Host == "" {
				add("database.host", "is required when database.url is empty")
			}
			if c.Database.User == "" {
				add("database.user", "is required when database.url is empty")
			}
			if c.Database.DBName == "" {
				add("database.dbname", "is required when database.url is empty")
			}
		}
	case "sqlite":
	default:
		add("database.driver", "unsupported value %q (postgres, sqlite)", c.Database.Driver)
	}

	switch c.Redis.Mode {
	case "", "single", "cluster":
	case "sentinel":
		if c.Redis.MasterName == "" {
			add("redis.master_name", "is required in sentinel mode")
		}
	default:
		add("redis.mode", "unsupported value %q", c.Redis.Mode)
	}

	if c.Auth.JWTSecret == "" {
		add("auth.jwt_secret", "is required for admin routes")
	} else if len(c.Auth.JWTSecret) < 16 {
		add("auth.jwt_secret", "must be at least 16 characters")
	}

	if c.Quiz.DefaultQuestionCount < 1 {
		add("quiz.default_question_count", "must be positive")
	}
	if c.Quiz.MaxQuestionCount < c.Quiz.DefaultQuestionCount {
		add("quiz.max_question_count", "must be >= quiz.default_question_count")
	}

	if result == nil {
		return nil
	}
	return &ValidationError{Problems: problems, err: result}
}
