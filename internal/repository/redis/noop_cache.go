package redis

import (
	"context"
	"time"

	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// NoOpCache используется, когда Redis не настроен: каждое чтение - промах
type NoOpCache struct{}

func (NoOpCache) SetJSON(context.Context, string, interface{}, time.Duration) error { return nil }

func (NoOpCache) GetJSON(context.Context, string, interface{}) error { return apperrors.ErrNotFound }

func (NoOpCache) Delete(context.Context, ...string) error { return nil }

func (NoOpCache) Increment(context.Context, string) (int64, error) { return 0, nil }

func (NoOpCache) Expire(context.Context, string, time.Duration) error { return nil }

func (NoOpCache) TTL(context.Context, string) (time.Duration, error) { return 0, nil }
