package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем.
// Промах кеша возвращается как apperrors.ErrNotFound.
type CacheRepository interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	// TTL возвращает оставшийся срок жизни ключа. Отрицательное значение: срока нет или ключа нет.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
