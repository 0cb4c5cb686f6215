package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

var (
	_ repository.CacheRepository = (*CacheRepo)(nil)
	_ repository.CacheRepository = NoOpCache{}
)

func TestNewCacheRepo_NilClient(t *testing.T) {
	repo, err := NewCacheRepo(nil, "quiz:")
	assert.Nil(t, repo)
	assert.Error(t, err)
}

func TestNoOpCache_AlwaysMisses(t *testing.T) {
	ctx := context.Background()
	cache := NoOpCache{}

	assert.NoError(t, cache.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	assert.ErrorIs(t, cache.GetJSON(ctx, "k", &dest), apperrors.ErrNotFound)
	assert.Nil(t, dest)
}
