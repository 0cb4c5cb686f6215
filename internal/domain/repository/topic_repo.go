package repository

import (
	"context"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// TopicFilters определяет фильтры для поиска тем
type TopicFilters struct {
	Search string // Поиск по названию/описанию
}

// TopicRepository определяет методы для работы с темами
type TopicRepository interface {
	Create(ctx context.Context, topic *entity.Topic) error
	GetByID(ctx context.Context, id uint) (*entity.Topic, error)
	Update(ctx context.Context, topic *entity.Topic) error
	Delete(ctx context.Context, id uint) error
	// List возвращает страницу тем и общее количество, удовлетворяющее фильтрам
	List(ctx context.Context, filters TopicFilters, limit, offset int) ([]entity.Topic, int64, error)
	Count(ctx context.Context) (int64, error)
}
