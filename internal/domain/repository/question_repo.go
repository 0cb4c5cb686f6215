package repository

import (
	"context"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	// CreateBatch сохраняет вопросы и увеличивает question_count темы атомарно
	CreateBatch(ctx context.Context, topicID uint, questions []entity.Question) error
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	GetByTopicID(ctx context.Context, topicID uint) ([]entity.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]entity.Question, error)
	// GetRandomByTopic возвращает до limit случайных вопросов темы
	GetRandomByTopic(ctx context.Context, topicID uint, limit int) ([]entity.Question, error)
	// Delete удаляет вопрос темы и уменьшает question_count атомарно
	Delete(ctx context.Context, topicID, id uint) error
	Count(ctx context.Context) (int64, error)
}
