package service

import (
	"context"
	"fmt"

	"github.com/yourusername/quiz-api/internal/domain/repository"
)

// ContentStats - количество тем и вопросов
type ContentStats struct {
	Topics    int64 `json:"topics"`
	Questions int64 `json:"questions"`
}

// StatsService считает объем контента
type StatsService struct {
	topicRepo    repository.TopicRepository
	questionRepo repository.QuestionRepository
}

// NewStatsService создает сервис статистики
func NewStatsService(topicRepo repository.TopicRepository, questionRepo repository.QuestionRepository) *StatsService {
	return &StatsService{topicRepo: topicRepo, questionRepo: questionRepo}
}

// ContentStats возвращает текущие количества
func (s *StatsService) ContentStats(ctx context.Context) (*ContentStats, error) {
	topics, err := s.topicRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}
	questions, err := s.questionRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	return &ContentStats{Topics: topics, Questions: questions}, nil
}
