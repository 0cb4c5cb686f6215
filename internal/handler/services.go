package handler

import (
	"context"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/service"
)

// TopicService - операции над темами, нужные обработчикам
type TopicService interface {
	CreateTopic(ctx context.Context, name, description string) (*entity.Topic, error)
	GetTopic(ctx context.Context, id uint) (*entity.Topic, error)
	ListTopics(ctx context.Context, search string, page, pageSize int) (*service.TopicPage, error)
	UpdateTopic(ctx context.Context, id uint, name, description string) (*entity.Topic, error)
	DeleteTopic(ctx context.Context, id uint) error
	ListQuestions(ctx context.Context, topicID uint) ([]entity.Question, error)
	AddQuestions(ctx context.Context, topicID uint, inputs []service.QuestionInput) ([]entity.Question, error)
	DeleteQuestion(ctx context.Context, topicID, questionID uint) error
}

// QuizService - генерация и проверка викторин
type QuizService interface {
	BuildQuiz(ctx context.Context, topicID uint, count int) (*service.Quiz, error)
	GradeSubmission(ctx context.Context, topicID uint, answers []service.Answer) (*service.QuizResult, error)
}

// StatsProvider отдает объем контента
type StatsProvider interface {
	ContentStats(ctx context.Context) (*service.ContentStats, error)
}

var (
	_ TopicService  = (*service.TopicService)(nil)
	_ QuizService   = (*service.QuizService)(nil)
	_ StatsProvider = (*service.StatsService)(nil)
)
