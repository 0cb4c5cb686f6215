package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/service"
)

// MockTopicService реализует TopicService
type MockTopicService struct {
	mock.Mock
}

func (m *MockTopicService) CreateTopic(ctx context.Context, name, description string) (*entity.Topic, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Topic), args.Error(1)
}

func (m *MockTopicService) GetTopic(ctx context.Context, id uint) (*entity.Topic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Topic), args.Error(1)
}

func (m *MockTopicService) ListTopics(ctx context.Context, search string, page, pageSize int) (*service.TopicPage, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TopicPage), args.Error(1)
}

func (m *MockTopicService) UpdateTopic(ctx context.Context, id uint, name, description string) (*entity.Topic, error) {
	args := m.Called(ctx, id, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Topic), args.Error(1)
}

func (m *MockTopicService) DeleteTopic(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTopicService) ListQuestions(ctx context.Context, topicID uint) ([]entity.Question, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockTopicService) AddQuestions(ctx context.Context, topicID uint, inputs []service.QuestionInput) ([]entity.Question, error) {
	args := m.Called(ctx, topicID, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockTopicService) DeleteQuestion(ctx context.Context, topicID, questionID uint) error {
	return m.Called(ctx, topicID, questionID).Error(0)
}

// MockQuizService реализует QuizService
type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) BuildQuiz(ctx context.Context, topicID uint, count int) (*service.Quiz, error) {
	args := m.Called(ctx, topicID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Quiz), args.Error(1)
}

func (m *MockQuizService) GradeSubmission(ctx context.Context, topicID uint, answers []service.Answer) (*service.QuizResult, error) {
	args := m.Called(ctx, topicID, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuizResult), args.Error(1)
}

// MockStats реализует StatsProvider
type MockStats struct {
	mock.Mock
}

func (m *MockStats) ContentStats(ctx context.Context) (*service.ContentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ContentStats), args.Error(1)
}
