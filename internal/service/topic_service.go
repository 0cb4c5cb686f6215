package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
	ws "github.com/yourusername/quiz-api/internal/websocket"
)

// Ограничения контента
const (
	MaxTopicNameLength        = 100
	MaxTopicDescriptionLength = 500
	MinQuestionTextLength     = 3
	MaxQuestionTextLength     = 500
	MinQuestionOptions        = 2
	MaxQuestionOptions        = 6
	MaxQuestionsPerBatch      = 500

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QuestionInput - данные нового вопроса до сохранения
type QuestionInput struct {
	Text          string
	Options       []string
	CorrectOption int
	Explanation   string
	Difficulty    int
}

// TopicPage - страница списка тем
type TopicPage struct {
	Topics   []entity.Topic
	Total    int64
	Page     int
	PageSize int
}

// ContentNotifier рассылает события об изменении контента
type ContentNotifier interface {
	BroadcastJSON(v interface{}) error
}

// TopicService управляет темами и их вопросами
type TopicService struct {
	topicRepo    repository.TopicRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	notifier     ContentNotifier
	log          logrus.FieldLogger
}

// NewTopicService создает новый сервис тем
func NewTopicService(
	topicRepo repository.TopicRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	log logrus.FieldLogger,
) *TopicService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TopicService{
		topicRepo:    topicRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		log:          log.WithField("component", "topic_service"),
	}
}

// CreateTopic создает новую тему
func (s *TopicService) CreateTopic(ctx context.Context, name, description string) (*entity.Topic, error) {
	name, description, err := normalizeTopic(name, description)
	if err != nil {
		return nil, err
	}

	topic := &entity.Topic{Name: name, Description: description}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	s.log.WithFields(logrus.Fields{"topic_id": topic.ID, "name": topic.Name}).Info("Topic created")
	s.notify(ws.TOPIC_CREATED, topic.ID, 0, 0)
	return topic, nil
}

// GetTopic возвращает тему по ID
func (s *TopicService) GetTopic(ctx context.Context, id uint) (*entity.Topic, error) {
	return s.topicRepo.GetByID(ctx, id)
}

// ListTopics возвращает страницу тем. Некорректные page/pageSize приводятся к допустимым.
func (s *TopicService) ListTopics(ctx context.Context, search string, page, pageSize int) (*TopicPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	filters := repository.TopicFilters{Search: strings.TrimSpace(search)}
	topics, total, err := s.topicRepo.List(ctx, filters, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return &TopicPage{Topics: topics, Total: total, Page: page, PageSize: pageSize}, nil
}

// UpdateTopic меняет название и описание темы
func (s *TopicService) UpdateTopic(ctx context.Context, id uint, name, description string) (*entity.Topic, error) {
	name, description, err := normalizeTopic(name, description)
	if err != nil {
		return nil, err
	}

	if err := s.topicRepo.Update(ctx, &entity.Topic{ID: id, Name: name, Description: description}); err != nil {
		return nil, fmt.Errorf("failed to update topic %d: %w", id, err)
	}
	s.notify(ws.TOPIC_UPDATED, id, 0, 0)
	return s.topicRepo.GetByID(ctx, id)
}

// DeleteTopic удаляет тему вместе с вопросами
func (s *TopicService) DeleteTopic(ctx context.Context, id uint) error {
	if err := s.topicRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete topic %d: %w", id, err)
	}
	s.invalidateTopic(ctx, id)
	s.log.WithField("topic_id", id).Info("Topic deleted")
	s.notify(ws.TOPIC_DELETED, id, 0, 0)
	return nil
}

// ListQuestions возвращает все вопросы темы
func (s *TopicService) ListQuestions(ctx context.Context, topicID uint) ([]entity.Question, error) {
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, err
	}
	return s.questionRepo.GetByTopicID(ctx, topicID)
}

// AddQuestions проверяет и сохраняет пакет вопросов, затем увеличивает счетчик темы.
// Пакет принимается целиком или не принимается вовсе.
func (s *TopicService) AddQuestions(ctx context.Context, topicID uint, inputs []QuestionInput) ([]entity.Question, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no questions provided: %w", apperrors.ErrValidation)
	}
	if len(inputs) > MaxQuestionsPerBatch {
		return nil, fmt.Errorf("at most %d questions per batch: %w", MaxQuestionsPerBatch, apperrors.ErrValidation)
	}

	// Получаем тему, чтобы убедиться, что она существует
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, err
	}

	questions := make([]entity.Question, 0, len(inputs))
	for i, in := range inputs {
		q, err := buildQuestion(topicID, in)
		if err != nil {
			return nil, fmt.Errorf("question #%d: %w", i+1, err)
		}
		questions = append(questions, q)
	}

	if err := s.questionRepo.CreateBatch(ctx, topicID, questions); err != nil {
		return nil, fmt.Errorf("failed to save questions: %w", err)
	}

	s.invalidateTopic(ctx, topicID)
	s.log.WithFields(logrus.Fields{"topic_id": topicID, "count": len(questions)}).Info("Questions added")
	s.notify(ws.QUESTIONS_ADDED, topicID, 0, len(questions))
	return questions, nil
}

// DeleteQuestion удаляет вопрос темы. Вопрос другой темы считается не найденным.
func (s *TopicService) DeleteQuestion(ctx context.Context, topicID, questionID uint) error {
	if err := s.questionRepo.Delete(ctx, topicID, questionID); err != nil {
		return fmt.Errorf("failed to delete question %d: %w", questionID, err)
	}

	s.invalidateTopic(ctx, topicID)
	s.notify(ws.QUESTION_DELETED, topicID, questionID, 0)
	return nil
}

// SetNotifier подключает ленту изменений. nil отключает уведомления.
func (s *TopicService) SetNotifier(n ContentNotifier) {
	s.notifier = n
}

// notify отправляет событие ленты. Ошибка рассылки не фатальна.
func (s *TopicService) notify(eventType string, topicID, questionID uint, count int) {
	if s.notifier == nil {
		return
	}
	ev := ws.ContentEvent{
		Type:       eventType,
		TopicID:    topicID,
		QuestionID: questionID,
		Count:      count,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.notifier.BroadcastJSON(ev); err != nil {
		s.log.WithError(err).WithField("event", eventType).Warn("Failed to broadcast content event")
	}
}

// invalidateTopic сбрасывает закешированный набор вопросов темы. Ошибка кеша не фатальна.
func (s *TopicService) invalidateTopic(ctx context.Context, topicID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(ctx, topicQuestionsCacheKey(topicID)); err != nil {
		s.log.WithError(err).WithField("topic_id", topicID).Warn("Failed to invalidate topic cache")
	}
}

func normalizeTopic(name, description string) (string, string, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	switch {
	case name == "":
		return "", "", fmt.Errorf("topic name is required: %w", apperrors.ErrValidation)
	case utf8.RuneCountInString(name) > MaxTopicNameLength:
		return "", "", fmt.Errorf("topic name is longer than %d characters: %w", MaxTopicNameLength, apperrors.ErrValidation)
	case utf8.RuneCountInString(description) > MaxTopicDescriptionLength:
		return "", "", fmt.Errorf("topic description is longer than %d characters: %w", MaxTopicDescriptionLength, apperrors.ErrValidation)
	}
	return name, description, nil
}

func buildQuestion(topicID uint, in QuestionInput) (entity.Question, error) {
	text := strings.TrimSpace(in.Text)
	if n := utf8.RuneCountInString(text); n < MinQuestionTextLength || n > MaxQuestionTextLength {
		return entity.Question{}, fmt.Errorf("text must be %d..%d characters: %w", MinQuestionTextLength, MaxQuestionTextLength, apperrors.ErrValidation)
	}

	options := make(entity.StringArray, 0, len(in.Options))
	for _, opt := range in.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return entity.Question{}, fmt.Errorf("options must not be empty: %w", apperrors.ErrValidation)
		}
		options = append(options, opt)
	}
	if len(options) < MinQuestionOptions || len(options) > MaxQuestionOptions {
		return entity.Question{}, fmt.Errorf("need %d..%d options: %w", MinQuestionOptions, MaxQuestionOptions, apperrors.ErrValidation)
	}

	difficulty := in.Difficulty
	if difficulty == 0 {
		difficulty = entity.MinDifficulty
	}

	q := entity.Question{
		TopicID:       topicID,
		Text:          text,
		Options:       options,
		CorrectOption: in.CorrectOption,
		Explanation:   strings.TrimSpace(in.Explanation),
		Difficulty:    difficulty,
	}
	if !q.IsValidOption(q.CorrectOption) {
		return entity.Question{}, fmt.Errorf("invalid correct_option index %d: %w", in.CorrectOption, apperrors.ErrValidation)
	}
	if !q.HasValidDifficulty() {
		return entity.Question{}, fmt.Errorf("difficulty must be %d..%d: %w", entity.MinDifficulty, entity.MaxDifficulty, apperrors.ErrValidation)
	}
	return q, nil
}
