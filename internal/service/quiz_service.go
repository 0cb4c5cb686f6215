package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// SubmissionRecorder принимает итог проверенной попытки (реализуется metrics.Metrics)
type SubmissionRecorder interface {
	RecordQuizSubmission(topicID uint, correct, total int)
}

// QuizSettings - параметры генерации викторин
type QuizSettings struct {
	DefaultQuestionCount int
	MaxQuestionCount     int
	// CacheTTL: время жизни набора вопросов темы в кеше. 0 - без кеша.
	CacheTTL time.Duration
}

// QuizQuestion - вопрос в викторине без правильного ответа
type QuizQuestion struct {
	ID         uint     `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Difficulty int      `json:"difficulty"`
}

// Quiz - сгенерированная викторина по теме
type Quiz struct {
	TopicID   uint           `json:"topic_id"`
	TopicName string         `json:"topic_name"`
	Questions []QuizQuestion `json:"questions"`
}

// Answer - ответ пользователя на один вопрос
type Answer struct {
	QuestionID     uint
	SelectedOption int
}

// AnswerResult - проверка одного ответа
type AnswerResult struct {
	QuestionID     uint   `json:"question_id"`
	SelectedOption int    `json:"selected_option"`
	CorrectOption  int    `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
	Explanation    string `json:"explanation,omitempty"`
}

// QuizResult - итог проверки попытки
type QuizResult struct {
	TopicID        uint           `json:"topic_id"`
	TotalQuestions int            `json:"total_questions"`
	CorrectAnswers int            `json:"correct_answers"`
	Score          int            `json:"score"` // процент верных ответов, 0..100
	Results        []AnswerResult `json:"results"`
}

// QuizService генерирует викторины и проверяет ответы
type QuizService struct {
	topicRepo    repository.TopicRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	recorder     SubmissionRecorder
	settings     QuizSettings
	log          logrus.FieldLogger
	shuffle      func(n int, swap func(i, j int))
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	topicRepo repository.TopicRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	recorder SubmissionRecorder,
	settings QuizSettings,
	log logrus.FieldLogger,
) *QuizService {
	if settings.DefaultQuestionCount <= 0 {
		settings.DefaultQuestionCount = 10
	}
	if settings.MaxQuestionCount < settings.DefaultQuestionCount {
		settings.MaxQuestionCount = settings.DefaultQuestionCount
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuizService{
		topicRepo:    topicRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		recorder:     recorder,
		settings:     settings,
		log:          log.WithField("component", "quiz_service"),
		shuffle:      rand.Shuffle,
	}
}

// topicQuestionsCacheKey - ключ кеша с набором вопросов темы
func topicQuestionsCacheKey(topicID uint) string {
	return fmt.Sprintf("topic:%d:questions", topicID)
}

// BuildQuiz возвращает до count случайных вопросов темы.
// count <= 0 означает значение по умолчанию, слишком большой count урезается до максимума.
func (s *QuizService) BuildQuiz(ctx context.Context, topicID uint, count int) (*Quiz, error) {
	if count <= 0 {
		count = s.settings.DefaultQuestionCount
	}
	if count > s.settings.MaxQuestionCount {
		count = s.settings.MaxQuestionCount
	}

	topic, err := s.topicRepo.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}

	var questions []QuizQuestion
	if s.settings.CacheTTL > 0 && s.cacheRepo != nil {
		pool, err := s.questionPool(ctx, topicID)
		if err != nil {
			return nil, err
		}
		s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		if len(pool) > count {
			pool = pool[:count]
		}
		questions = pool
	} else {
		random, err := s.questionRepo.GetRandomByTopic(ctx, topicID, count)
		if err != nil {
			return nil, fmt.Errorf("failed to pick questions: %w", err)
		}
		questions = toQuizQuestions(random)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("topic %d has no questions: %w", topicID, apperrors.ErrValidation)
	}

	return &Quiz{TopicID: topic.ID, TopicName: topic.Name, Questions: questions}, nil
}

// questionPool читает набор вопросов темы из кеша, при промахе - из БД с записью в кеш
func (s *QuizService) questionPool(ctx context.Context, topicID uint) ([]QuizQuestion, error) {
	key := topicQuestionsCacheKey(topicID)

	var cached []QuizQuestion
	err := s.cacheRepo.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.log.WithError(err).WithField("key", key).Warn("Cache read failed, falling back to database")
	}

	all, err := s.questionRepo.GetByTopicID(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	pool := toQuizQuestions(all)

	if len(pool) > 0 {
		if err := s.cacheRepo.SetJSON(ctx, key, pool, s.settings.CacheTTL); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("Cache write failed")
		}
	}
	return pool, nil
}

// GradeSubmission проверяет ответы по теме. Повторные ответы на один вопрос
// учитываются один раз (берется первый). Неизвестный вопрос или вопрос другой
// темы отклоняет всю попытку.
func (s *QuizService) GradeSubmission(ctx context.Context, topicID uint, answers []Answer) (*QuizResult, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("no answers provided: %w", apperrors.ErrValidation)
	}
	if len(answers) > s.settings.MaxQuestionCount {
		return nil, fmt.Errorf("at most %d answers per submission: %w", s.settings.MaxQuestionCount, apperrors.ErrValidation)
	}

	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, err
	}

	unique := make([]Answer, 0, len(answers))
	seen := make(map[uint]struct{}, len(answers))
	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		unique = append(unique, a)
		ids = append(ids, a.QuestionID)
	}

	questions, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	byID := make(map[uint]entity.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := &QuizResult{TopicID: topicID, Results: make([]AnswerResult, 0, len(unique))}
	for _, a := range unique {
		q, ok := byID[a.QuestionID]
		if !ok || q.TopicID != topicID {
			return nil, fmt.Errorf("question %d does not belong to topic %d: %w", a.QuestionID, topicID, apperrors.ErrValidation)
		}
		if !q.IsValidOption(a.SelectedOption) {
			return nil, fmt.Errorf("invalid option %d for question %d: %w", a.SelectedOption, a.QuestionID, apperrors.ErrValidation)
		}

		correct := q.IsCorrect(a.SelectedOption)
		if correct {
			result.CorrectAnswers++
		}
		result.Results = append(result.Results, AnswerResult{
			QuestionID:     q.ID,
			SelectedOption: a.SelectedOption,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      correct,
			Explanation:    q.Explanation,
		})
	}

	result.TotalQuestions = len(result.Results)
	result.Score = result.CorrectAnswers * 100 / result.TotalQuestions

	if s.recorder != nil {
		s.recorder.RecordQuizSubmission(topicID, result.CorrectAnswers, result.TotalQuestions)
	}
	s.log.WithFields(logrus.Fields{
		"topic_id": topicID,
		"correct":  result.CorrectAnswers,
		"total":    result.TotalQuestions,
	}).Debug("Submission graded")
	return result, nil
}

func toQuizQuestions(questions []entity.Question) []QuizQuestion {
	out := make([]QuizQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, QuizQuestion{
			ID:         q.ID,
			Text:       q.Text,
			Options:    []string(q.Options),
			Difficulty: q.Difficulty,
		})
	}
	return out
}
