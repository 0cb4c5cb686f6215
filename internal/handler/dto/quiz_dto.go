package dto

import (
	"time"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/handler/helper"
	"github.com/yourusername/quiz-api/internal/service"
)

// TopicResponse представляет тему в формате для ответа клиенту
type TopicResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TopicListResponse - страница тем
type TopicListResponse struct {
	Topics   []TopicResponse `json:"topics"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// QuestionResponse представляет вопрос без правильного ответа
type QuestionResponse struct {
	ID         uint                    `json:"id"`
	TopicID    uint                    `json:"topic_id,omitempty"`
	Text       string                  `json:"text"`
	Options    []helper.QuestionOption `json:"options"`
	Difficulty int                     `json:"difficulty"`
}

// AdminQuestionResponse - вопрос для администратора, с правильным ответом
type AdminQuestionResponse struct {
	QuestionResponse
	CorrectOption int    `json:"correct_option"`
	Explanation   string `json:"explanation,omitempty"`
}

// QuizResponse - викторина, выданная пользователю
type QuizResponse struct {
	TopicID   uint               `json:"topic_id"`
	TopicName string             `json:"topic_name"`
	Questions []QuestionResponse `json:"questions"`
}

// NewTopicResponse создает DTO для темы
func NewTopicResponse(t *entity.Topic) TopicResponse {
	return TopicResponse{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		QuestionCount: t.QuestionCount,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// NewTopicListResponse создает DTO для страницы тем
func NewTopicListResponse(page *service.TopicPage) TopicListResponse {
	topics := make([]TopicResponse, 0, len(page.Topics))
	for i := range page.Topics {
		topics = append(topics, NewTopicResponse(&page.Topics[i]))
	}
	return TopicListResponse{Topics: topics, Total: page.Total, Page: page.Page, PageSize: page.PageSize}
}

// NewQuestionResponse создает публичный DTO вопроса.
// Скрытие CorrectOption обеспечивается самим набором полей.
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:         q.ID,
		TopicID:    q.TopicID,
		Text:       q.Text,
		Options:    helper.OptionObjects(q.Options),
		Difficulty: q.Difficulty,
	}
}

// NewQuestionListResponse создает публичные DTO для списка вопросов
func NewQuestionListResponse(questions []entity.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(questions))
	for i := range questions {
		out = append(out, NewQuestionResponse(&questions[i]))
	}
	return out
}

// NewAdminQuestionResponse создает DTO вопроса с правильным ответом
func NewAdminQuestionResponse(q *entity.Question) AdminQuestionResponse {
	return AdminQuestionResponse{
		QuestionResponse: NewQuestionResponse(q),
		CorrectOption:    q.CorrectOption,
		Explanation:      q.Explanation,
	}
}

// NewQuizResponse создает DTO для викторины
func NewQuizResponse(quiz *service.Quiz) QuizResponse {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, QuestionResponse{
			ID:         q.ID,
			Text:       q.Text,
			Options:    helper.OptionObjects(q.Options),
			Difficulty: q.Difficulty,
		})
	}
	return QuizResponse{TopicID: quiz.TopicID, TopicName: quiz.TopicName, Questions: questions}
}
