package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/handler/dto"
	"github.com/yourusername/quiz-api/internal/service"
)

// Ключи контекста для числовых параметров пути
const (
	ContextKeyTopicID    = "topicID"
	ContextKeyQuestionID = "questionID"
)

// TopicHandler обрабатывает запросы, связанные с темами и их вопросами
type TopicHandler struct {
	topicService TopicService
	log          logrus.FieldLogger
}

// NewTopicHandler создает новый обработчик тем
func NewTopicHandler(topicService TopicService, log logrus.FieldLogger) *TopicHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TopicHandler{topicService: topicService, log: log.WithField("component", "topic_handler")}
}

// ListTopicsQuery - параметры списка тем
type ListTopicsQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
}

// TopicRequest - тело создания и обновления темы
type TopicRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// QuestionRequest - один вопрос в пакете
type QuestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required"`
	CorrectOption *int     `json:"correct_option" binding:"required"`
	Explanation   string   `json:"explanation"`
	Difficulty    int      `json:"difficulty"`
}

// AddQuestionsRequest - пакет вопросов для темы
type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// ListTopics GET /api/topics
func (h *TopicHandler) ListTopics(c *gin.Context) {
	var q ListTopicsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.topicService.ListTopics(c.Request.Context(), q.Search, q.Page, q.PageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTopicListResponse(page))
}

// GetTopic GET /api/topics/:id
func (h *TopicHandler) GetTopic(c *gin.Context) {
	topic, err := h.topicService.GetTopic(c.Request.Context(), c.GetUint(ContextKeyTopicID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTopicResponse(topic))
}

// CreateTopic POST /api/topics
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	topic, err := h.topicService.CreateTopic(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTopicResponse(topic))
}

// UpdateTopic PUT /api/topics/:id
func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	topic, err := h.topicService.UpdateTopic(c.Request.Context(), c.GetUint(ContextKeyTopicID), req.Name, req.Description)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTopicResponse(topic))
}

// DeleteTopic DELETE /api/topics/:id
func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	if err := h.topicService.DeleteTopic(c.Request.Context(), c.GetUint(ContextKeyTopicID)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListQuestions GET /api/topics/:id/questions (без правильных ответов)
func (h *TopicHandler) ListQuestions(c *gin.Context) {
	questions, err := h.topicService.ListQuestions(c.Request.Context(), c.GetUint(ContextKeyTopicID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": dto.NewQuestionListResponse(questions)})
}

// AddQuestions POST /api/topics/:id/questions
func (h *TopicHandler) AddQuestions(c *gin.Context) {
	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	inputs := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		inputs = append(inputs, service.QuestionInput{
			Text:          q.Text,
			Options:       q.Options,
			CorrectOption: *q.CorrectOption,
			Explanation:   q.Explanation,
			Difficulty:    q.Difficulty,
		})
	}

	h.saveQuestions(c, inputs)
}

// saveQuestions сохраняет пакет и отвечает 201 со списком для администратора
func (h *TopicHandler) saveQuestions(c *gin.Context, inputs []service.QuestionInput) {
	questions, err := h.topicService.AddQuestions(c.Request.Context(), c.GetUint(ContextKeyTopicID), inputs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]dto.AdminQuestionResponse, 0, len(questions))
	for i := range questions {
		out = append(out, dto.NewAdminQuestionResponse(&questions[i]))
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(out), "questions": out})
}

// DeleteQuestion DELETE /api/topics/:id/questions/:question_id
func (h *TopicHandler) DeleteQuestion(c *gin.Context) {
	err := h.topicService.DeleteQuestion(c.Request.Context(), c.GetUint(ContextKeyTopicID), c.GetUint(ContextKeyQuestionID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
