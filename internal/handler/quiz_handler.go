package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/handler/dto"
	"github.com/yourusername/quiz-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService QuizService
	log         logrus.FieldLogger
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService QuizService, log logrus.FieldLogger) *QuizHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuizHandler{quizService: quizService, log: log.WithField("component", "quiz_handler")}
}

// AnswerRequest - ответ на один вопрос
type AnswerRequest struct {
	QuestionID     uint `json:"question_id" binding:"required"`
	SelectedOption *int `json:"selected_option" binding:"required"`
}

// SubmitQuizRequest - ответы пользователя на викторину
type SubmitQuizRequest struct {
	Answers []AnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// GetQuiz GET /api/quiz/:topic_id?count=N
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "count must be a positive integer")
			return
		}
		count = n
	}

	quiz, err := h.quizService.BuildQuiz(c.Request.Context(), c.GetUint(ContextKeyTopicID), count)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// SubmitQuiz POST /api/quiz/:topic_id/submit
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	answers := make([]service.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.Answer{QuestionID: a.QuestionID, SelectedOption: *a.SelectedOption})
	}

	result, err := h.quizService.GradeSubmission(c.Request.Context(), c.GetUint(ContextKeyTopicID), answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
