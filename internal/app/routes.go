package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/quiz-api/internal/handler"
	"github.com/yourusername/quiz-api/internal/middleware"
	"github.com/yourusername/quiz-api/internal/router"
)

type routeDeps struct {
	topics      *handler.TopicHandler
	quiz        *handler.QuizHandler
	api         *handler.APIHandler
	adminOnly   gin.HandlerFunc
	submitLimit gin.HandlerFunc // nil - без ограничения
	live        gin.HandlerFunc // nil - лента отключена
}

// buildGroups описывает таблицу маршрутов явными вызовами
func buildGroups(d routeDeps) []*router.Group {
	topicID := middleware.ExtractUintParam("id", handler.ContextKeyTopicID)
	questionID := middleware.ExtractUintParam("question_id", handler.ContextKeyQuestionID)
	quizTopicID := middleware.ExtractUintParam("topic_id", handler.ContextKeyTopicID)

	api := router.NewGroup("api", APIPrefix).
		GET("/health", d.api.Health).
		GET("/stats", d.api.Stats)
	if d.live != nil {
		api.GET("/ws", d.live)
	}

	topics := router.NewGroup("topics", TopicsPrefix).
		GET("", d.topics.ListTopics).
		GET("/:id", topicID, d.topics.GetTopic).
		GET("/:id/questions", topicID, d.topics.ListQuestions).
		POST("", d.adminOnly, d.topics.CreateTopic).
		PUT("/:id", d.adminOnly, topicID, d.topics.UpdateTopic).
		DELETE("/:id", d.adminOnly, topicID, d.topics.DeleteTopic).
		POST("/:id/questions", d.adminOnly, topicID, d.topics.AddQuestions).
		DELETE("/:id/questions/:question_id", d.adminOnly, topicID, questionID, d.topics.DeleteQuestion).
		GET("/:id/questions/export", d.adminOnly, topicID, d.topics.ExportQuestions).
		POST("/:id/questions/import", d.adminOnly, topicID, d.topics.ImportQuestions)

	submit := []gin.HandlerFunc{quizTopicID, d.quiz.SubmitQuiz}
	if d.submitLimit != nil {
		submit = append([]gin.HandlerFunc{d.submitLimit}, submit...)
	}
	quizzes := router.NewGroup("quizzes", QuizPrefix).
		GET("/:topic_id", quizTopicID, d.quiz.GetQuiz).
		POST("/:topic_id/submit", submit...)

	return []*router.Group{api, topics, quizzes}
}
