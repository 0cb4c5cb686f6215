package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PingFunc проверяет доступность БД
type PingFunc func(ctx context.Context) error

// APIHandler - служебные эндпоинты группы /api
type APIHandler struct {
	ping  PingFunc
	stats StatsProvider
	log   logrus.FieldLogger
}

// NewAPIHandler создает обработчик служебных эндпоинтов
func NewAPIHandler(ping PingFunc, stats StatsProvider, log logrus.FieldLogger) *APIHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &APIHandler{ping: ping, stats: stats, log: log.WithField("component", "api_handler")}
}

// Health GET /api/health
func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			h.log.WithError(err).Warn("Database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}

// Stats GET /api/stats
func (h *APIHandler) Stats(c *gin.Context) {
	stats, err := h.stats.ContentStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
