// Package metrics собирает Prometheus-метрики приложения.
// Каждый экземпляр Metrics владеет собственным реестром, поэтому
// два собранных приложения в одном процессе не делят счетчики.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path - путь, по которому отдаются метрики
const Path = "/metrics"

// Options задает параметры реестра
type Options struct {
	Namespace string
	// IncludeRuntime добавляет go_* и process_* коллекторы
	IncludeRuntime bool
}

// Metrics хранит реестр и коллекторы приложения
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	quizSubmissions *prometheus.CounterVec
	quizScoreRatio  prometheus.Histogram

	contentItems *prometheus.GaugeVec
}

// New создает Metrics с новым реестром
func New(opts Options) *Metrics {
	ns := opts.Namespace

	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
		quizSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "quiz",
			Name:      "submissions_total",
			Help:      "Total number of graded quiz submissions.",
		}, []string{"topic_id"}),
		quizScoreRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "quiz",
			Name:      "score_ratio",
			Help:      "Share of correct answers per graded submission.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		contentItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "content",
			Name:      "items",
			Help:      "Number of stored content items by kind.",
		}, []string{"kind"}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.quizSubmissions,
		m.quizScoreRatio,
		m.contentItems,
	)
	if opts.IncludeRuntime {
		m.Registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	}
	return m
}

// Handler возвращает HTTP-обработчик с текстовым форматом экспозиции
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RegisterRoute вешает GET /metrics на уже собранный движок.
// Обработчик только читает реестр. Повторная регистрация пути - ошибка.
func RegisterRoute(engine *gin.Engine, m *Metrics) (err error) {
	for _, r := range engine.Routes() {
		if r.Method == http.MethodGet && r.Path == Path {
			return fmt.Errorf("GET %s is already registered", Path)
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("register %s: %v", Path, rec)
		}
	}()
	engine.GET(Path, gin.WrapH(m.Handler()))
	return nil
}

// Middleware считает запросы, их длительность и число одновременных запросов.
// Запросы к /metrics не учитываются.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == Path {
			c.Next()
			return
		}

		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		c.Next()

		// Шаблон маршрута вместо сырого пути, чтобы не плодить метки
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordQuizSubmission фиксирует проверенную попытку и долю верных ответов
func (m *Metrics) RecordQuizSubmission(topicID uint, correct, total int) {
	if m == nil {
		return
	}
	m.quizSubmissions.WithLabelValues(strconv.FormatUint(uint64(topicID), 10)).Inc()
	if total > 0 {
		m.quizScoreRatio.Observe(float64(correct) / float64(total))
	}
}

// SetContentCounts обновляет gauge-и количества тем и вопросов
func (m *Metrics) SetContentCounts(topics, questions int64) {
	if m == nil {
		return
	}
	m.contentItems.WithLabelValues("topics").Set(float64(topics))
	m.contentItems.WithLabelValues("questions").Set(float64(questions))
}
