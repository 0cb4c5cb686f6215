package metrics

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metricLine - строка текстового формата: комментарий HELP/TYPE или имя{метки} значение
var metricLine = regexp.MustCompile(`^(# (HELP|TYPE) [a-zA-Z_:][a-zA-Z0-9_:]* .*|[a-zA-Z_:][a-zA-Z0-9_:]*(\{.*\})? [-+0-9.eEInfNa]+( [0-9]+)?)$`)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveMetrics(t *testing.T, m *Metrics) *httptest.ResponseRecorder {
	t.Helper()
	engine := gin.New()
	require.NoError(t, RegisterRoute(engine, m))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, Path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestRegisterRoute_ServesTextFormat(t *testing.T) {
	m := New(Options{Namespace: "test", IncludeRuntime: true})

	w := serveMetrics(t, m)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	for _, line := range strings.Split(strings.TrimSpace(w.Body.String()), "\n") {
		assert.Regexp(t, metricLine, line)
	}
}

func TestRegisterRoute_EmptyRegistry(t *testing.T) {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	w := serveMetrics(t, m)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Empty(t, strings.TrimSpace(w.Body.String()))
}

func TestMiddleware_CountsRequestsExceptMetrics(t *testing.T) {
	m := New(Options{Namespace: "test"})
	engine := gin.New()
	engine.Use(m.Middleware())
	engine.GET("/api/topics/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	require.NoError(t, RegisterRoute(engine, m))

	for _, path := range []string{"/api/topics/1", "/api/topics/2", Path} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := serveMetrics(t, m)
	body := w.Body.String()
	assert.Contains(t, body, `test_http_requests_total{method="GET",path="/api/topics/:id",status="204"} 2`)
	assert.NotContains(t, body, `path="/metrics"`)
}

func TestRegisterRoute_Twice(t *testing.T) {
	m := New(Options{Namespace: "test"})
	engine := gin.New()

	require.NoError(t, RegisterRoute(engine, m))
	assert.Error(t, RegisterRoute(engine, m))
}

func TestInstancesAreIndependent(t *testing.T) {
	first := New(Options{Namespace: "test"})
	second := New(Options{Namespace: "test"})
	require.NotSame(t, first.Registry, second.Registry)

	first.RecordQuizSubmission(3, 2, 4)
	first.SetContentCounts(5, 40)

	assert.Contains(t, serveMetrics(t, first).Body.String(), `test_quiz_submissions_total{topic_id="3"} 1`)
	assert.NotContains(t, serveMetrics(t, second).Body.String(), "test_quiz_submissions_total{")
	assert.Contains(t, serveMetrics(t, first).Body.String(), `test_content_items{kind="questions"} 40`)
}

func TestNilMetricsRecordersAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordQuizSubmission(1, 1, 1)
		m.SetContentCounts(1, 1)
	})
}
