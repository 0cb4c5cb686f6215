package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/quiz-api/internal/config"
	"github.com/yourusername/quiz-api/internal/router"
	"github.com/yourusername/quiz-api/pkg/auth"
	"github.com/yourusername/quiz-api/pkg/database"
	applog "github.com/yourusername/quiz-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret-0123456789"

func testConfig() *config.Config {
	return &config.Config{
		Auth:    config.AuthConfig{JWTSecret: testSecret, TokenTTLHours: 1},
		Metrics: config.MetricsConfig{Enabled: true, Namespace: "test"},
		Quiz:    config.QuizConfig{DefaultQuestionCount: 5, MaxQuestionCount: 20},
	}
}

// newMockDB создает *gorm.DB поверх sqlmock. Запросы к нему, не объявленные в mock, падают.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	db, mock := newMockDB(t)
	a, err := New(cfg, Deps{DB: db, Logger: applog.Discard()})
	require.NoError(t, err)
	// Сборка не обращается к БД
	require.NoError(t, mock.ExpectationsWereMet())
	return a
}

func do(engine http.Handler, method, path string, body []byte, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, Deps{})
	assert.Error(t, err)
}

func TestNew_ServesMetrics(t *testing.T) {
	a := newTestApp(t, testConfig())

	w := do(a.Engine, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	// Второй запрос уже видит учтенный первый
	do(a.Engine, http.MethodGet, "/api/nothing-here", nil, nil)
	w = do(a.Engine, http.MethodGet, "/metrics", nil, nil)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",path="unmatched",status="404"} 1`)
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	a := newTestApp(t, cfg)

	w := do(a.Engine, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_RoutingTable(t *testing.T) {
	a := newTestApp(t, testConfig())

	seen := map[string]int{}
	for _, r := range a.Engine.Routes() {
		seen[r.Method+" "+r.Path]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, key)
	}

	for _, want := range []string{
		"GET /api/health",
		"GET /api/stats",
		"GET /api/topics",
		"POST /api/topics",
		"GET /api/topics/:id",
		"PUT /api/topics/:id",
		"DELETE /api/topics/:id",
		"GET /api/topics/:id/questions",
		"POST /api/topics/:id/questions",
		"DELETE /api/topics/:id/questions/:question_id",
		"GET /api/topics/:id/questions/export",
		"POST /api/topics/:id/questions/import",
		"GET /api/quiz/:topic_id",
		"POST /api/quiz/:topic_id/submit",
		"GET /metrics",
	} {
		assert.Contains(t, seen, want)
	}

	names := make([]string, 0, len(a.Groups))
	for _, g := range a.Groups {
		names = append(names, g.Name()+"="+g.Prefix())
	}
	assert.Equal(t, []string{"api=/api", "topics=/api/topics", "quizzes=/api/quiz"}, names)
}

func TestNew_IndependentAssemblies(t *testing.T) {
	first := newTestApp(t, testConfig())
	second := newTestApp(t, testConfig())

	assert.NotSame(t, first.Metrics.Registry, second.Metrics.Registry)
	assert.NotSame(t, first.DB, second.DB)
	assert.NotSame(t, first.Migrator, second.Migrator)
	assert.Same(t, first.DB, first.Migrator.DB())

	do(first.Engine, http.MethodGet, "/api/unknown", nil, nil)

	for _, a := range []*App{first, second} {
		w := do(a.Engine, http.MethodGet, "/metrics", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := do(second.Engine, http.MethodGet, "/metrics", nil, nil)
	assert.NotContains(t, w.Body.String(), `status="404"`)
}

func TestNew_DuplicateRouteFails(t *testing.T) {
	db, _ := newMockDB(t)
	extra := router.NewGroup("extra", "/api").GET("/health", func(c *gin.Context) {})

	_, err := New(testConfig(), Deps{DB: db, Logger: applog.Discard(), Groups: []*router.Group{extra}})
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrDuplicateRoute)
}

func TestNew_ExtraGroupIsMounted(t *testing.T) {
	db, _ := newMockDB(t)
	extra := router.NewGroup("extra", "/api/extra").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	a, err := New(testConfig(), Deps{DB: db, Logger: applog.Discard(), Groups: []*router.Group{extra}})
	require.NoError(t, err)

	w := do(a.Engine, http.MethodGet, "/api/extra/ping", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestNew_MissingSecretSurfacesLazily(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = ""
	a := newTestApp(t, cfg)

	header := http.Header{"Authorization": {"Bearer whatever"}}
	w := do(a.Engine, http.MethodPost, "/api/topics", []byte(`{"name":"Go"}`), header)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// Публичная часть работает
	w = do(a.Engine, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_AdminRoutesRequireToken(t *testing.T) {
	a := newTestApp(t, testConfig())

	w := do(a.Engine, http.MethodDelete, "/api/topics/1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.NewJWTService(func() string { return testSecret }, 1).GenerateToken("bob", "editor")
	require.NoError(t, err)
	w = do(a.Engine, http.MethodDelete, "/api/topics/1", nil, http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNew_Health(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	a, err := New(testConfig(), Deps{DB: db, Logger: applog.Discard()})
	require.NoError(t, err)

	mock.ExpectPing()
	w := do(a.Engine, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectPing().WillReturnError(fmt.Errorf("connection refused"))
	w = do(a.Engine, http.MethodGet, "/api/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_CORS(t *testing.T) {
	t.Run("any origin by default", func(t *testing.T) {
		a := newTestApp(t, testConfig())
		header := http.Header{
			"Origin":                        {"https://quiz.example.com"},
			"Access-Control-Request-Method": {"POST"},
		}
		w := do(a.Engine, http.MethodOptions, "/api/topics", nil, header)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("configured origins", func(t *testing.T) {
		cfg := testConfig()
		cfg.CORS.AllowOrigins = []string{"https://admin.example.com"}
		a := newTestApp(t, cfg)

		header := http.Header{"Origin": {"https://admin.example.com"}}
		w := do(a.Engine, http.MethodGet, "/metrics", nil, header)
		assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		header = http.Header{"Origin": {"https://evil.example.com"}}
		w = do(a.Engine, http.MethodGet, "/metrics", nil, header)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestNew_LiveFeed(t *testing.T) {
	a := newTestApp(t, testConfig())
	assert.Nil(t, a.Hub)
	w := do(a.Engine, http.MethodGet, "/api/ws", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	cfg := testConfig()
	cfg.Live = config.LiveConfig{Enabled: true, Channel: "events"}
	a = newTestApp(t, cfg)
	require.NotNil(t, a.Hub)

	// Обычный GET без Upgrade отклоняется апгрейдером
	w = do(a.Engine, http.MethodGet, "/api/ws", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, a.Close())
}

func TestNew_RequestIDHeader(t *testing.T) {
	a := newTestApp(t, testConfig())
	w := do(a.Engine, http.MethodGet, "/metrics", nil, http.Header{"X-Request-ID": {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

// metricLine - строка текстового формата экспозиции: комментарий или "имя{метки} значение"
var metricLine = regexp.MustCompile(`^(#.*|[a-zA-Z_:][a-zA-Z0-9_:]*(\{.*\})? [-+0-9.eEInfNa]+)$`)

func TestNew_InMemoryDatabaseMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.IncludeRuntime = true
	cfg.Database = config.DatabaseConfig{
		Driver:   database.DriverSQLite,
		URL:      fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		LogLevel: "silent",
	}

	a, err := New(cfg, Deps{Logger: applog.Discard()})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	w := do(a.Engine, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	for _, line := range strings.Split(strings.TrimSpace(w.Body.String()), "\n") {
		if line == "" {
			continue
		}
		assert.Regexp(t, metricLine, line)
	}
}

// TestSQLite_QuizFlow прогоняет полный сценарий на sqlite в памяти
func TestSQLite_QuizFlow(t *testing.T) {
	cfg := testConfig()
	cfg.Database = config.DatabaseConfig{
		Driver:   database.DriverSQLite,
		URL:      fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		LogLevel: "silent",
	}

	// Без cgo драйвер sqlite не работает
	a, err := New(cfg, Deps{Logger: applog.Discard()})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.Migrator.Up())

	token, err := auth.NewJWTService(func() string { return testSecret }, 1).GenerateToken("admin", auth.RoleAdmin)
	require.NoError(t, err)
	admin := http.Header{"Authorization": {"Bearer " + token}}

	w := do(a.Engine, http.MethodPost, "/api/topics", []byte(`{"name":"Go","description":"Язык Go"}`), admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var topic struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &topic))

	w = do(a.Engine, http.MethodPost, "/api/topics", []byte(`{"name":"Go"}`), admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	questions := `{"questions":[
		{"text":"2+2?","options":["3","4","5"],"correct_option":1},
		{"text":"Ключевое слово для горутины?","options":["go","async"],"correct_option":0,"explanation":"go f()"}
	]}`
	w = do(a.Engine, http.MethodPost, fmt.Sprintf("/api/topics/%d/questions", topic.ID), []byte(questions), admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(a.Engine, http.MethodGet, fmt.Sprintf("/api/quiz/%d?count=10", topic.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "correct_option")
	var quiz struct {
		Questions []struct {
			ID   uint   `json:"id"`
			Text string `json:"text"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quiz))
	require.Len(t, quiz.Questions, 2)

	answers := make([]map[string]interface{}, 0, 2)
	for _, q := range quiz.Questions {
		selected := 0
		if q.Text == "2+2?" {
			selected = 2
		}
		answers = append(answers, map[string]interface{}{"question_id": q.ID, "selected_option": selected})
	}
	body, _ := json.Marshal(map[string]interface{}{"answers": answers})
	w = do(a.Engine, http.MethodPost, fmt.Sprintf("/api/quiz/%d/submit", topic.ID), body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		TotalQuestions int `json:"total_questions"`
		CorrectAnswers int `json:"correct_answers"`
		Score          int `json:"score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 50, result.Score)

	w = do(a.Engine, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"topics":1,"questions":2}`, w.Body.String())

	w = do(a.Engine, http.MethodGet, "/metrics", nil, nil)
	assert.Contains(t, w.Body.String(), "test_quiz_submissions_total")

	// Вопросы удаляются вместе с темой
	w = do(a.Engine, http.MethodDelete, fmt.Sprintf("/api/topics/%d", topic.ID), nil, admin)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	w = do(a.Engine, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"topics":0,"questions":0}`, w.Body.String())
}

func TestSQLite_DefaultDatabasesAreSeparate(t *testing.T) {
	cfg := testConfig()
	cfg.Database = config.DatabaseConfig{Driver: database.DriverSQLite, LogLevel: "silent"}

	apps := make([]*App, 0, 2)
	for i := 0; i < 2; i++ {
		a, err := New(cfg, Deps{Logger: applog.Discard()})
		if err != nil {
			t.Skipf("sqlite unavailable: %v", err)
		}
		t.Cleanup(func() { a.Close() })
		require.NoError(t, a.Migrator.Up())
		apps = append(apps, a)
	}

	token, err := auth.NewJWTService(func() string { return testSecret }, 1).GenerateToken("admin", auth.RoleAdmin)
	require.NoError(t, err)
	w := do(apps[0].Engine, http.MethodPost, "/api/topics", []byte(`{"name":"Go"}`), http.Header{"Authorization": {"Bearer " + token}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(apps[1].Engine, http.MethodGet, "/api/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"topics":0,"questions":0}`, w.Body.String())
}
