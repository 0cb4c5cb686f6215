// Package app собирает HTTP-приложение: движок gin, CORS, привязку БД и
// инструмента миграций, группы маршрутов и эндпоинт метрик.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/config"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	"github.com/yourusername/quiz-api/internal/handler"
	"github.com/yourusername/quiz-api/internal/metrics"
	"github.com/yourusername/quiz-api/internal/middleware"
	pgRepo "github.com/yourusername/quiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quiz-api/internal/repository/redis"
	"github.com/yourusername/quiz-api/internal/router"
	"github.com/yourusername/quiz-api/internal/service"
	ws "github.com/yourusername/quiz-api/internal/websocket"
	"github.com/yourusername/quiz-api/pkg/auth"
	"github.com/yourusername/quiz-api/pkg/database"
)

// Префиксы групп маршрутов
const (
	APIPrefix    = "/api"
	TopicsPrefix = "/api/topics"
	QuizPrefix   = "/api/quiz"
)

// cachePrefix - префикс ключей приложения в Redis
const cachePrefix = "quiz-api:"

// Deps - внешние зависимости сборки. Все поля необязательны.
type Deps struct {
	// DB: готовое подключение. nil - открыть по cfg.Database (лениво, без обращения к БД).
	DB *gorm.DB
	// Redis: клиент для кеша и rate limiting. nil - кеш отключен, лимит не применяется.
	Redis  redis.UniversalClient
	Logger logrus.FieldLogger
	// Groups: дополнительные группы маршрутов, регистрируются после встроенных
	Groups []*router.Group
}

// App - собранное приложение. Все поля принадлежат только этому экземпляру.
type App struct {
	Engine   *gin.Engine
	Config   *config.Config
	DB       *gorm.DB
	Migrator *database.Migrator
	Metrics  *metrics.Metrics
	Groups   []*router.Group
	Stats    *service.StatsService
	// Hub: лента изменений контента, nil если live.enabled=false
	Hub *ws.Hub

	ownsDB bool
}

// New собирает приложение. Конфигурация здесь не валидируется: отсутствующая
// настройка проявится в компоненте, который ее читает.
func New(cfg *config.Config, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "app")

	a := &App{Config: cfg}

	// 1. Движок и сквозные middleware
	a.Engine = gin.New()
	a.Engine.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(log))

	a.Metrics = metrics.New(metrics.Options{
		Namespace:      cfg.Metrics.Namespace,
		IncludeRuntime: cfg.Metrics.IncludeRuntime,
	})
	if cfg.Metrics.Enabled {
		a.Engine.Use(a.Metrics.Middleware())
	}

	// 2. CORS для всех маршрутов
	corsCfg := corsConfig(cfg.CORS)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS configuration: %w", err)
	}
	a.Engine.Use(cors.New(corsCfg))

	// 3. Слой доступа к данным: одна привязка на приложение
	a.DB = deps.DB
	if a.DB == nil {
		db, err := database.Open(cfg.Database, log)
		if err != nil {
			return nil, err
		}
		a.DB = db
		a.ownsDB = true
	}

	// 4. Инструмент миграций на том же подключении (здесь не запускается)
	a.Migrator = database.NewMigrator(a.DB, cfg.Database.MigrationsPath, log)

	// 5. Репозитории, сервисы, обработчики
	topicRepo := pgRepo.NewTopicRepo(a.DB)
	questionRepo := pgRepo.NewQuestionRepo(a.DB)

	var cacheRepo repository.CacheRepository = redisRepo.NoOpCache{}
	var submitLimit gin.HandlerFunc
	if deps.Redis != nil {
		cr, err := redisRepo.NewCacheRepo(deps.Redis, cachePrefix)
		if err != nil {
			return nil, err
		}
		cacheRepo = cr
		limiter := middleware.NewRateLimiter(cr, log)
		submitLimit = limiter.Limit(middleware.SubmitRateLimitConfig(cfg.Quiz.SubmitRateLimit, cfg.Quiz.SubmitRateWindowSec))
	}

	cacheTTL := time.Duration(cfg.Quiz.CacheTTLSec) * time.Second
	if deps.Redis == nil {
		cacheTTL = 0
	}

	topicService := service.NewTopicService(topicRepo, questionRepo, cacheRepo, log)
	quizService := service.NewQuizService(topicRepo, questionRepo, cacheRepo, a.Metrics, service.QuizSettings{
		DefaultQuestionCount: cfg.Quiz.DefaultQuestionCount,
		MaxQuestionCount:     cfg.Quiz.MaxQuestionCount,
		CacheTTL:             cacheTTL,
	}, log)
	a.Stats = service.NewStatsService(topicRepo, questionRepo)

	var liveHandler gin.HandlerFunc
	if cfg.Live.Enabled {
		hubOpts := ws.HubOptions{Channel: cfg.Live.Channel, AllowOrigins: cfg.CORS.AllowOrigins}
		if deps.Redis != nil {
			provider, err := ws.NewRedisPubSub(deps.Redis, log)
			if err != nil {
				return nil, err
			}
			hubOpts.Provider = provider
		}
		a.Hub = ws.NewHub(hubOpts, log)
		topicService.SetNotifier(a.Hub)
		liveHandler = a.Hub.ServeWS
	}

	// Секрет читается при каждом запросе к защищенному маршруту
	jwtService := auth.NewJWTService(func() string { return cfg.Auth.JWTSecret }, cfg.Auth.TokenTTLHours)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, log)

	a.Groups = buildGroups(routeDeps{
		topics:      handler.NewTopicHandler(topicService, log),
		quiz:        handler.NewQuizHandler(quizService, log),
		api:         handler.NewAPIHandler(a.Ping, a.Stats, log),
		adminOnly:   authMiddleware.RequireAdmin(),
		submitLimit: submitLimit,
		live:        liveHandler,
	})
	a.Groups = append(a.Groups, deps.Groups...)

	// 6. Регистрация групп. Повтор маршрута - фатальная ошибка сборки.
	if err := router.Mount(a.Engine, a.Groups...); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	// 7. Эндпоинт метрик
	if cfg.Metrics.Enabled {
		if err := metrics.RegisterRoute(a.Engine, a.Metrics); err != nil {
			a.Close()
			return nil, err
		}
	}

	log.WithField("groups", len(a.Groups)).Info("Application assembled")
	return a, nil
}

// Ping проверяет доступность БД
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := database.GetSQLDB(a.DB)
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close отключает клиентов ленты и закрывает подключение к БД, если его открыло само приложение
func (a *App) Close() error {
	if a.Hub != nil {
		a.Hub.Close()
	}
	if !a.ownsDB || a.DB == nil {
		return nil
	}
	sqlDB, err := database.GetSQLDB(a.DB)
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// corsConfig строит политику CORS. Пустой список источников разрешает любой источник.
func corsConfig(c config.CORSConfig) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowOrigins) == 0 || slices.Contains(c.AllowOrigins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = c.AllowOrigins
	cfg.AllowCredentials = true
	return cfg
}
