package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/quiz-api/internal/config"
)

// Поддерживаемые драйверы БД
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open создает *gorm.DB по конфигурации. Подключение ленивое: gorm не пингует БД,
// поэтому ошибка сети всплывет при первом запросе, а не при сборке приложения.
func Open(cfg config.DatabaseConfig, log logrus.FieldLogger) (*gorm.DB, error) {
	driver := strings.ToLower(cfg.Driver)
	if driver == "" {
		driver = DriverPostgres
	}

	gormCfg := &gorm.Config{
		Logger:               newGormLogger(cfg.LogLevel),
		DisableAutomaticPing: true,
		TranslateError:       true,
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = gormPostgres.Open(cfg.DSN())
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(cfg.DSN()))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	configurePool(sqlDB, driver)

	if log != nil {
		log.WithField("driver", driver).Info("Database handle created")
	}
	return db, nil
}

// sqliteDSN дополняет DSN sqlite. Пустой DSN дает отдельную именованную БД в памяти,
// внешние ключи (и ON DELETE CASCADE) включаются драйвером на каждом соединении.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = fmt.Sprintf("file:quiz-%s?mode=memory&cache=shared", uuid.NewString())
	}
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

// configurePool настраивает пул соединений
func configurePool(sqlDB *sql.DB, driver string) {
	if driver == DriverSQLite {
		// Одно соединение: in-memory БД живет, пока живо соединение, а PRAGMA действуют на соединение
		sqlDB.SetMaxOpenConns(1)
		return
	}
	// Максимальное число открытых соединений
	sqlDB.SetMaxOpenConns(25)
	// Максимальное число простаивающих соединений
	sqlDB.SetMaxIdleConns(10)
	// Максимальное время жизни соединения
	sqlDB.SetConnMaxLifetime(time.Hour)
}

// newGormLogger переводит уровень из конфигурации в уровень логгера gorm
func newGormLogger(level string) logger.Interface {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Default.LogMode(logger.Silent)
	case "error":
		return logger.Default.LogMode(logger.Error)
	case "info":
		return logger.Default.LogMode(logger.Info)
	default:
		return logger.Default.LogMode(logger.Warn)
	}
}

// GetSQLDB возвращает базовый *sql.DB из *gorm.DB
func GetSQLDB(gormDB *gorm.DB) (*sql.DB, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB, nil
}

// DriverName возвращает имя диалекта gorm ("postgres", "sqlite")
func DriverName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return ""
	}
	return db.Dialector.Name()
}
