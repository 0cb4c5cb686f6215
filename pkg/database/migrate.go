package database

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// ErrNotSupported возвращается для операций, которых нет у текущего драйвера
var ErrNotSupported = errors.New("operation is not supported for this database driver")

// Migrator привязывает инструмент миграций к конкретному *gorm.DB.
// Создание Migrator ничего не делает с БД: миграции применяются только явным вызовом.
type Migrator struct {
	db   *gorm.DB
	path string
	log  logrus.FieldLogger
}

// NewMigrator создает Migrator. path - каталог с SQL-миграциями; пусто - встроенные миграции.
func NewMigrator(db *gorm.DB, path string, log logrus.FieldLogger) *Migrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Migrator{db: db, path: path, log: log.WithField("component", "migrator")}
}

// DB возвращает привязанный *gorm.DB
func (m *Migrator) DB() *gorm.DB {
	return m.db
}

// Up применяет все миграции "вверх". Для sqlite используется AutoMigrate по entity.Models().
func (m *Migrator) Up() error {
	if DriverName(m.db) == DriverSQLite {
		m.log.Info("sqlite: применяем AutoMigrate")
		if err := m.db.AutoMigrate(entity.Models()...); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
		return nil
	}

	mg, err := m.instance()
	if err != nil {
		return err
	}

	m.log.Info("Применяем миграции 'up'...")
	err = mg.Up()
	switch {
	case errors.Is(err, migrateV4.ErrNoChange):
		m.log.Info("Изменений в миграциях не найдено, база данных уже актуальна.")
	case err != nil:
		return fmt.Errorf("ошибка применения миграций 'up': %w", err)
	default:
		m.log.Info("Миграции успешно применены.")
	}
	return nil
}

// Down откатывает steps миграций; steps <= 0 откатывает все
func (m *Migrator) Down(steps int) error {
	if DriverName(m.db) == DriverSQLite {
		return ErrNotSupported
	}
	mg, err := m.instance()
	if err != nil {
		return err
	}
	if steps > 0 {
		err = mg.Steps(-steps)
	} else {
		err = mg.Down()
	}
	if err != nil && !errors.Is(err, migrateV4.ErrNoChange) {
		return fmt.Errorf("ошибка отката миграций: %w", err)
	}
	return nil
}

// Version возвращает текущую версию схемы и флаг dirty
func (m *Migrator) Version() (uint, bool, error) {
	if DriverName(m.db) == DriverSQLite {
		return 0, false, ErrNotSupported
	}
	mg, err := m.instance()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := mg.Version()
	if errors.Is(err, migrateV4.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Force выставляет версию без применения миграций (снимает dirty-состояние)
func (m *Migrator) Force(version int) error {
	if DriverName(m.db) == DriverSQLite {
		return ErrNotSupported
	}
	mg, err := m.instance()
	if err != nil {
		return err
	}
	return mg.Force(version)
}

// instance создает экземпляр migrate поверх соединения gorm
func (m *Migrator) instance() (*migrateV4.Migrate, error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить *sql.DB из *gorm.DB: %w", err)
	}

	driver, err := migratePostgres.WithInstance(sqlDB, &migratePostgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать драйвер postgres для migrate: %w", err)
	}

	if m.path != "" {
		mg, err := migrateV4.NewWithDatabaseInstance("file://"+m.path, "postgres", driver)
		if err != nil {
			return nil, fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
		}
		return mg, nil
	}

	source, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть встроенные миграции: %w", err)
	}
	mg, err := migrateV4.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}
	return mg, nil
}

var migrationFileRe = regexp.MustCompile(`^(\d+)_.+\.(up|down)\.sql$`)
var migrationNameRe = regexp.MustCompile(`[^a-z0-9]+`)

// CreateMigration создает пару пустых файлов NNNNNN_name.up.sql / .down.sql
// со следующим порядковым номером в каталоге dir.
func CreateMigration(dir, name string) (string, string, error) {
	slug := strings.Trim(migrationNameRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", "", fmt.Errorf("migration name %q is empty after normalisation", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", err
	}
	var versions []int
	for _, e := range entries {
		if match := migrationFileRe.FindStringSubmatch(e.Name()); match != nil {
			v, _ := strconv.Atoi(match[1])
			versions = append(versions, v)
		}
	}
	sort.Ints(versions)
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1] + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	up := filepath.Join(dir, base+".up.sql")
	down := filepath.Join(dir, base+".down.sql")
	for _, p := range []string{up, down} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			return "", "", err
		}
	}
	return up, down, nil
}
