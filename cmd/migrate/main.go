package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/config"
	"github.com/yourusername/quiz-api/pkg/database"
	"github.com/yourusername/quiz-api/pkg/logger"
)

const usage = `Usage: migrate [flags] <command> [args]

Commands:
  up             применить все миграции
  down [N]       откатить N миграций (по умолчанию все)
  version        показать текущую версию схемы
  force V        выставить версию V без применения (снимает dirty)
  create NAME    создать пару пустых файлов миграции

Flags:
`

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("CONFIG_PATH", "config/config.yaml"), "path to config file")
	dir := flag.String("dir", "", "migrations directory (default: database.migrations_path or pkg/database/migrations)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if *dir != "" {
		cfg.Database.MigrationsPath = *dir
	}

	// create не требует подключения к БД
	if args[0] == "create" {
		if len(args) != 2 {
			log.Fatal("create requires exactly one NAME argument")
		}
		target := cfg.Database.MigrationsPath
		if target == "" {
			target = "pkg/database/migrations"
		}
		up, down, err := database.CreateMigration(target, args[1])
		if err != nil {
			log.WithError(err).Fatal("Failed to create migration")
		}
		fmt.Println(up)
		fmt.Println(down)
		return
	}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		defer sqlDB.Close()
	}

	migrator := database.NewMigrator(db, cfg.Database.MigrationsPath, log)

	if err := run(migrator, args); err != nil {
		log.WithError(err).Error("Migration command failed")
		os.Exit(1)
	}
}

func run(m *database.Migrator, args []string) error {
	switch args[0] {
	case "up":
		return m.Up()

	case "down":
		steps := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
			steps = n
		}
		return m.Down(steps)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil

	case "force":
		if len(args) != 2 {
			return fmt.Errorf("force requires a VERSION argument")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[1])
		}
		if err := m.Force(version); err != nil {
			return err
		}
		fmt.Printf("Forced version %d\n", version)
		return nil

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
