package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/storekit/backend/internal/infrastructure/config"
	"github.com/storekit/backend/internal/infrastructure/logger"
	"github.com/storekit/backend/internal/infrastructure/migration"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("failed to resolve migrations path", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	migrator, err := migration.New(db, absPath, log)
	if err != nil {
		log.Fatal("failed to create migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "steps":
		n, parseErr := strconv.Atoi(flag.Arg(1))
		if parseErr != nil {
			log.Fatal("steps requires a numeric argument", zap.Error(parseErr))
		}
		err = migrator.Steps(n)
	case "force":
		v, parseErr := strconv.Atoi(flag.Arg(1))
		if parseErr != nil {
			log.Fatal("force requires a numeric version", zap.Error(parseErr))
		}
		err = migrator.Force(v)
	case "version":
		version, dirty, verErr := migrator.Version()
		if verErr != nil {
			log.Fatal("failed to read version", zap.Error(verErr))
		}
		log.Info("current migration state", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		log.Fatal("unknown command", zap.String("command", command))
	}
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
}
