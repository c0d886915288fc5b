package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/phoneshop/backend/internal/infrastructure/config"
	"github.com/phoneshop/backend/internal/infrastructure/logger"
	"github.com/phoneshop/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

var errUsage = errors.New("invalid usage")

func main() {
	migrationsPath := flag.String("path", "", "Path to migrations directory (default: database.migrations_path)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	dir := *migrationsPath
	if dir == "" {
		dir = cfg.Database.MigrationsPath
	}
	if dir, err = filepath.Abs(dir); err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}

	log.Info("Migration CLI started", zap.String("command", args[0]), zap.String("migrations_path", dir))
	if err := run(args, dir, cfg.Database, log); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		}
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(args []string, dir string, dbCfg config.DatabaseConfig, log *zap.Logger) error {
	command := args[0]

	// list reads the directory only
	if command == "list" {
		versions, err := migration.AvailableVersions(dir)
		if err != nil {
			return err
		}
		log.Info("Available migrations", zap.Int("count", len(versions)))
		for _, v := range versions {
			fmt.Printf("  - %06d\n", v)
		}
		return nil
	}

	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "step":
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		latest, err := migration.LatestVersion(dir)
		if err != nil {
			return err
		}
		log.Info("Current migration version",
			zap.Uint("version", version),
			zap.Uint("latest", latest),
			zap.Bool("dirty", dirty),
		)
		return nil
	case "check":
		// Same gate the server applies before serving swaps
		latest, err := migration.LatestVersion(dir)
		if err != nil {
			return err
		}
		if err := migration.CheckSchema(m, latest); err != nil {
			return err
		}
		log.Info("Schema is current", zap.Uint("version", latest))
		return nil
	case "force":
		version, err := intArg(args, "version")
		if err != nil {
			return err
		}
		log.Warn("Forcing migration version", zap.Int("version", version))
		return m.Force(version)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func intArg(args []string, name string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%w: %s required", errUsage, name)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, name, args[1])
	}
	return n, nil
}

func printUsage() {
	fmt.Println(`Swap Service Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  version               Show current and latest migration version
  check                 Fail unless the schema is clean and at the latest version
  force <version>       Force set migration version after a failed migration
  list                  List available migrations

Flags:
  -path string          Path to migrations directory
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  SHOP_DATABASE_HOST, SHOP_DATABASE_PORT, SHOP_DATABASE_USER,
  SHOP_DATABASE_PASSWORD, SHOP_DATABASE_DBNAME, SHOP_DATABASE_SSLMODE`)
}
