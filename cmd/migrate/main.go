package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jobboard/backend/internal/infrastructure/config"
	"github.com/jobboard/backend/internal/infrastructure/logger"
	"github.com/jobboard/backend/internal/infrastructure/migration"
	"github.com/jobboard/backend/internal/infrastructure/persistence"
)

var errUsage = errors.New("invalid usage")

func main() {
	path := flag.String("path", "", "Path to migrations directory (default: embedded migrations)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log := logger.New(&logger.Config{
		Level:      *logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	defer func() { _ = log.Sync() }()

	env := &toolEnv{log: log}
	if *path != "" {
		abs, err := filepath.Abs(*path)
		if err != nil {
			log.Fatal("Bad migrations path", zap.String("path", *path), zap.Error(err))
		}
		env.path = abs
	}

	if err := dispatch(env, args[0], args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			log.Error(err.Error())
			printUsage()
			os.Exit(2)
		}
		log.Fatal("Command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

// dispatch runs one command. Schema commands get a migrator on postgres;
// other drivers only support "up", which builds the schema from the models.
func dispatch(env *toolEnv, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
	env.log.Debug("Running command", zap.String("command", name), zap.String("migrations_path", env.path))

	if cmd.offline != nil {
		return cmd.offline(env, args)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cmd.withConfig != nil {
		return cmd.withConfig(env, cfg, args)
	}

	if cfg.Database.Driver != config.DriverPostgres {
		if name != "up" {
			return fmt.Errorf("%w: only 'up' is supported for driver %s", errUsage, cfg.Database.Driver)
		}
		return autoMigrate(env, cfg)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, env.path, env.log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd.schema(env, m, args)
}

func autoMigrate(env *toolEnv, cfg *config.Config) error {
	db, err := persistence.NewDatabase(&cfg.Database, env.log, gormlogger.Warn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.AutoMigrate(); err != nil {
		return err
	}
	env.log.Info("Schema migrated from models", zap.String("driver", cfg.Database.Driver))
	return nil
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Job board database tool

Usage:
  migrate [-path dir] [-log-level level] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  version               Show the applied version
  force <version>       Mark a version as applied after a failed run
  create <name> [desc]  Write a new migration pair (needs -path)
  list                  List available migrations
  create-account        Create a login account
                          -email, -password, -name, -role (admin|employer)

Database settings come from JOBBOARD_DATABASE_* variables or config.yaml.

Examples:
  migrate up
  migrate step -1
  migrate -path ./migrations create add_refunds "Refund records"
  migrate create-account -email hr@acme.vn -password s3cret -name "Acme HR"
`)
}
