package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	identityapp "github.com/jobboard/backend/internal/application/identity"
	"github.com/jobboard/backend/internal/domain/account"
	"github.com/jobboard/backend/internal/infrastructure/auth"
	"github.com/jobboard/backend/internal/infrastructure/config"
	"github.com/jobboard/backend/internal/infrastructure/migration"
	"github.com/jobboard/backend/internal/infrastructure/persistence"
	"github.com/jobboard/backend/migrations"
)

type toolEnv struct {
	log  *zap.Logger
	path string
	out  io.Writer
}

func (e *toolEnv) stdout() io.Writer {
	if e.out == nil {
		return os.Stdout
	}
	return e.out
}

// schemaOps is the part of migration.Migrator the schema commands use
type schemaOps interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
}

// command has exactly one of its run functions set
type command struct {
	offline    func(env *toolEnv, args []string) error
	withConfig func(env *toolEnv, cfg *config.Config, args []string) error
	schema     func(env *toolEnv, m schemaOps, args []string) error
}

var commands = map[string]command{
	"up":             {schema: func(_ *toolEnv, m schemaOps, _ []string) error { return m.Up() }},
	"down":           {schema: func(_ *toolEnv, m schemaOps, _ []string) error { return m.Down() }},
	"step":           {schema: runStep},
	"version":        {schema: runVersion},
	"force":          {schema: runForce},
	"create":         {offline: runCreate},
	"list":           {offline: runList},
	"create-account": {withConfig: runCreateAccount},
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s required", errUsage, what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", errUsage, what, args[0])
	}
	return n, nil
}

func runStep(_ *toolEnv, m schemaOps, args []string) error {
	n, err := intArg(args, "step count")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: step count must not be zero", errUsage)
	}
	return m.Steps(n)
}

func runVersion(env *toolEnv, m schemaOps, _ []string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		env.log.Info("No migrations applied")
		return nil
	}
	env.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func runForce(env *toolEnv, m schemaOps, args []string) error {
	version, err := intArg(args, "version")
	if err != nil {
		return err
	}
	env.log.Warn("Forcing migration version", zap.Int("version", version))
	return m.Force(version)
}

func runCreate(env *toolEnv, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migration name required", errUsage)
	}
	if env.path == "" {
		return fmt.Errorf("%w: create writes files and needs -path", errUsage)
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(env.path, args[0], description)
	if err != nil {
		return err
	}
	env.log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(env *toolEnv, _ []string) error {
	var fsys fs.FS = migrations.FS
	if env.path != "" {
		fsys = os.DirFS(env.path)
	}
	files, err := migration.ListMigrations(fsys)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		env.log.Info("No migrations found")
		return nil
	}
	for _, m := range files {
		fmt.Fprintf(env.stdout(), "%06d %s\n", m.Version, m.Name)
	}
	return nil
}

type accountFlags struct {
	email, name, password, role string
}

func parseAccountFlags(args []string) (accountFlags, error) {
	var f accountFlags
	fset := flag.NewFlagSet("create-account", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&f.email, "email", "", "")
	fset.StringVar(&f.name, "name", "", "")
	fset.StringVar(&f.password, "password", "", "")
	fset.StringVar(&f.role, "role", string(account.RoleEmployer), "")
	if err := fset.Parse(args); err != nil {
		return f, fmt.Errorf("%w: %v", errUsage, err)
	}
	if f.email == "" || f.password == "" {
		return f, fmt.Errorf("%w: -email and -password are required", errUsage)
	}
	return f, nil
}

// runCreateAccount seeds an account; there is no public sign-up endpoint
func runCreateAccount(env *toolEnv, cfg *config.Config, args []string) error {
	f, err := parseAccountFlags(args)
	if err != nil {
		return err
	}

	db, err := persistence.NewDatabase(&cfg.Database, env.log, gormlogger.Warn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	svc := identityapp.NewAuthService(
		persistence.NewGormAccountRepository(db.DB),
		auth.NewPasswordHasher(0),
		nil,
		nil,
		env.log,
	)
	acc, err := svc.CreateAccount(context.Background(), identityapp.CreateAccountInput{
		Email:    f.email,
		Name:     f.name,
		Password: f.password,
		Role:     account.Role(f.role),
	})
	if err != nil {
		return err
	}
	env.log.Info("Account created",
		zap.String("id", acc.ID.String()),
		zap.String("email", acc.Email),
		zap.String("role", acc.Role),
	)
	return nil
}
