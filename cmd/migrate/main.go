// Command migrate manages the postgres schema of the valuation portal.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/infrastructure/config"
	"github.com/vertinimas/portal/internal/infrastructure/logger"
	"github.com/vertinimas/portal/internal/infrastructure/migration"
	"github.com/vertinimas/portal/migrations"
)

const defaultMigrationsPath = "migrations"

var (
	migrationsPath string
	logLevel       string
	useEmbedded    bool

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Valuation portal database migrations",
	Long: `Apply, roll back and inspect the postgres schema migrations.

Connection settings come from config.toml and PORTAL_DATABASE_* variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		log, err = logger.New(&logger.Config{
			Level:      logLevel,
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if !useEmbedded {
			migrationsPath, err = resolveMigrationsPath(migrationsPath)
			if err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = logger.Sync(log)
		}
	},
}

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&useEmbedded, "embedded", false, "Use the migrations compiled into the binary")

	rootCmd.AddCommand(upCmd, downCmd, stepsCmd, gotoCmd, versionCmd, forceCmd, createCmd, listCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveMigrationsPath prefers an explicit path, then ./migrations, then the
// directory two levels above the executable
func resolveMigrationsPath(path string) (string, error) {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if execPath, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

// withMigrator opens the database, runs fn and closes both
func withMigrator(fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return errors.New("migrations only apply to the postgres driver; sqlite schemas are created on startup")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var m *migration.Migrator
	if useEmbedded {
		log.Info("Using embedded migrations")
		m, err = migration.NewFromFS(db, migrations.FS, log)
	} else {
		log.Info("Using migrations directory", zap.String("path", migrationsPath))
		m, err = migration.New(db, migrationsPath, log)
	}
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
		_ = db.Close()
	}()

	return fn(m)
}
