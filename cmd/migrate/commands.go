package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/infrastructure/migration"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withMigrator((*migration.Migrator).Up)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withMigrator((*migration.Migrator).Down)
	},
}

var stepsCmd = &cobra.Command{
	Use:   "steps <n>",
	Short: "Apply n migrations, negative n rolls back",
	Example: `  migrate steps 1
  migrate steps -- -1`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator) error {
			return m.Steps(n)
		})
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator) error {
			return m.GoTo(uint(version))
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the applied migration version",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		return withMigrator(func(m *migration.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				log.Info("No migrations applied")
				return nil
			}
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Set the version without running migrations",
	Long:  "Marks the schema as being at version and clears the dirty flag. Use only after fixing a failed migration by hand.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator) error {
			return m.Force(version)
		})
	},
}

var createCmd = &cobra.Command{
	Use:     "create <name> [description]",
	Short:   "Create an empty up/down migration pair",
	Example: `  migrate create add_order_notes "Free text notes on orders"`,
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		if useEmbedded {
			return fmt.Errorf("create needs a migrations directory, drop --embedded")
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(migrationsPath, args[0], description)
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List migrations found in the migrations directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if useEmbedded {
			return fmt.Errorf("list reads a migrations directory, drop --embedded")
		}
		entries, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			log.Info("No migrations found", zap.String("path", migrationsPath))
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "  %06d  %s\n", e.Number, e.Name)
		}
		return nil
	},
}
