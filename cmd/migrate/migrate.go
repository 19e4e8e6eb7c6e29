package migrate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func GetMigrateCmd(dbURL string, logger *zap.Logger) *cobra.Command {
	var down bool

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations for the postgres storage driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrate.New("file://migrations", dbURL)
			if err != nil {
				return fmt.Errorf("failed to initialize migrations: %w", err)
			}
			defer m.Close()

			if down {
				err := m.Down()
				switch {
				case errors.Is(err, migrate.ErrNoChange):
					logger.Warn("no migrations to rollback")
				case err != nil && strings.Contains(err.Error(), "dirty"):
					logger.Warn("database is in a dirty state, forcing version")
					if err := m.Force(0); err != nil {
						return fmt.Errorf("failed to force version: %w", err)
					}
					if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
						return fmt.Errorf("failed to apply down migrations: %w", err)
					}
				case err != nil:
					return fmt.Errorf("failed to apply down migrations: %w", err)
				default:
					logger.Info("migrations rolled back")
				}
				return nil
			}

			if err := m.Up(); err != nil {
				if errors.Is(err, migrate.ErrNoChange) {
					logger.Info("no new migrations to apply")
					return nil
				}
				return fmt.Errorf("failed to apply up migrations: %w", err)
			}

			logger.Info("migrations applied")
			return nil
		},
	}

	migrateCmd.Flags().BoolVarP(&down, "down", "d", false, "Rollback migrations")

	return migrateCmd
}
