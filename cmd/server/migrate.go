package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/platform/database"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	sub := func(use, short string, run func(ctx context.Context, m *database.Migrator, out io.Writer) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return withMigrator(cmd.Context(), cfg, func(m *database.Migrator) error {
					return run(cmd.Context(), m, cmd.OutOrStdout())
				})
			},
		}
	}

	cmd.AddCommand(
		sub("up", "Apply all pending migrations", migrateUp),
		sub("down", "Roll back the most recent migration", migrateDown),
		sub("status", "List migrations and whether they are applied", migrateStatus),
		sub("version", "Print the current schema version", migrateVersion),
	)
	return cmd
}

func withMigrator(ctx context.Context, cfg *config.Config, fn func(*database.Migrator) error) error {
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	m, err := database.NewMigrator(db, cfg.Database.Driver, log)
	if err != nil {
		return err
	}
	return fn(m)
}

func migrateUp(ctx context.Context, m *database.Migrator, out io.Writer) error {
	v, err := m.Up(ctx)
	if err != nil {
		return err
	}
	slog.Info("migrations applied", slog.Int64("version", v))
	_, err = fmt.Fprintf(out, "schema at version %d\n", v)
	return err
}

func migrateDown(ctx context.Context, m *database.Migrator, out io.Writer) error {
	v, err := m.Down(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "schema at version %d\n", v)
	return err
}

func migrateVersion(ctx context.Context, m *database.Migrator, out io.Writer) error {
	v, err := m.Version(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, v)
	return err
}

func migrateStatus(ctx context.Context, m *database.Migrator, out io.Writer) error {
	statuses, err := m.Status(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "VERSION\tAPPLIED\tFILE")
	for _, s := range statuses {
		_, _ = fmt.Fprintf(tw, "%d\t%t\t%s\n", s.Version, s.Applied, s.Name)
	}
	return tw.Flush()
}
