package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var source string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Run the SQL migrations of the datasets database",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.SetupEnvFile()
		},
	}
	root.PersistentFlags().StringVar(&source, "source", "file://migrations", "migration source URL")

	open := func() (*migrate.Migrate, error) {
		log.Printf("Connecting to database: %s@%s:%s/%s",
			env.GetEnv("DB_USER", "candidatelens"),
			env.GetEnv("DB_HOST", "db"),
			env.GetEnv("DB_PORT", "3306"),
			env.GetEnv("DB_NAME", "candidatelens"),
		)
		m, err := migrate.New(source, databaseURL())
		if err != nil {
			return nil, fmt.Errorf("initialize migrations: %w", err)
		}
		return m, nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrate(open, func(m *migrate.Migrate) error {
					return reportChange(m.Up(), "Migrations applied")
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrate(open, func(m *migrate.Migrate) error {
					return reportChange(m.Steps(-1), "Last migration rolled back")
				})
			},
		},
		&cobra.Command{
			Use:   "goto VERSION",
			Short: "Migrate to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withMigrate(open, func(m *migrate.Migrate) error {
					return reportChange(m.Migrate(uint(version)), fmt.Sprintf("Migrated to version %d", version))
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrate(open, func(m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						log.Println("No migrations applied yet")
						return nil
					}
					if err != nil {
						return fmt.Errorf("read migration version: %w", err)
					}
					log.Println(versionStatus(version, dirty))
					return nil
				})
			},
		},
	)

	return root
}

func withMigrate(open func() (*migrate.Migrate, error), run func(*migrate.Migrate) error) error {
	m, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Printf("Closing migration resources failed: %v, %v", sourceErr, dbErr)
		}
	}()
	return run(m)
}

// reportChange treats ErrNoChange as success
func reportChange(err error, success string) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Println("No change: database is up to date")
		return nil
	}
	if err != nil {
		return err
	}
	log.Println(success)
	return nil
}

func versionStatus(version uint, dirty bool) string {
	status := fmt.Sprintf("Current migration version: %d", version)
	if dirty {
		status += " (dirty)"
	}
	return status
}

func databaseURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		env.GetEnv("DB_USER", "candidatelens"),
		env.GetEnv("DB_PASSWORD", "candidatelens"),
		env.GetEnv("DB_HOST", "db"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", "candidatelens"),
	)
}
