package command

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/noah-isme/luct-report-api/internal/config"
	"github.com/noah-isme/luct-report-api/internal/database"
)

type storeFlags struct {
	driver string
	dsn    string
}

// NewRootCommand builds the operator CLI.
func NewRootCommand() *cobra.Command {
	flags := &storeFlags{}

	root := &cobra.Command{
		Use:   "luctctl",
		Short: "Operator tooling for the LUCT reporting API",
		Long: `luctctl talks to the reporting database directly.

Connection settings come from the same LUCT_* environment variables and .env
file the API uses; --driver and --dsn override them.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "database driver (postgres or sqlite)")
	root.PersistentFlags().StringVar(&flags.dsn, "dsn", "", "database connection string")

	root.AddCommand(
		newMigrateCommand(flags),
		newAuditCommand(flags),
		newAggregateCommand(flags),
	)

	return root
}

func (f *storeFlags) open() (*gorm.DB, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	if f.driver != "" {
		cfg.DatabaseDriver = f.driver
	}
	if f.dsn != "" {
		cfg.DatabaseURL = f.dsn
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, database.Pool(cfg.DatabasePool))
	if err != nil {
		return nil, config.Config{}, err
	}
	return db, cfg, nil
}

func cliLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
}

func cliValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func closeStore(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
