package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/spotweb/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the example config when none exists and runs the history database migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if err := r.writePlain("✓ Wrote %s, set auth.token (or SPOTDL_TOKEN) before serving\n", configPath); err != nil {
			return err
		}
	}

	config, err := r.loadConfig(configPath)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenHistoryDatabase(config.Database)
	if errors.Is(err, shared.ErrHistoryDisabled) {
		r.logger.Warn("database.path is empty, skipping migrations")
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s (schema version %d)\n", config.Database.Path, version)
}
