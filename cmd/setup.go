package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/scx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates config.toml when missing, then initializes the database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		r.config = config
		r.writePlain("✓ Created %s\n", configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if err := r.openDatabase(); err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)

	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	if r.config.SoundCloud.ClientID == "" || r.config.SoundCloud.ClientID == "your_soundcloud_client_id" {
		r.writePlainln("Next steps:")
		r.writePlain("1. Set soundcloud.client_id and soundcloud.client_secret in %s\n", configPath)
		r.writePlain("2. Run 'scx auth login' to authorize\n")
	}
	return nil
}
