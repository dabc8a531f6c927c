package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lms-store-service/internal/config"
	"lms-store-service/internal/logger"
)

// NewSyncCmd pushes the local aggregate to the configured endpoint,
// stamping lastSynced on success.
func NewSyncCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the local store to the remote endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Server.Debug)
			defer log.Sync()

			service, cleanup, err := buildService(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := service.SyncNow(cmd.Context()); err != nil {
				return err
			}
			log.Info("store pushed to remote")
			return nil
		},
	}
}

// NewImportCmd replaces the local aggregate with the remote copy.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Replace the local store with the remote copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Server.Debug)
			defer log.Sync()

			service, cleanup, err := buildService(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			if !service.ImportFromRemote(cmd.Context()) {
				return fmt.Errorf("cloud import failed")
			}
			log.Info("store replaced from remote")
			return nil
		},
	}
}
