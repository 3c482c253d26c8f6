package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/config"
)

// initCmd writes a default config into the workspace
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .shop/config.yaml with default settings",
	Long: `Creates the .shop/ state directory and writes the default configuration.
An existing config is left alone.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	path := filepath.Join(ws, config.DefaultWorkspaceDir, "config.yaml")

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists at %s\n", path)
		return nil
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	logger.Debug("Wrote default config", zap.String("path", path))
	fmt.Printf("Created %s\n", path)
	return nil
}
