package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a crm.yaml template with the effective configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		const path = "crm.yaml"
		if _, err := os.Stat(path); err == nil {
			return eris.Errorf("config: %s already exists", path)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "config: encode yaml")
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return eris.Wrapf(err, "config: write %s", path)
		}

		zap.L().Info("config template written", zap.String("file", path))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
