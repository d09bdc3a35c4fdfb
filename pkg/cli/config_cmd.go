package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(out))

		if cfg.ConfigFile != "" {
			fmt.Printf("# loaded from %s\n", cfg.ConfigFile)
		}
		return nil
	},
}

func initConfigCmd() {
	rootCmd.AddCommand(configCmd)
}
