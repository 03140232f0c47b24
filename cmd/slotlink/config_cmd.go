package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/slotlink/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Long: `Print the configuration a run would use, after the defaults, the ` +
		`configuration file and the environment have been applied. The output ` +
		`can be saved and passed back with --config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		return config.Encode(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
