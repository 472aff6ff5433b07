package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/prodlookup/internal/config"
)

var configDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged configuration as YAML",
	Long: "config prints the configuration after merging the built-in defaults, the\n" +
		"config file and PRODLOOKUP_* environment overrides (for example\n" +
		"PRODLOOKUP_APP_SOURCE or PRODLOOKUP_APP_DEBOUNCE).",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configDefaults {
			_, err := cmd.OutOrStdout().Write(config.DefaultConfigYAML())
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := cfg.Marshal()
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() { //nolint:gochecknoinits
	configCmd.Flags().BoolVar(&configDefaults, "defaults", false, "print the built-in defaults with comments, ignoring files and environment")
}
