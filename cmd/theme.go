package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/prodlookup/internal/prefs"
	"github.com/oakwood-commons/prodlookup/internal/ui"
	"github.com/oakwood-commons/prodlookup/pkg/logger"
)

var themeCmd = &cobra.Command{
	Use:   "theme [dark|light|toggle]",
	Short: "Show or change the saved color theme",
	Long: "Without arguments theme prints the active theme and the available ones.\n" +
		"With dark, light or toggle it saves the choice for the next runs.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{prefs.ThemeDark, prefs.ThemeLight, "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := prefs.NewStore("")
		current := resolveTheme(cfg, store, logger.FromContext(rootCtx))
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			fmt.Fprintf(out, "Current theme: %s\n", current) //nolint:errcheck
			fmt.Fprintf(out, "Available themes: %s\n", strings.Join(ui.ThemeNames(cfg), ", ")) //nolint:errcheck
			return nil
		}

		next := strings.ToLower(strings.TrimSpace(args[0]))
		if next == "toggle" {
			next = prefs.Toggle(current)
		}
		if _, err := ui.ThemeByName(cfg, next); err != nil {
			return err
		}
		if err := store.SetTheme(next); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "Theme set to %s (%s)\n", next, store.Path())
		return err
	},
}
