package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/prodlookup/internal/config"
	"github.com/oakwood-commons/prodlookup/internal/prefs"
	"github.com/oakwood-commons/prodlookup/internal/ui"
	"github.com/oakwood-commons/prodlookup/pkg/logger"
	"github.com/oakwood-commons/prodlookup/pkg/settings"
)

var (
	rootCtx = context.Background()

	// Persistent flags.
	configFile  string
	pageName    string
	sourceSpec  string
	stdinFormat string
	noColor     bool
	debug       bool
	logFile     string

	// Interactive-only flags.
	themeName   string
	debounceDur time.Duration
	watch       bool

	// runTUI is replaced in tests so the root command can be exercised
	// without a terminal.
	runTUI = ui.Run
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: "Search product records by series, type and SAP code",
	Long: "prodlookup loads a product table from a web endpoint or a local file and\n" +
		"filters it as you type. Every search field narrows the results and offers\n" +
		"suggestions from the loaded records.",
	Example: "\n  prodlookup\n  prodlookup --page sap\n  prodlookup --source testdata/products.csv --watch\n" +
		"  curl -s $URL | prodlookup --source -\n  prodlookup search --field \"Mahsulot turi=rama\" -o json\n",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		interactive := cmd == cmd.Root()
		var level int8
		if debug {
			level = -1
		}

		var out io.Writer
		if interactive {
			// Log lines must never land on the alternate screen.
			out = io.Discard
			if logFile != "" {
				w, err := logger.OpenFile(logFile)
				if err != nil {
					return err
				}
				out = w
			}
		} else {
			out = cmd.ErrOrStderr()
		}
		lgr := logger.Setup(logger.Options{Level: level, Output: out})
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		run := settings.NewCliParams()
		run.MinLogLevel = level
		run.Page = pageName
		run.Source = sourceSpec
		run.Interactive = interactive
		run.NoColor = noColor
		run.Watch = watch
		run.LogFile = logFile

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = logger.WithLogger(ctx, lgr)
		rootCtx = settings.IntoContext(ctx, run)
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInteractive(cmd)
	},
}

func runInteractive(cmd *cobra.Command) error {
	run := settings.FromContextOrDefault(rootCtx)
	log := logger.FromContext(rootCtx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	page, err := cfg.Page(run.Page)
	if err != nil {
		return err
	}
	src, err := openSource(cfg, page, cmd.InOrStdin())
	if err != nil {
		return err
	}

	store := prefs.NewStore("")
	theme := resolveTheme(cfg, store, log)
	if _, err := ui.ThemeByName(cfg, theme); err != nil {
		return err
	}

	delay := cfg.App.Debounce
	if cmd.Flags().Changed("debounce") {
		delay = debounceDur
	}

	log.Info("starting interactive lookup",
		logger.PageKey, page.Title, logger.SourceKey, src.String(), "theme", theme)

	progOpts, cleanup := getProgramOptions(rootCtx)
	defer cleanup()

	return runTUI(rootCtx, ui.RunOptions{
		Options: ui.Options{
			Config:   cfg,
			Page:     page,
			Source:   src,
			Theme:    theme,
			Prefs:    store,
			NoColor:  run.NoColor,
			Debounce: delay,
		},
		Watch: run.Watch,
	}, progOpts...)
}

// resolveTheme applies --theme, then the stored preference, then the
// configured default. An unreadable prefs file only logs.
func resolveTheme(cfg *config.Config, store *prefs.Store, log *logr.Logger) string {
	stored, err := store.Load()
	if err != nil {
		log.V(1).Info("ignoring unreadable prefs", "path", store.Path(), "error", err.Error())
	}
	return prefs.Resolve(themeName, stored.Theme, cfg.UI.Theme)
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
}

func init() { //nolint:gochecknoinits
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config-file", "", "path to a YAML config file (pages, themes, settings)")
	pf.StringVarP(&pageName, "page", "p", "", "page to search (default from config; see 'prodlookup pages')")
	pf.StringVarP(&sourceSpec, "source", "s", "", "records endpoint (http/https), local file (.json .csv .xlsx .yaml .toml) or - for stdin")
	pf.StringVar(&stdinFormat, "stdin-format", "json", "format of records read from stdin: json|csv|yaml|toml")
	pf.BoolVar(&noColor, "no-color", false, "disable color output")
	pf.BoolVar(&debug, "debug", false, "log at debug level")
	pf.StringVar(&logFile, "log-file", "", "write logs of the interactive UI to this file")

	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme: dark|light (default from saved preference, then config)")
	rootCmd.Flags().DurationVar(&debounceDur, "debounce", 0, "delay between the last keystroke and filtering (default from config)")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload a local source file when it changes")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd, pagesCmd, themeCmd, configCmd, searchCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
