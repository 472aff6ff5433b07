package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/prodlookup/internal/cel"
	"github.com/oakwood-commons/prodlookup/internal/config"
	"github.com/oakwood-commons/prodlookup/internal/formatter"
	"github.com/oakwood-commons/prodlookup/internal/lookup"
	"github.com/oakwood-commons/prodlookup/internal/prefs"
	"github.com/oakwood-commons/prodlookup/internal/ui"
	"github.com/oakwood-commons/prodlookup/pkg/loader"
	"github.com/oakwood-commons/prodlookup/pkg/logger"
	"github.com/oakwood-commons/prodlookup/pkg/settings"
)

var (
	searchFields  []string
	searchWhere   string
	searchOutput  string
	searchOutFile string
	searchSuggest string
	searchSheet   string
	searchAllCols bool
	searchTheme   string
)

// loadError carries the page-worded message of a failed fetch.
type loadError struct {
	msg string
	err error
}

func (e *loadError) Error() string { return e.msg }
func (e *loadError) Unwrap() error { return e.err }

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter records once and print the matches",
	Long: "search loads the page's records, applies every --field filter (case-insensitive\n" +
		"substring, all must match) and prints the result. --where refines the matches\n" +
		"with a CEL predicate over the record r (raw values) or s (values as strings).",
	Example: "\n  prodlookup search --field \"Mahsulot turi=rama\"\n" +
		"  prodlookup search -p sap --field САП=10 -o csv --out natija.csv\n" +
		"  prodlookup search --where 'r[\"Norma\"] != \"\"' -o xlsx --out natija.xlsx\n" +
		"  prodlookup search --suggest \"Profil seriya=6\"\n",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSearch(cmd)
	},
}

func runSearch(cmd *cobra.Command) error {
	run := settings.FromContextOrDefault(rootCtx)
	log := logger.FromContext(rootCtx)

	format, err := formatter.ParseFormat(searchOutput)
	if err != nil {
		return err
	}
	if format == formatter.FormatXLSX && searchOutFile == "" && stdoutIsTerminal() {
		return formatter.ErrBinaryToTerminal
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	page, err := cfg.Page(run.Page)
	if err != nil {
		return err
	}

	// Validate every flag before fetching.
	queries, err := searchQueries(page)
	if err != nil {
		return err
	}
	var pred *cel.Predicate
	if strings.TrimSpace(searchWhere) != "" {
		ev, err := cel.NewEvaluator()
		if err != nil {
			return err
		}
		if pred, err = ev.Compile(searchWhere); err != nil {
			return err
		}
	}

	src, err := openSource(cfg, page, cmd.InOrStdin())
	if err != nil {
		return err
	}
	records, err := src.Load(rootCtx)
	if err != nil {
		log.V(1).Info("load failed", logger.SourceKey, src.String(), "error", err.Error())
		return &loadError{msg: page.Messages().Format(err), err: err}
	}
	log.V(1).Info("loaded records", logger.SourceKey, src.String(), "count", len(records))

	if searchSuggest != "" {
		return printSuggestions(cmd.OutOrStdout(), cfg, page, records)
	}

	results := lookup.Filter(records, queries)
	if pred != nil {
		if results, err = pred.Filter(results); err != nil {
			return err
		}
	}

	var out io.Writer = cmd.OutOrStdout()
	toFile := searchOutFile != ""
	if toFile {
		f, err := os.Create(searchOutFile)
		if err != nil {
			return fmt.Errorf("creating %s: %w", searchOutFile, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if format == formatter.FormatTable {
		theme := searchTheme
		if theme == "" {
			theme = resolveTheme(cfg, prefs.NewStore(""), log)
		}
		if err := ui.ApplyTheme(cfg, theme); err != nil {
			return err
		}
		printCount(cmd.ErrOrStderr(), page, len(results))
		if len(results) == 0 {
			return nil
		}
	}

	opts := formatter.Options{
		Columns:     page.FieldKeys(),
		OnlyColumns: !searchAllCols,
		NoColor:     run.NoColor || toFile || !stdoutIsTerminal(),
		Sheet:       searchSheet,
		Indent:      2,
	}
	if err := formatter.Write(out, format, results, opts); err != nil {
		return err
	}
	if toFile {
		log.Info("wrote results", "path", searchOutFile, "format", string(format), "count", len(results))
	}
	return nil
}

func searchQueries(page config.Page) ([]lookup.Query, error) {
	queries := make([]lookup.Query, 0, len(searchFields))
	for _, raw := range searchFields {
		name, value, err := parseAssignment(raw)
		if err != nil {
			return nil, err
		}
		f, err := resolveField(page, name)
		if err != nil {
			return nil, err
		}
		queries = append(queries, lookup.Query{Key: f.Key, Value: value})
	}
	return queries, nil
}

func printSuggestions(w io.Writer, cfg *config.Config, page config.Page, records []loader.Record) error {
	name, query, err := parseAssignment(searchSuggest)
	if err != nil {
		return err
	}
	f, err := resolveField(page, name)
	if err != nil {
		return err
	}
	for _, v := range lookup.Suggest(records, f.Key, query, cfg.App.SuggestionLimit) {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}

// printCount writes the match badge, or the empty text when nothing matched.
func printCount(w io.Writer, page config.Page, n int) {
	if n == 0 {
		fmt.Fprintln(w, page.Texts.Empty)
		return
	}
	if text := page.Texts.CountText(n); text != "" {
		fmt.Fprintln(w, text)
	}
}

func init() { //nolint:gochecknoinits
	f := searchCmd.Flags()
	f.StringArrayVarP(&searchFields, "field", "f", nil, "filter FIELD=VALUE by field id, key or label (repeatable; all must match)")
	f.StringVar(&searchWhere, "where", "", "CEL predicate applied after the field filters, e.g. 'r[\"Norma\"] != \"\"'")
	f.StringVarP(&searchOutput, "output", "o", "table", "output format: table|json|yaml|csv|xlsx")
	f.StringVar(&searchOutFile, "out", "", "write results to this file instead of stdout")
	f.StringVar(&searchSuggest, "suggest", "", "print suggestions for FIELD=QUERY instead of results")
	f.StringVar(&searchSheet, "sheet", formatter.DefaultSheet, "worksheet name for xlsx output")
	f.BoolVar(&searchAllCols, "all-columns", false, "print every record key, not only the page's fields")
	f.StringVar(&searchTheme, "theme", "", "table theme: dark|light (default from saved preference, then config)")
}
