package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/prodlookup/internal/config"
	"github.com/oakwood-commons/prodlookup/internal/formatter"
	"github.com/oakwood-commons/prodlookup/internal/ui"
	"github.com/oakwood-commons/prodlookup/pkg/loader"
	"github.com/oakwood-commons/prodlookup/pkg/settings"
)

const sampleJSON = `[
  {"Profil seriya": "60", "Mahsulot turi": "Rama", "SAP kod": 1002, "Norma": 1.5, "Rasm": "https://img.example/1.png"},
  {"Profil seriya": "70", "Mahsulot turi": "Stvorka", "SAP kod": 2004, "Norma": ""},
  {"Profil seriya": "60", "Mahsulot turi": "Impost", "SAP kod": 3001}
]`

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func resetCmdState() {
	configFile, pageName, sourceSpec, logFile = "", "", "", ""
	stdinFormat = "json"
	noColor, debug = false, false
	themeName, debounceDur, watch = "", 0, false
	searchFields = nil
	searchWhere, searchOutput, searchOutFile, searchSuggest = "", "table", "", ""
	searchSheet, searchAllCols, searchTheme = formatter.DefaultSheet, false, ""
	configDefaults = false
	rootCtx = context.Background()

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					_ = sv.Replace(nil)
				} else {
					_ = f.Value.Set(f.DefValue)
				}
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}

// runCLI executes the root command with isolated config, prefs and IO.
func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	return runCLIIn(t, t.TempDir(), stdin, args...)
}

// runCLIIn is runCLI with XDG_CONFIG_HOME pinned to xdg.
func runCLIIn(t *testing.T, xdg, stdin string, args ...string) cliResult {
	t.Helper()
	resetCmdState()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	origTerm, origPiped := stdoutIsTerminal, stdinIsPiped
	stdoutIsTerminal = func() bool { return false }
	stdinIsPiped = func() bool { return false }
	t.Cleanup(func() {
		stdoutIsTerminal, stdinIsPiped = origTerm, origPiped
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	err := Execute()
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// stubTUI replaces the interactive program and records what it was given.
func stubTUI(t *testing.T) *[]ui.RunOptions {
	t.Helper()
	var calls []ui.RunOptions
	orig := runTUI
	runTUI = func(_ context.Context, opts ui.RunOptions, _ ...tea.ProgramOption) error {
		calls = append(calls, opts)
		return nil
	}
	t.Cleanup(func() { runTUI = orig })
	return &calls
}

func TestRootStartsTUIWithDefaults(t *testing.T) {
	calls := stubTUI(t)
	src := writeTemp(t, "products.json", sampleJSON)

	res := runCLI(t, "", "--source", src)
	require.NoError(t, res.err)
	require.Len(t, *calls, 1)

	opts := (*calls)[0]
	assert.Equal(t, "Profil qidiruv", opts.Page.Title)
	assert.Equal(t, src, opts.Source.String())
	assert.IsType(t, &loader.FileSource{}, opts.Source)
	assert.Equal(t, "dark", opts.Theme)
	assert.Equal(t, 180*time.Millisecond, opts.Debounce)
	assert.False(t, opts.Watch)
	assert.False(t, opts.NoColor)
	require.NotNil(t, opts.Prefs)
	assert.Equal(t, "prefs.yaml", filepath.Base(opts.Prefs.Path()))
}

func TestRootFlagsReachTUI(t *testing.T) {
	calls := stubTUI(t)
	src := writeTemp(t, "products.json", sampleJSON)

	res := runCLI(t, "", "--source", src, "--page", "sap", "--theme", "light",
		"--debounce", "50ms", "--watch", "--no-color")
	require.NoError(t, res.err)
	require.Len(t, *calls, 1)

	opts := (*calls)[0]
	assert.True(t, opts.Page.Detail)
	assert.Equal(t, "light", opts.Theme)
	assert.Equal(t, 50*time.Millisecond, opts.Debounce)
	assert.True(t, opts.Watch)
	assert.True(t, opts.NoColor)

	run, ok := settings.FromContext(rootCtx)
	require.True(t, ok)
	assert.Equal(t, "sap", run.Page)
	assert.True(t, run.Interactive)
}

func TestRootUsesStoredThemePreference(t *testing.T) {
	calls := stubTUI(t)
	src := writeTemp(t, "products.json", sampleJSON)
	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, settings.CliBinaryName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, settings.CliBinaryName, "prefs.yaml"), []byte("theme: light\n"), 0o600))

	res := runCLIIn(t, xdg, "", "--source", src)
	require.NoError(t, res.err)
	require.Len(t, *calls, 1)
	assert.Equal(t, "light", (*calls)[0].Theme)

	res = runCLIIn(t, xdg, "", "--source", src, "--theme", "dark")
	require.NoError(t, res.err)
	require.Len(t, *calls, 2)
	assert.Equal(t, "dark", (*calls)[1].Theme, "the flag wins over the stored preference")
}

func TestRootRejectsBadInput(t *testing.T) {
	stubTUI(t)
	src := writeTemp(t, "products.json", sampleJSON)

	res := runCLI(t, "", "--source", src, "--page", "nope")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `unknown page "nope"`)

	res = runCLI(t, "", "--source", src, "--theme", "blue")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `unknown theme "blue"`)

	res = runCLI(t, "", "extra-arg")
	require.Error(t, res.err)
}

func TestRootWithoutSource(t *testing.T) {
	stubTUI(t)
	cfg := writeTemp(t, "config.yaml", "app:\n  source: \"\"\n")

	res := runCLI(t, "", "--config-file", cfg)
	require.ErrorIs(t, res.err, errNoSource)
}

func TestRootReadsStdinSource(t *testing.T) {
	calls := stubTUI(t)

	res := runCLI(t, sampleJSON, "--source", "-")
	require.NoError(t, res.err)
	require.Len(t, *calls, 1)

	src := (*calls)[0].Source
	assert.Equal(t, "stdin", src.String())
	recs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestMissingConfigFileIsAnError(t *testing.T) {
	res := runCLI(t, "", "pages", "--config-file", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, res.err)
}

func TestVersionCommand(t *testing.T) {
	res := runCLI(t, "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "prodlookup "+settings.VersionInformation.BuildVersion)
	assert.Contains(t, res.stdout, "commit "+settings.VersionInformation.Commit)
}

func TestPagesCommand(t *testing.T) {
	res := runCLI(t, "", "pages")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "* profil")
	assert.Contains(t, res.stdout, "Profil qidiruv")
	assert.Contains(t, res.stdout, "fields: profil (Profil seriya), mahsulot (Mahsulot turi), sap (SAP kod)")
	assert.Contains(t, res.stdout, "  qoplama")
	assert.Contains(t, res.stdout, "detail")
}

func TestConfigCommand(t *testing.T) {
	res := runCLI(t, "", "config")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "default_page: profil")
	assert.Contains(t, res.stdout, "suggestion_limit: 12")

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg := writeTemp(t, "config.yaml", "app:\n  default_page: qoplama\n")
		res := runCLI(t, "", "config", "--config-file", cfg)
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "default_page: qoplama")
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("PRODLOOKUP_APP_DEFAULT_PAGE", "sap")
		res := runCLI(t, "", "config")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "default_page: sap")
	})

	t.Run("defaults are printed verbatim", func(t *testing.T) {
		res := runCLI(t, "", "config", "--defaults")
		require.NoError(t, res.err)
		assert.Equal(t, string(config.DefaultConfigYAML()), res.stdout)
	})

	t.Run("invalid merged config", func(t *testing.T) {
		cfg := writeTemp(t, "config.yaml", "app:\n  default_page: missing\n")
		res := runCLI(t, "", "config", "--config-file", cfg)
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "invalid configuration")
	})
}

func TestThemeCommand(t *testing.T) {
	xdg := t.TempDir()

	res := runCLIIn(t, xdg, "", "theme")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Current theme: dark")
	assert.Contains(t, res.stdout, "Available themes: dark, light")

	res = runCLIIn(t, xdg, "", "theme", "light")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Theme set to light")
	assert.FileExists(t, filepath.Join(xdg, settings.CliBinaryName, "prefs.yaml"))

	res = runCLIIn(t, xdg, "", "theme")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Current theme: light")

	res = runCLIIn(t, xdg, "", "theme", "toggle")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Theme set to dark")

	res = runCLIIn(t, xdg, "", "theme", "blue")
	require.Error(t, res.err)

	res = runCLIIn(t, xdg, "", "theme", "dark", "light")
	require.Error(t, res.err)
}
