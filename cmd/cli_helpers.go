package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oakwood-commons/prodlookup/internal/config"
	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

var errNoSource = errors.New("no data source configured: pass --source or set app.source")

// loadConfig merges and validates the configuration named by --config-file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openSource resolves the records source of page. "-" reads stdin.
func openSource(cfg *config.Config, page config.Page, stdin io.Reader) (loader.Source, error) {
	spec := strings.TrimSpace(cfg.SourceFor(page, sourceSpec))
	switch spec {
	case "":
		return nil, errNoSource
	case loader.StdinSpec:
		return loader.NewReaderSource("stdin", stdin, stdinFormat), nil
	default:
		return loader.NewSource(spec, loader.WithTimeout(cfg.App.Timeout)), nil
	}
}

// parseAssignment splits "name=value". The value may be empty and may
// itself contain '='.
func parseAssignment(s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("expected FIELD=VALUE, got %q", s)
	}
	return name, value, nil
}

// resolveField finds a tracked field of page by id, record key or label.
func resolveField(page config.Page, name string) (config.Field, error) {
	f, ok := page.Field(name)
	if !ok {
		ids := make([]string, len(page.Fields))
		for i, f := range page.Fields {
			ids[i] = f.ID
		}
		return config.Field{}, fmt.Errorf("unknown field %q (available: %s)", name, strings.Join(ids, ", "))
	}
	return f, nil
}
