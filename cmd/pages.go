package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/prodlookup/internal/config"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List configured pages and their search fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return writePages(cmd.OutOrStdout(), cfg)
	},
}

func writePages(w io.Writer, cfg *config.Config) error {
	for _, name := range cfg.PageNames() {
		p := cfg.Pages[name]
		marker := " "
		if name == cfg.App.DefaultPage {
			marker = "*"
		}
		fields := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = fmt.Sprintf("%s (%s)", f.ID, f.Key)
		}
		var extras []string
		if p.Detail {
			extras = append(extras, "detail")
		}
		if p.ImageField != "" {
			extras = append(extras, "image: "+p.ImageField)
		}
		line := fmt.Sprintf("%s %-8s %s\n    fields: %s\n", marker, name, p.Title, strings.Join(fields, ", "))
		if len(extras) > 0 {
			line += "    " + strings.Join(extras, ", ") + "\n"
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
