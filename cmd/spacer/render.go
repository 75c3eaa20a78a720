package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/spacerhq/spacer/internal/config"
	"github.com/spacerhq/spacer/nasa"
)

func render(w io.Writer, format string, items []nasa.Space) error {
	if items == nil {
		items = []nasa.Space{}
	}
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	case config.OutputTable, "":
		return renderTable(w, items)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func renderTable(w io.Writer, items []nasa.Space) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCENTER\tTITLE")
	for _, s := range items {
		date := ""
		if !s.DateCreated.IsZero() {
			date = s.DateCreated.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, date, s.Center, truncate(s.Title, 72))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// descriptionsToMarkdown converts the HTML fragments NASA puts in
// descriptions into Markdown.
func descriptionsToMarkdown(items []nasa.Space) ([]nasa.Space, error) {
	out := make([]nasa.Space, len(items))
	for i, s := range items {
		if strings.ContainsRune(s.Description, '<') {
			md, err := htmltomarkdown.ConvertString(s.Description)
			if err != nil {
				return nil, fmt.Errorf("item %s: %w", s.ID, err)
			}
			s.Description = strings.TrimSpace(md)
		}
		out[i] = s
	}
	return out, nil
}
