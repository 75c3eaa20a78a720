package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spacerhq/spacer/i18n"
	"github.com/spacerhq/spacer/internal/config"
	"github.com/spacerhq/spacer/nasa"
)

func searchCmd(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	configPath, dotenv := preScan(args)
	if err := config.LoadDotEnv(dotenv); err != nil {
		return fatalf(stderr, "%v", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fatalf(stderr, "%v", err)
	}

	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", configPath, "YAML config file")
	fs.String("env", dotenv, ".env file to load")
	cfg.RegisterFlags(fs)
	pages := fs.Int("pages", 1, "number of result pages to fetch")
	markdown := fs.Bool("markdown", false, "render HTML descriptions as Markdown")
	showMetrics := fs.Bool("metrics", false, "print request metrics to stderr when done")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := cfg.Validate(); err != nil {
		return fatalf(stderr, "invalid configuration: %v", err)
	}
	i18n.SetLanguage(cfg.Language)

	logger, err := cfg.Logger(stderr)
	if err != nil {
		return fatalf(stderr, "%v", err)
	}
	reg := prometheus.NewRegistry()
	client, err := nasa.NewClient(cfg.ClientOptions(logger, nasa.NewMetrics(reg))...)
	if err != nil {
		return fatalf(stderr, "%v", err)
	}

	page, err := client.Search(ctx, cfg.Query)
	if err != nil {
		return reportErr(stderr, err)
	}
	items, total := page.Items, page.TotalHits
	for i := 1; i < *pages; i++ {
		next, err := client.Next(ctx, page)
		if errors.Is(err, nasa.ErrNoNextPage) {
			break
		}
		if err != nil {
			return reportErr(stderr, fmt.Errorf("page %d: %w", i+1, err))
		}
		page = next
		items = append(items, page.Items...)
	}

	if *markdown {
		if items, err = descriptionsToMarkdown(items); err != nil {
			return fatalf(stderr, "%v", err)
		}
	}
	if err := render(stdout, cfg.Output, items); err != nil {
		return fatalf(stderr, "%v", err)
	}
	if cfg.Output == config.OutputTable {
		fmt.Fprintf(stdout, "\n%d of %d total hits\n", len(items), total)
	}
	if *showMetrics {
		if err := writeMetrics(stderr, reg); err != nil {
			return fatalf(stderr, "%v", err)
		}
	}
	return 0
}

// preScan finds -config and -env ahead of the full flag parse, since the file
// they name supplies the defaults of every other flag.
func preScan(args []string) (configPath, dotenv string) {
	dotenv = ".env"
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(strings.TrimLeft(args[i], "-"), "=")
		if !strings.HasPrefix(args[i], "-") || (name != "config" && name != "env") {
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				break
			}
			i++
			value = args[i]
		}
		if name == "config" {
			configPath = value
		} else {
			dotenv = value
		}
	}
	return configPath, dotenv
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%gs\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
