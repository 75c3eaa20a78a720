package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spacerhq/spacer"
	"github.com/spacerhq/spacer/i18n"
	"github.com/spacerhq/spacer/internal/config"
	"github.com/spacerhq/spacer/nasa"
)

// decodeCmd decodes a saved search response, reporting what was kept and
// what was dropped.
func decodeCmd(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.Default()
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	keysCSV := fs.String("keys", string(nasa.KeyData), "comma-separated wrapper keys, tried in order")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "output format: table, json or yaml")
	fs.IntVar(&cfg.Parse.MaxDepth, "max-depth", cfg.Parse.MaxDepth, "maximum JSON nesting depth (0 = unlimited)")
	fs.Int64Var(&cfg.Parse.MaxBytes, "max-bytes", cfg.Parse.MaxBytes, "maximum input size in bytes (0 = unlimited)")
	fs.StringVar(&cfg.Parse.DuplicateKeys, "duplicate-keys", cfg.Parse.DuplicateKeys, "duplicate key policy: ignore, warn or error")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level; debug lists every dropped element")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "message language: en or ja")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}
	if err := cfg.Validate(); err != nil {
		return fatalf(stderr, "%v", err)
	}
	i18n.SetLanguage(cfg.Language)
	logger, err := cfg.Logger(stderr)
	if err != nil {
		return fatalf(stderr, "%v", err)
	}

	in := stdin
	if name := fs.Arg(0); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return fatalf(stderr, "%v", err)
		}
		defer f.Close()
		in = f
	}

	var keys []nasa.Key
	for _, k := range strings.Split(*keysCSV, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, nasa.Key(k))
		}
	}
	dec := spacer.NewCollectionDecoder(nasa.DecodeSpace, spacer.Keys(keys...), spacer.WithLogger(logger))

	raw, err := spacer.ParseRawReader(ctx, in, cfg.LoggedParseOpt(logger))
	if err != nil {
		return reportErr(stderr, err)
	}
	coll, err := dec.Decode(raw)
	if err != nil {
		return reportErr(stderr, err)
	}
	if err := render(stdout, cfg.Output, coll.Items); err != nil {
		return fatalf(stderr, "%v", err)
	}
	s := coll.Stats
	fmt.Fprintf(stderr, "elements=%d direct=%d unwrapped=%d dropped=%d\n", s.Elements, s.Direct, s.Unwrapped, s.Dropped)
	return 0
}
