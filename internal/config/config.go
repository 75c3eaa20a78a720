// Package config loads spacer settings from a YAML file, SPACER_* environment
// variables (optionally seeded from a .env file) and command-line flags, in
// that order of precedence.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spacerhq/spacer"
	"github.com/spacerhq/spacer/nasa"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "SPACER_"

// Config is the full CLI configuration.
type Config struct {
	BaseURL  string        `yaml:"base_url"`
	Query    nasa.Query    `yaml:"query"`
	Timeout  time.Duration `yaml:"timeout"`
	Rate     Rate          `yaml:"rate"`
	Repair   bool          `yaml:"repair"`
	Parse    Parse         `yaml:"parse"`
	Log      Log           `yaml:"log"`
	Output   string        `yaml:"output"`
	Language string        `yaml:"language"`
}

// Rate paces outgoing requests. RPS <= 0 disables pacing.
type Rate struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Parse holds response body limits.
type Parse struct {
	MaxDepth      int    `yaml:"max_depth"`
	MaxBytes      int64  `yaml:"max_bytes"`
	DuplicateKeys string `yaml:"duplicate_keys"` // ignore, warn or error
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Output formats accepted by Validate.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:  nasa.DefaultBaseURL,
		Query:    nasa.DefaultQuery,
		Timeout:  30 * time.Second,
		Rate:     Rate{RPS: 2, Burst: 1},
		Parse:    Parse{MaxDepth: 64, MaxBytes: 32 << 20, DuplicateKeys: "ignore"},
		Log:      Log{Level: "info", Format: "text"},
		Output:   OutputTable,
		Language: "en",
	}
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load returns Default overlaid with the YAML file at path (if non-empty) and
// then with SPACER_* variables from the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.UnmarshalYAMLBytes(data); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// UnmarshalYAMLBytes overlays data onto c. Unknown fields are rejected.
func (c *Config) UnmarshalYAMLBytes(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overlays SPACER_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	parse := func(name string, set func(string) error) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			}
		}
	}

	str("BASE_URL", &c.BaseURL)
	str("QUERY", &c.Query.Q)
	str("DESCRIPTION", &c.Query.Description)
	str("MEDIA_TYPE", &c.Query.MediaType)
	str("DUPLICATE_KEYS", &c.Parse.DuplicateKeys)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("OUTPUT", &c.Output)
	str("LANG", &c.Language)
	parse("TIMEOUT", func(v string) (err error) { c.Timeout, err = time.ParseDuration(v); return })
	parse("RATE_RPS", func(v string) (err error) { c.Rate.RPS, err = strconv.ParseFloat(v, 64); return })
	parse("RATE_BURST", func(v string) (err error) { c.Rate.Burst, err = strconv.Atoi(v); return })
	parse("REPAIR", func(v string) (err error) { c.Repair, err = strconv.ParseBool(v); return })
	parse("MAX_DEPTH", func(v string) (err error) { c.Parse.MaxDepth, err = strconv.Atoi(v); return })
	parse("MAX_BYTES", func(v string) (err error) { c.Parse.MaxBytes, err = strconv.ParseInt(v, 10, 64); return })
	return errors.Join(errs...)
}

// RegisterFlags binds flags to c, using the current values as defaults.
// Call it after Load so flags take precedence.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.BaseURL, "base-url", c.BaseURL, "search endpoint")
	fs.StringVar(&c.Query.Q, "q", c.Query.Q, "free text query")
	fs.StringVar(&c.Query.Description, "description", c.Query.Description, "description filter")
	fs.StringVar(&c.Query.MediaType, "media-type", c.Query.MediaType, "media type filter")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "HTTP timeout")
	fs.Float64Var(&c.Rate.RPS, "rps", c.Rate.RPS, "requests per second (0 disables pacing)")
	fs.IntVar(&c.Rate.Burst, "burst", c.Rate.Burst, "rate limiter burst")
	fs.BoolVar(&c.Repair, "repair", c.Repair, "retry malformed bodies after JSON repair")
	fs.IntVar(&c.Parse.MaxDepth, "max-depth", c.Parse.MaxDepth, "maximum JSON nesting depth (0 = unlimited)")
	fs.Int64Var(&c.Parse.MaxBytes, "max-bytes", c.Parse.MaxBytes, "maximum body size in bytes (0 = unlimited)")
	fs.StringVar(&c.Parse.DuplicateKeys, "duplicate-keys", c.Parse.DuplicateKeys, "duplicate key policy: ignore, warn or error")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "log level: debug, info, warn or error")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "log format: text or json")
	fs.StringVar(&c.Output, "o", c.Output, "output format: table, json or yaml")
	fs.StringVar(&c.Language, "lang", c.Language, "message language: en or ja")
}

// Validate checks enumerated fields and limits.
func (c Config) Validate() error {
	var errs []error
	if _, err := spacer.ParseLocation(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	}
	if c.Timeout < 0 {
		errs = append(errs, errors.New("timeout must not be negative"))
	}
	if _, err := c.duplicateSeverity(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		errs = append(errs, fmt.Errorf("output %q: want table, json or yaml", c.Output))
	}
	return errors.Join(errs...)
}

// ParseOpt converts the parse limits.
func (c Config) ParseOpt() spacer.ParseOpt {
	sev, _ := c.duplicateSeverity()
	return spacer.ParseOpt{
		Strictness: spacer.Strictness{OnDuplicateKey: sev},
		MaxDepth:   c.Parse.MaxDepth,
		MaxBytes:   c.Parse.MaxBytes,
	}
}

// LoggedParseOpt is ParseOpt with warnings (duplicate keys under "warn")
// written to logger.
func (c Config) LoggedParseOpt(logger *slog.Logger) spacer.ParseOpt {
	opt := c.ParseOpt()
	if opt.Strictness.OnDuplicateKey == spacer.Warn && logger != nil {
		opt.OnIssue = func(is spacer.Issue) {
			logger.Warn("json issue", "code", is.Code, "path", is.Path, "message", is.Message)
		}
	}
	return opt
}

// ClientOptions returns the nasa.Client options described by c.
func (c Config) ClientOptions(logger *slog.Logger, metrics *nasa.Metrics) []nasa.Option {
	opt := c.LoggedParseOpt(logger)
	return []nasa.Option{
		nasa.WithBaseURL(c.BaseURL),
		nasa.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
		nasa.WithRateLimit(c.Rate.RPS, c.Rate.Burst),
		nasa.WithBodyRepair(c.Repair),
		nasa.WithParseOpt(opt),
		nasa.WithLogger(logger),
		nasa.WithMetrics(metrics),
	}
}

// Logger builds the slog logger writing to w.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", c.Log.Level, err)
	}
	return lvl, nil
}

func (c Config) duplicateSeverity() (spacer.Severity, error) {
	switch strings.ToLower(c.Parse.DuplicateKeys) {
	case "", "ignore":
		return spacer.Ignore, nil
	case "warn":
		return spacer.Warn, nil
	case "error":
		return spacer.Error, nil
	}
	return spacer.Ignore, fmt.Errorf("parse.duplicate_keys %q: want ignore, warn or error", c.Parse.DuplicateKeys)
}
