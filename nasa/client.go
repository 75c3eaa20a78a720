package nasa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"golang.org/x/time/rate"

	"github.com/spacerhq/spacer"
)

// ErrNoNextPage is returned by Client.Next for the last page.
var ErrNoNextPage = errors.New("nasa: no next page")

// Client searches the NASA Image and Video Library. Each call issues a single
// GET request that is cancelled with its context.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
	logger     *slog.Logger
	repair     bool
	parseOpt   spacer.ParseOpt
	envelope   spacer.Envelope
	decoder    *spacer.CollectionDecoder[Space, Key]
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := spacer.ParseLocation(raw)
		if err != nil {
			return fmt.Errorf("base url: %w", err)
		}
		c.baseURL = u
		return nil
	}
}

// WithHTTPClient sets the HTTP client; http.DefaultClient is used otherwise.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc != nil {
			c.httpClient = hc
		}
		return nil
	}
}

// WithRateLimit paces requests to rps with the given burst. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps <= 0 {
			c.limiter = nil
			return nil
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithMetrics records request and decode metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) error { c.metrics = m; return nil }
}

// WithLogger sets the logger for the client and its decoder.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// WithBodyRepair retries bodies that fail to parse after running them
// through jsonrepair. Off by default.
func WithBodyRepair(enabled bool) Option {
	return func(c *Client) error { c.repair = enabled; return nil }
}

// WithParseOpt sets enforcement limits for response bodies.
func WithParseOpt(opt spacer.ParseOpt) Option {
	return func(c *Client) error { c.parseOpt = opt; return nil }
}

// WithEnvelope sets the field names leading to the result items, for
// mirrors that rename "collection". Paging metadata is read beside items.
func WithEnvelope(e spacer.Envelope) Option {
	return func(c *Client) error { c.envelope = e; return nil }
}

// NewClient builds a Client.
func NewClient(opts ...Option) (*Client, error) {
	base, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		baseURL:    base,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
		envelope:   spacer.DefaultEnvelope,
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	c.decoder = spacer.NewCollectionDecoder(DecodeSpace, Keys, spacer.WithLogger(c.logger), spacer.WithEnvelope(c.envelope))
	return c, nil
}

// SearchURL returns the request URL for q.
func (c *Client) SearchURL(q Query) *url.URL {
	u := *c.baseURL
	u.RawQuery = q.Values().Encode()
	return &u
}

// Search runs q and decodes the first page of results.
func (c *Client) Search(ctx context.Context, q Query) (Page, error) {
	return c.get(ctx, c.SearchURL(q))
}

// Next fetches the page after p.
func (c *Client) Next(ctx context.Context, p Page) (Page, error) {
	if p.Next == nil {
		return Page{}, ErrNoNextPage
	}
	return c.get(ctx, p.Next)
}

func (c *Client) get(ctx context.Context, u *url.URL) (page Page, err error) {
	start := time.Now()
	defer func() {
		took := time.Since(start)
		c.metrics.observeRequest(err, took)
		if err != nil {
			c.logger.Warn("search failed", "url", u.String(), "category", CategoryOf(err), "duration", took, "error", err)
			return
		}
		c.logger.Info("search done", "url", u.String(), "items", len(page.Items), "dropped", page.Stats.Dropped, "duration", took)
	}()

	body, err := c.fetch(ctx, u)
	if err != nil {
		return Page{}, err
	}
	raw, err := c.parse(ctx, body)
	if err != nil {
		return Page{}, parserError(err)
	}
	page, err = decodePage(c.decoder, c.envelope.Root, raw)
	if err != nil {
		return Page{}, parserError(err)
	}
	c.metrics.observeStats(page.Stats)
	return page, nil
}

// fetch performs the GET and maps transport and status failures.
func (c *Client) fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, networkError(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &ServiceError{Category: CategoryUnknown, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("search request", "url", u.String())
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", "error", closeErr.Error(), "url", u.String())
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, res.Body, 4<<10)
		return nil, &ServiceError{Category: StatusCategory(res.StatusCode), Status: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, networkError(err)
	}
	return body, nil
}

func (c *Client) parse(ctx context.Context, body []byte) (spacer.RawValue, error) {
	raw, err := spacer.ParseRawBytes(ctx, body, c.parseOpt)
	if err == nil || !c.repair || !spacer.HasCode(err, spacer.CodeParseError) {
		return raw, err
	}
	repaired, rerr := jsonrepair.JSONRepair(string(body))
	if rerr != nil {
		return nil, err
	}
	raw, rerr = spacer.ParseRawBytes(ctx, []byte(repaired), c.parseOpt)
	if rerr != nil {
		return nil, err
	}
	c.metrics.observeRepair()
	c.logger.Warn("response body needed JSON repair", "bytes", len(body))
	return raw, nil
}

// decodePage decodes the collection and reads the paging metadata beside it.
func decodePage(dec *spacer.CollectionDecoder[Space, Key], rootField string, raw spacer.RawValue) (Page, error) {
	coll, err := dec.Decode(raw)
	if err != nil {
		return Page{}, err
	}
	page := Page{Items: coll.Items, Links: coll.Links, Stats: coll.Stats}

	top, _ := raw.(map[string]any)
	root, _ := top[rootField].(map[string]any)
	if md, ok := root["metadata"].(map[string]any); ok {
		if n, err := spacer.Int64(md["total_hits"]); err == nil {
			page.TotalHits = n
		}
	}
	if arr, ok := root["links"].([]any); ok {
		for i, el := range arr {
			l, ok := el.(map[string]any)
			if !ok || l["rel"] != "next" {
				continue
			}
			href, _ := l["href"].(string)
			link, err := spacer.NewLink("next", href)
			if err != nil {
				return Page{}, spacer.Issues{{
					Code:    spacer.CodeInvalidLink,
					Path:    fmt.Sprintf("/%s/links/%d/href", rootField, i),
					Message: err.Error(),
					Cause:   err,
					Offset:  -1,
				}}
			}
			page.Next = link.Href
			break
		}
	}
	return page, nil
}
