// Package gitlabapi wraps authenticated calls to the GitLab v4 REST API.
// It owns the token-bucket rate limit, the retry policy and cursor-style
// pagination; resource methods return fully materialized lists.
package gitlabapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/time/rate"

	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/infra/cache"
	"github.com/glt-tools/glt/pkg/infra/retry"
	"github.com/glt-tools/glt/pkg/utils/logging"
	"github.com/glt-tools/glt/pkg/utils/safe"
)

// Config carries the recognized client settings after layering defaults,
// the config file, environment variables and flags.
type Config struct {
	BaseURL    string            `validate:"required,url"`
	Token      types.AccessToken `validate:"required"`
	RateLimit  float64           `validate:"gt=0"`        // requests per second
	Timeout    time.Duration     `validate:"gt=0"`        // per-request socket timeout
	RetryCount int               `validate:"gte=0"`       // retries after the first attempt
	PageSize   int               `validate:"gt=0,lte=100"`
	MaxPages   int               `validate:"gt=0"` // hard cap per list call
	VerifySSL  bool
}

func (x *Config) Validate() error {
	if err := validator.New().Struct(x); err != nil {
		return goerr.Wrap(types.ErrValidation, "invalid client configuration", goerr.V("cause", err.Error()))
	}
	return nil
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	apiBase  string
	token    types.AccessToken
	http     HTTPClient
	limiter  *rate.Limiter
	policy   retry.Policy
	cache    *cache.Cache
	pageSize int
	maxPages int
}

type Option func(*Client)

func WithHTTPClient(hc HTTPClient) Option {
	return func(x *Client) {
		x.http = hc
	}
}

// WithCache enables the read cache for GET responses. Write calls
// invalidate the touched project scope.
func WithCache(c *cache.Cache) Option {
	return func(x *Client) {
		x.cache = c
	}
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(x *Client) {
		x.policy = p
	}
}

func WithLimiter(l *rate.Limiter) Option {
	return func(x *Client) {
		x.limiter = l
	}
}

func New(cfg Config, options ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}

	policy := retry.Default()
	policy.MaxAttempts = cfg.RetryCount

	transport := http.DefaultTransport
	if !cfg.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- explicit verify_ssl=false opt-out
		}
	}

	x := &Client{
		apiBase:  strings.TrimRight(cfg.BaseURL, "/") + "/api/v4",
		token:    cfg.Token,
		http:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		policy:   policy,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
	}

	for _, opt := range options {
		opt(x)
	}

	return x, nil
}

// apiError keeps the HTTP status and response fragment alongside the
// taxonomy sentinel so errors.Is works on the category.
type apiError struct {
	base       error
	status     int
	body       string
	retryAfter time.Duration
}

func (x *apiError) Error() string {
	return fmt.Sprintf("%s (status=%d): %s", x.base.Error(), x.status, x.body)
}

func (x *apiError) Unwrap() error {
	return x.base
}

// RetryAfter implements retry.DelayHint for 429 responses.
func (x *apiError) RetryAfter() time.Duration {
	return x.retryAfter
}

func mapStatus(status int, body []byte, header http.Header) error {
	snippet := string(body)
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &apiError{base: types.ErrAuthentication, status: status, body: snippet}

	case status == http.StatusTooManyRequests:
		var after time.Duration
		if v := header.Get("Retry-After"); v != "" {
			if sec, err := strconv.Atoi(v); err == nil {
				after = time.Duration(sec) * time.Second
			}
		}
		return &apiError{base: types.ErrRateLimited, status: status, body: snippet, retryAfter: after}

	case status == http.StatusNotFound:
		return &apiError{base: types.ErrNotFound, status: status, body: snippet}

	case status == http.StatusConflict:
		return &apiError{base: types.ErrConflict, status: status, body: snippet}

	case status == http.StatusBadRequest && strings.Contains(snippet, "already exists"):
		return &apiError{base: types.ErrConflict, status: status, body: snippet}

	case status >= 500:
		return &apiError{base: types.ErrTransient, status: status, body: snippet}

	default:
		return &apiError{base: types.ErrValidation, status: status, body: snippet}
	}
}

// cachedPage is the on-disk shape of one GET response: the body plus the
// pagination cursor so replayed pages keep walking the list.
type cachedPage struct {
	NextPage string `json:"next_page"`
	Body     []byte `json:"body"`
}

// invalidationScope returns the cache prefix a write to path touches: the
// resource root ("projects"). Project snapshots are cached under
// path-escaped keys ("projects/org%2Fapp"), which a scope narrowed to the
// numeric ID would miss.
func invalidationScope(path string) string {
	parts := strings.SplitN(path, "/", 2)
	return parts[0]
}

// do performs one authenticated request with rate limiting and retries, and
// decodes the JSON response into out (when out is non-nil). The returned
// string is the X-Next-Page cursor, empty on the last page.
func (x *Client) do(ctx context.Context, method, path string, query url.Values, reqBody, out any) (string, error) {
	if query == nil {
		query = url.Values{}
	}
	cacheKey := path + "?" + query.Encode()

	if method == http.MethodGet && x.cache != nil {
		if raw, ok := x.cache.Get(cacheKey); ok {
			var page cachedPage
			if err := json.Unmarshal(raw, &page); err == nil {
				if out != nil {
					if err := json.Unmarshal(page.Body, out); err == nil {
						logging.From(ctx).Debug("cache hit", "path", path)
						return page.NextPage, nil
					}
				} else {
					return page.NextPage, nil
				}
			}
		}
	}

	var payload []byte
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return "", goerr.Wrap(err, "failed to encode request body")
		}
		payload = raw
	}

	reqURL := x.apiBase + "/" + path
	if enc := query.Encode(); enc != "" {
		reqURL += "?" + enc
	}

	var respBody []byte
	var nextPage string

	attempt := func(ctx context.Context) error {
		if err := x.limiter.Wait(ctx); err != nil {
			return goerr.Wrap(err, "rate limiter wait canceled")
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return goerr.Wrap(err, "failed to build request", goerr.V("url", reqURL))
		}
		req.Header.Set("PRIVATE-TOKEN", x.token.Secret())
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := x.http.Do(req)
		if err != nil {
			return goerr.Wrap(types.ErrTransient, "request failed",
				goerr.V("method", method),
				goerr.V("path", path),
				goerr.V("cause", err.Error()),
			)
		}
		defer safe.Close(resp.Body)

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return goerr.Wrap(types.ErrTransient, "failed to read response", goerr.V("path", path))
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return mapStatus(resp.StatusCode, raw, resp.Header)
		}

		respBody = raw
		nextPage = resp.Header.Get("X-Next-Page")
		return nil
	}

	if err := x.policy.Do(ctx, attempt); err != nil {
		return "", goerr.Wrap(err, "API call failed",
			goerr.V("method", method),
			goerr.V("path", path),
		)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return "", goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
		}
	}

	if x.cache != nil {
		if method == http.MethodGet {
			if raw, err := json.Marshal(cachedPage{NextPage: nextPage, Body: respBody}); err == nil {
				x.cache.Set(cacheKey, raw)
			}
		} else {
			x.cache.Invalidate(invalidationScope(path))
		}
	}

	return nextPage, nil
}

// listPages materializes a paginated list, following X-Next-Page until the
// API stops advertising one. The page count is capped: exceeding MaxPages
// fails with ErrTooManyPages rather than iterating without bound.
func listPages[T any](ctx context.Context, x *Client, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(x.pageSize))

	var all []T
	page := "1"
	for fetched := 0; ; fetched++ {
		if fetched >= x.maxPages {
			return nil, goerr.Wrap(types.ErrTooManyPages, "list call exceeded page cap",
				goerr.V("path", path),
				goerr.V("max_pages", x.maxPages),
				goerr.V("items", len(all)),
			)
		}

		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", page)

		var items []T
		next, err := x.do(ctx, http.MethodGet, path, q, nil, &items)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if next == "" {
			return all, nil
		}
		page = next
	}
}
