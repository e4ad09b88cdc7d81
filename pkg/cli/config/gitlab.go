package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/glt-tools/glt/pkg/domain/interfaces"
	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/infra/gitlabapi"
)

// GitLab collects the API client settings. Flag defaults are overridden by
// .env (loaded before flag parsing), then real environment variables, then
// explicit flags.
type GitLab struct {
	baseURL    string
	token      types.AccessToken `masq:"secret"`
	rateLimit  float64
	timeout    time.Duration
	retryCount int64
	pageSize   int64
	maxPages   int64
	verifySSL  bool
}

func (x *GitLab) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gitlab-url",
			Usage:       "GitLab base URL (e.g. https://gitlab.example.com)",
			Category:    "GitLab",
			Sources:     cli.EnvVars("GITLAB_URL"),
			Destination: &x.baseURL,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "gitlab-token",
			Usage:       "GitLab personal access token",
			Category:    "GitLab",
			Sources:     cli.EnvVars("GITLAB_API_TOKEN"),
			Destination: (*string)(&x.token),
			Required:    true,
		},
		&cli.FloatFlag{
			Name:        "rate-limit",
			Usage:       "Max API requests per second",
			Category:    "GitLab",
			Sources:     cli.EnvVars("GLT_RATE_LIMIT"),
			Destination: &x.rateLimit,
			Value:       3,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Per-request timeout",
			Category:    "GitLab",
			Sources:     cli.EnvVars("GLT_TIMEOUT"),
			Destination: &x.timeout,
			Value:       30 * time.Second,
		},
		&cli.Int64Flag{
			Name:        "retry-count",
			Usage:       "Retries after the first attempt for transient failures",
			Category:    "GitLab",
			Sources:     cli.EnvVars("GLT_RETRY_COUNT"),
			Destination: &x.retryCount,
			Value:       3,
		},
		&cli.Int64Flag{
			Name:        "page-size",
			Usage:       "Items per page for list calls (max 100)",
			Category:    "GitLab",
			Sources:     cli.EnvVars("GLT_PAGE_SIZE"),
			Destination: &x.pageSize,
			Value:       100,
		},
		&cli.Int64Flag{
			Name:        "max-pages",
			Usage:       "Hard cap of pages fetched per list call",
			Category:    "GitLab",
			Sources:     cli.EnvVars("GLT_MAX_PAGES"),
			Destination: &x.maxPages,
			Value:       100,
		},
		&cli.BoolFlag{
			Name:        "verify-ssl",
			Usage:       "Verify the TLS certificate of the GitLab host",
			Category:    "GitLab",
			Sources:     cli.EnvVars("GLT_VERIFY_SSL"),
			Destination: &x.verifySSL,
			Value:       true,
		},
	}
}

// NewClient validates the assembled settings and builds the API client.
func (x *GitLab) NewClient(cacheConfig *Cache) (interfaces.GitLab, error) {
	cfg := gitlabapi.Config{
		BaseURL:    x.baseURL,
		Token:      x.token,
		RateLimit:  x.rateLimit,
		Timeout:    x.timeout,
		RetryCount: int(x.retryCount),
		PageSize:   int(x.pageSize),
		MaxPages:   int(x.maxPages),
		VerifySSL:  x.verifySSL,
	}

	var options []gitlabapi.Option
	if cacheConfig != nil && cacheConfig.Enabled() {
		c, err := cacheConfig.New()
		if err != nil {
			return nil, err
		}
		options = append(options, gitlabapi.WithCache(c))
	}

	return gitlabapi.New(cfg, options...)
}

func (x *GitLab) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("baseURL", x.baseURL),
		slog.Int("token.len", len(x.token)),
		slog.Float64("rateLimit", x.rateLimit),
		slog.Duration("timeout", x.timeout),
		slog.Int64("retryCount", x.retryCount),
		slog.Int64("pageSize", x.pageSize),
		slog.Int64("maxPages", x.maxPages),
		slog.Bool("verifySSL", x.verifySSL),
	)
}
