package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/glt-tools/glt/pkg/infra/cache"
)

// Cache controls the file-backed response cache. An empty dir resolves to
// <user cache dir>/glt; --no-cache disables caching entirely.
type Cache struct {
	dir      string
	ttl      time.Duration
	size     int64
	disabled bool
}

func (x *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "Directory for cached API responses",
			Category:    "Cache",
			Sources:     cli.EnvVars("GLT_CACHE_DIR"),
			Destination: &x.dir,
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "Lifetime of cached API responses",
			Category:    "Cache",
			Sources:     cli.EnvVars("GLT_CACHE_TTL"),
			Destination: &x.ttl,
			Value:       5 * time.Minute,
		},
		&cli.Int64Flag{
			Name:        "cache-size",
			Usage:       "Max entries held in the in-memory tier",
			Category:    "Cache",
			Sources:     cli.EnvVars("GLT_CACHE_SIZE"),
			Destination: &x.size,
			Value:       512,
		},
		&cli.BoolFlag{
			Name:        "no-cache",
			Usage:       "Disable the response cache",
			Category:    "Cache",
			Sources:     cli.EnvVars("GLT_NO_CACHE"),
			Destination: &x.disabled,
		},
	}
}

func (x *Cache) Enabled() bool {
	return !x.disabled
}

// Dir resolves the cache directory, falling back to the OS user cache dir.
// The shell command also keeps its history file here.
func (x *Cache) Dir() (string, error) {
	if x.dir != "" {
		return x.dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "glt"), nil
}

func (x *Cache) New() (*cache.Cache, error) {
	dir, err := x.Dir()
	if err != nil {
		return nil, err
	}
	return cache.New(dir, x.ttl, int(x.size))
}

func (x *Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", x.dir),
		slog.Duration("ttl", x.ttl),
		slog.Int64("size", x.size),
		slog.Bool("disabled", x.disabled),
	)
}
