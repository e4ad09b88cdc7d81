// Package cache is a read-through store for GET responses: an LRU in memory
// backed by JSON files with an absolute expiry. Keys are the logical
// "path?query" of the request; file names are the SHA-256 of the key so
// arbitrary query strings stay filesystem safe.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/utils/safe"
)

type entry struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
	Body      []byte    `json:"body"`
}

type Cache struct {
	dir string
	ttl time.Duration
	mem *lru.Cache[string, *entry]
	now func() time.Time
}

type Option func(*Cache)

// WithClock replaces the wall clock for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(x *Cache) {
		x.now = now
	}
}

// New opens (and creates if needed) a cache directory. size bounds the
// in-memory tier only; the file tier is bounded by TTL sweeps.
func New(dir string, ttl time.Duration, size int, options ...Option) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create cache directory", goerr.V("dir", dir))
	}
	mem, err := lru.New[string, *entry](size)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LRU")
	}

	x := &Cache{dir: dir, ttl: ttl, mem: mem, now: time.Now}
	for _, opt := range options {
		opt(x)
	}
	return x, nil
}

func (x *Cache) filePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(x.dir, hex.EncodeToString(sum[:])+".json")
}

// Get returns the cached body for key if present and not expired.
func (x *Cache) Get(key string) ([]byte, bool) {
	if e, ok := x.mem.Get(key); ok {
		if x.now().Before(e.ExpiresAt) {
			return e.Body, true
		}
		x.mem.Remove(key)
	}

	raw, err := os.ReadFile(x.filePath(key))
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		safe.Remove(x.filePath(key))
		return nil, false
	}
	if !x.now().Before(e.ExpiresAt) {
		safe.Remove(x.filePath(key))
		return nil, false
	}
	x.mem.Add(key, &e)
	return e.Body, true
}

// Set stores body under key in both tiers. Errors writing the file tier are
// swallowed: a cache is best effort.
func (x *Cache) Set(key string, body []byte) {
	e := &entry{
		Key:       key,
		ExpiresAt: x.now().Add(x.ttl),
		Body:      body,
	}
	x.mem.Add(key, e)

	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	_ = os.WriteFile(x.filePath(key), raw, 0600)
}

// Invalidate drops every entry whose logical key starts with prefix. Called
// by the API client after any write under a project path.
func (x *Cache) Invalidate(prefix string) {
	for _, key := range x.mem.Keys() {
		if strings.HasPrefix(key, prefix) {
			x.mem.Remove(key)
		}
	}

	entries, err := os.ReadDir(x.dir)
	if err != nil {
		return
	}
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(x.dir, de.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			safe.Remove(path)
			continue
		}
		if strings.HasPrefix(e.Key, prefix) {
			safe.Remove(path)
		}
	}
}

// Sweep removes expired files. Run once at startup.
func (x *Cache) Sweep() {
	entries, err := os.ReadDir(x.dir)
	if err != nil {
		return
	}
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		path := filepath.Join(x.dir, de.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil || !x.now().Before(e.ExpiresAt) {
			safe.Remove(path)
		}
	}
}
