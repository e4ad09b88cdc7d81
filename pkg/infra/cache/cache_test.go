package cache_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/glt-tools/glt/pkg/infra/cache"
)

func TestGetSet(t *testing.T) {
	c := gt.R1(cache.New(t.TempDir(), time.Minute, 16)).NoError(t)

	_, ok := c.Get("projects/1/repository/branches?per_page=100")
	gt.False(t, ok)

	c.Set("projects/1/repository/branches?per_page=100", []byte(`[{"name":"main"}]`))
	body, ok := c.Get("projects/1/repository/branches?per_page=100")
	gt.True(t, ok)
	gt.V(t, string(body)).Equal(`[{"name":"main"}]`)
}

func TestFileTierSurvivesMemoryEviction(t *testing.T) {
	dir := t.TempDir()
	c := gt.R1(cache.New(dir, time.Minute, 1)).NoError(t)

	c.Set("projects/1/issues?page=1", []byte("a"))
	c.Set("projects/1/issues?page=2", []byte("b")) // evicts page=1 from memory

	body, ok := c.Get("projects/1/issues?page=1")
	gt.True(t, ok)
	gt.V(t, string(body)).Equal("a")
}

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := gt.R1(cache.New(t.TempDir(), 10*time.Minute, 16, cache.WithClock(clock))).NoError(t)

	c.Set("projects/2/repository/commits", []byte("x"))
	_, ok := c.Get("projects/2/repository/commits")
	gt.True(t, ok)

	now = now.Add(11 * time.Minute)
	_, ok = c.Get("projects/2/repository/commits")
	gt.False(t, ok)
}

func TestInvalidatePrefix(t *testing.T) {
	c := gt.R1(cache.New(t.TempDir(), time.Minute, 16)).NoError(t)

	c.Set("projects/7/repository/branches", []byte("a"))
	c.Set("projects/7/merge_requests", []byte("b"))
	c.Set("projects/8/repository/branches", []byte("c"))

	c.Invalidate("projects/7/")

	_, ok := c.Get("projects/7/repository/branches")
	gt.False(t, ok)
	_, ok = c.Get("projects/7/merge_requests")
	gt.False(t, ok)
	_, ok = c.Get("projects/8/repository/branches")
	gt.True(t, ok)
}

func TestSweepRemovesExpiredFiles(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	dir := t.TempDir()
	c := gt.R1(cache.New(dir, time.Minute, 16, cache.WithClock(clock))).NoError(t)

	c.Set("groups/1/projects", []byte("x"))
	now = now.Add(2 * time.Minute)
	c.Sweep()

	// A fresh cache over the same dir must not see the swept entry.
	c2 := gt.R1(cache.New(dir, time.Minute, 16, cache.WithClock(clock))).NoError(t)
	_, ok := c2.Get("groups/1/projects")
	gt.False(t, ok)
}
