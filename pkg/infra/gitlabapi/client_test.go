package gitlabapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/glt-tools/glt/pkg/domain/types"
	"github.com/glt-tools/glt/pkg/infra/cache"
	"github.com/glt-tools/glt/pkg/infra/gitlabapi"
	"github.com/glt-tools/glt/pkg/infra/retry"
)

func testConfig(baseURL string) gitlabapi.Config {
	return gitlabapi.Config{
		BaseURL:    baseURL,
		Token:      "test-token",
		RateLimit:  1000,
		Timeout:    5 * time.Second,
		RetryCount: 2,
		PageSize:   2,
		MaxPages:   10,
		VerifySSL:  true,
	}
}

func fastPolicy(slept *[]time.Duration) retry.Policy {
	return retry.Policy{
		MaxAttempts: 2,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			if slept != nil {
				*slept = append(*slept, d)
			}
			return nil
		},
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := testConfig("https://gitlab.example.com")
		gt.NoError(t, cfg.Validate())
	})

	t.Run("missing token", func(t *testing.T) {
		cfg := testConfig("https://gitlab.example.com")
		cfg.Token = ""
		gt.Error(t, cfg.Validate())
	})

	t.Run("page size over API maximum", func(t *testing.T) {
		cfg := testConfig("https://gitlab.example.com")
		cfg.PageSize = 500
		gt.Error(t, cfg.Validate())
	})
}

func TestPagination(t *testing.T) {
	// 5 branches over 3 pages of size 2: client must return exactly 5
	// items with no duplicates.
	branches := []string{"main", "develop", "feature/a", "feature/b", "feature/c"}

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		gt.V(t, r.Header.Get("PRIVATE-TOKEN")).Equal("test-token")
		gt.V(t, r.URL.Query().Get("per_page")).Equal("2")

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		start := (page - 1) * 2
		end := min(start+2, len(branches))

		var items []map[string]any
		for _, name := range branches[start:end] {
			items = append(items, map[string]any{"name": name})
		}
		if end < len(branches) {
			w.Header().Set("X-Next-Page", strconv.Itoa(page+1))
		}
		gt.NoError(t, json.NewEncoder(w).Encode(items))
	}))
	defer srv.Close()

	client := gt.R1(gitlabapi.New(testConfig(srv.URL))).NoError(t)
	got := gt.R1(client.ListBranches(context.Background(), 42)).NoError(t)

	gt.A(t, got).Length(5)
	gt.V(t, requests).Equal(3)
	seen := map[string]bool{}
	for _, b := range got {
		gt.False(t, seen[b.Name])
		seen[b.Name] = true
	}
}

func TestPaginationPageCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Pathological API that always advertises another page.
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-Next-Page", strconv.Itoa(page+1))
		fmt.Fprint(w, `[{"name":"b"}]`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxPages = 3
	client := gt.R1(gitlabapi.New(cfg)).NoError(t)

	_, err := client.ListBranches(context.Background(), 42)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrTooManyPages))
}

func TestRetryOnRateLimit(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests <= 2 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"id":1,"username":"tester","state":"active"}`)
	}))
	defer srv.Close()

	var slept []time.Duration
	client := gt.R1(gitlabapi.New(testConfig(srv.URL),
		gitlabapi.WithRetryPolicy(fastPolicy(&slept)),
	)).NoError(t)

	user := gt.R1(client.Verify(context.Background())).NoError(t)
	gt.V(t, user.Username).Equal("tester")
	gt.V(t, requests).Equal(3)
	gt.A(t, slept).Length(2)
	gt.V(t, slept[0]).Equal(time.Second) // Retry-After wins over backoff
}

func TestNoRetryOnNotFound(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"404 Branch Not Found"}`)
	}))
	defer srv.Close()

	client := gt.R1(gitlabapi.New(testConfig(srv.URL),
		gitlabapi.WithRetryPolicy(fastPolicy(nil)),
	)).NoError(t)

	_, err := client.GetBranch(context.Background(), 42, "trunk")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrNotFound))
	gt.V(t, requests).Equal(1)
}

func TestRetryOnServerError(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"name":"main","protected":true}`)
	}))
	defer srv.Close()

	client := gt.R1(gitlabapi.New(testConfig(srv.URL),
		gitlabapi.WithRetryPolicy(fastPolicy(nil)),
	)).NoError(t)

	branch := gt.R1(client.GetBranch(context.Background(), 42, "main")).NoError(t)
	gt.True(t, branch.Protected)
	gt.V(t, requests).Equal(2)
}

func TestAuthenticationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"401 Unauthorized"}`)
	}))
	defer srv.Close()

	client := gt.R1(gitlabapi.New(testConfig(srv.URL))).NoError(t)

	_, err := client.Verify(context.Background())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrAuthentication))
}

func TestConflictOnBadRequestAlreadyExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Branch already exists"}`)
	}))
	defer srv.Close()

	client := gt.R1(gitlabapi.New(testConfig(srv.URL))).NoError(t)

	_, err := client.CreateBranch(context.Background(), 42, "main", "trunk")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrConflict))
}

func TestSearchGroupExactMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.V(t, r.URL.Query().Get("search")).Equal("platform")
		fmt.Fprint(w, `[
			{"id":1,"name":"platform-legacy","path":"platform-legacy","full_path":"org/platform-legacy"},
			{"id":2,"name":"Platform","path":"platform","full_path":"org/platform"}
		]`)
	}))
	defer srv.Close()

	client := gt.R1(gitlabapi.New(testConfig(srv.URL))).NoError(t)

	group := gt.R1(client.SearchGroup(context.Background(), "platform")).NoError(t)
	gt.V(t, int64(group.ID)).Equal(int64(2))

	_, err := client.SearchGroup(context.Background(), "no-such-group")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrNotFound))
}

func TestCacheHitAndWriteInvalidation(t *testing.T) {
	var listCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			listCalls++
			fmt.Fprint(w, `[{"name":"main"}]`)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := gt.R1(cache.New(t.TempDir(), time.Minute, 16)).NoError(t)
	client := gt.R1(gitlabapi.New(testConfig(srv.URL), gitlabapi.WithCache(c))).NoError(t)

	ctx := context.Background()
	gt.R1(client.ListBranches(ctx, 42)).NoError(t)
	gt.R1(client.ListBranches(ctx, 42)).NoError(t)
	gt.V(t, listCalls).Equal(1) // second read served from cache

	// A write under the same project drops the cached read.
	gt.NoError(t, client.DeleteBranch(ctx, 42, "trunk"))
	gt.R1(client.ListBranches(ctx, 42)).NoError(t)
	gt.V(t, listCalls).Equal(2)
}

func TestProjectCacheDroppedOnDefaultBranchUpdate(t *testing.T) {
	defaultBranch := "trunk"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintf(w, `{"id":42,"path_with_namespace":"org/app","default_branch":%q}`, defaultBranch)
		case http.MethodPut:
			defaultBranch = "main"
			fmt.Fprint(w, `{}`)
		}
	}))
	defer srv.Close()

	c := gt.R1(cache.New(t.TempDir(), time.Minute, 16)).NoError(t)
	client := gt.R1(gitlabapi.New(testConfig(srv.URL), gitlabapi.WithCache(c))).NoError(t)

	ctx := context.Background()
	project := gt.R1(client.GetProject(ctx, "org/app")).NoError(t)
	gt.V(t, project.DefaultBranch).Equal("trunk")

	// The update addresses the project by numeric ID while the snapshot is
	// cached under the escaped path. The write must still drop it.
	gt.NoError(t, client.UpdateDefaultBranch(ctx, 42, "main"))
	project = gt.R1(client.GetProject(ctx, "org/app")).NoError(t)
	gt.V(t, project.DefaultBranch).Equal("main")
}

func TestCommitQueryWindow(t *testing.T) {
	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gt.V(t, q.Get("ref_name")).Equal("main")
		gt.V(t, q.Get("with_stats")).Equal("true")
		gt.V(t, q.Get("since")).Equal(since.Format(time.RFC3339))
		gt.V(t, q.Get("until")).Equal(until.Format(time.RFC3339))
		fmt.Fprint(w, `[{"id":"abc","author_name":"ann","stats":{"additions":3,"deletions":1}}]`)
	}))
	defer srv.Close()

	client := gt.R1(gitlabapi.New(testConfig(srv.URL))).NoError(t)
	commits := gt.R1(client.ListCommits(context.Background(), 42, "main", since, until)).NoError(t)

	gt.A(t, commits).Length(1)
	gt.V(t, commits[0].Stats.Additions).Equal(3)
}
