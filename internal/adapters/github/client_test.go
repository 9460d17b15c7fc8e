package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	perr "ghstats/internal/platform/errors"
)

func newTestClient(t *testing.T, srv *httptest.Server, o Options) *Client {
	t.Helper()
	o.BaseURL = srv.URL
	if o.TokensCSV == "" {
		o.TokensCSV = "tok-a"
	}
	c := NewClient(o)
	c.sleep = func(time.Duration) {}
	return c
}

func TestOrgReposPagination(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seenTokens := map[string]int{}

	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seenTokens[r.Header.Get("Authorization")]++
		mu.Unlock()
		if r.URL.Query().Get("per_page") != "100" {
			t.Errorf("per_page = %q, want 100", r.URL.Query().Get("per_page"))
		}
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/orgs/acme/repos?per_page=100&page=2>; rel="next", <%s/orgs/acme/repos?per_page=100&page=2>; rel="last"`, base, base))
			fmt.Fprint(w, `[{"name":"alpha"},{"name":"beta"}]`)
		case "2":
			fmt.Fprint(w, `[{"name":"gamma"}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	base = srv.URL

	c := newTestClient(t, srv, Options{TokensCSV: "tok-a, tok-b"})
	repos, err := c.OrgRepos(context.Background(), "acme")
	if err != nil {
		t.Fatalf("OrgRepos: %v", err)
	}

	var names []string
	for _, r := range repos {
		names = append(names, r.Name)
	}
	if len(names) != 3 || names[0] != "alpha" || names[1] != "beta" || names[2] != "gamma" {
		t.Fatalf("repos = %v", names)
	}
	if len(seenTokens) != 2 {
		t.Fatalf("expected both tokens rotated, saw %v", seenTokens)
	}
}

func TestPullsUpdatedSinceStopsAtCutoff(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	pagesHit := map[string]int{}

	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/repos/acme/web/pulls", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		mu.Lock()
		pagesHit[page]++
		mu.Unlock()
		switch page {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/web/pulls?page=2>; rel="next"`, base))
			fmt.Fprint(w, `[
				{"number":40,"updated_at":"2025-06-04T00:00:00Z"},
				{"number":39,"updated_at":"2025-06-03T00:00:00Z"}
			]`)
		case "2":
			// page 3 must never be requested once the cutoff is crossed
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/web/pulls?page=3>; rel="next"`, base))
			fmt.Fprint(w, `[
				{"number":38,"updated_at":"2025-06-02T00:00:00Z"},
				{"number":37,"updated_at":"2025-05-01T00:00:00Z"}
			]`)
		default:
			t.Errorf("unexpected page %q fetched", page)
			fmt.Fprint(w, `[]`)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	base = srv.URL

	c := newTestClient(t, srv, Options{})
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	pulls, err := c.PullsUpdatedSince(context.Background(), "acme", "web", since)
	if err != nil {
		t.Fatalf("PullsUpdatedSince: %v", err)
	}

	var nums []int
	for _, p := range pulls {
		nums = append(nums, p.Number)
	}
	if len(nums) != 3 || nums[0] != 40 || nums[1] != 39 || nums[2] != 38 {
		t.Fatalf("pulls = %v, want [40 39 38]", nums)
	}
	if pagesHit["3"] != 0 {
		t.Fatalf("walk continued past the cutoff: %v", pagesHit)
	}
}

func TestDoNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	_, err := c.PullCommits(context.Background(), "acme", "gone", 1)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound = false for %v", err)
	}
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("error code = %v, want not found", perr.CodeOf(err))
	}
}

func TestDoRateLimitedRetries(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.Header().Set("Retry-After", "3")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `[{"sha":"abc"}]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	var slept time.Duration
	c.sleep = func(d time.Duration) { slept += d }

	commits, err := c.PullCommits(context.Background(), "acme", "web", 7)
	if err != nil {
		t.Fatalf("PullCommits: %v", err)
	}
	if len(commits) != 1 || commits[0].SHA != "abc" {
		t.Fatalf("commits = %+v", commits)
	}
	if slept < 3*time.Second {
		t.Fatalf("slept %v, want at least the Retry-After", slept)
	}
}

func TestDoRateLimitedExhaustsRetries(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{MaxRetries: 2})
	_, err := c.PullReviews(context.Background(), "acme", "web", 7)
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	if !IsRateLimited(err) {
		t.Fatalf("IsRateLimited = false for %v", err)
	}
	if !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("error code = %v, want too many requests", perr.CodeOf(err))
	}
}

func TestDoTransientRetries(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	if _, err := c.IssueComments(context.Background(), "acme", "web", 7); err != nil {
		t.Fatalf("IssueComments: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestNextPagePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "next and last",
			link: `<https://api.github.com/x?page=2>; rel="next", <https://api.github.com/x?page=9>; rel="last"`,
			want: "/x?page=2",
		},
		{
			name: "only prev",
			link: `<https://api.github.com/x?page=1>; rel="prev"`,
			want: "",
		},
		{name: "empty", link: "", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := http.Header{}
			if tc.link != "" {
				h.Set("Link", tc.link)
			}
			if got := nextPagePath(h, "https://api.github.com"); got != tc.want {
				t.Fatalf("nextPagePath = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestComputeWait(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := computeWait(0, now.Add(90*time.Second), 0, now); got != 90*time.Second {
		t.Fatalf("reset wait = %v", got)
	}
	if got := computeWait(0, time.Time{}, 7, now); got != 7*time.Second {
		t.Fatalf("retry-after wait = %v", got)
	}
	if got := computeWait(100, now.Add(time.Hour), 0, now); got != 0 {
		t.Fatalf("wait with remaining budget = %v", got)
	}
	if got := computeWait(0, now.Add(-time.Minute), 0, now); got != 0 {
		t.Fatalf("wait past reset = %v", got)
	}
}
