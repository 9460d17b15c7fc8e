package config

import (
	"testing"
	"time"

	kit "ghstats/internal/platform/testkit"
)

func TestPrefixNesting(t *testing.T) {
	root := New()
	gh := root.Prefix("GHSTATS_")
	if got := gh.key("ORG"); got != "GHSTATS_ORG" {
		t.Fatalf("key() = %q, want %q", got, "GHSTATS_ORG")
	}
	// nested prefix
	ghBQ := gh.Prefix("BQ_")
	if got := ghBQ.key("DATASET"); got != "GHSTATS_BQ_DATASET" {
		t.Fatalf("nested key() = %q, want %q", got, "GHSTATS_BQ_DATASET")
	}
}

func TestMayStringTrimsAndDefaults(t *testing.T) {
	c := New().Prefix("GHSTATS_")
	if got := c.MayString("GCS_BUCKET", "github-stats-data"); got != "github-stats-data" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("GHSTATS_ORG", " acme ")
	if got := c.MayString("ORG", ""); got != "acme" {
		t.Fatalf("MayString should trim, got %q", got)
	}
	t.Setenv("GHSTATS_BQ_PROJECT", "   ")
	if got := c.MayString("BQ_PROJECT", "fallback"); got != "fallback" {
		t.Fatalf("whitespace-only value should fall back, got %q", got)
	}
}

func TestMayIntFallsBack(t *testing.T) {
	c := New().Prefix("COLLECT_")
	if got := c.MayInt("MAX_WORKERS", 10); got != 10 {
		t.Fatalf("MayInt default = %d, want 10", got)
	}
	t.Setenv("COLLECT_MAX_WORKERS", " 4 ")
	if got := c.MayInt("MAX_WORKERS", 10); got != 4 {
		t.Fatalf("MayInt = %d, want 4", got)
	}
	t.Setenv("COLLECT_REQUESTS_PER_HOUR", "lots")
	if got := c.MayInt("REQUESTS_PER_HOUR", 4500); got != 4500 {
		t.Fatalf("malformed int should fall back, got %d", got)
	}
}

func TestMayBoolParses(t *testing.T) {
	c := New().Prefix("COLLECT_")
	if !c.MayBool("PERSIST", true) {
		t.Fatalf("MayBool default true expected")
	}
	t.Setenv("COLLECT_PERSIST", "0")
	if c.MayBool("PERSIST", true) {
		t.Fatalf("PERSIST=0 should read false")
	}
	t.Setenv("COLLECT_PERSIST", "nope")
	if !c.MayBool("PERSIST", true) {
		t.Fatalf("malformed bool should fall back")
	}
}

func TestMayDurationParses(t *testing.T) {
	c := New().Prefix("TRIGGER_")
	if got := c.MayDuration("RUN_TIMEOUT", 15*time.Minute); got != 15*time.Minute {
		t.Fatalf("MayDuration default expected, got %v", got)
	}
	t.Setenv("TRIGGER_RUN_TIMEOUT", "30m")
	if got := c.MayDuration("RUN_TIMEOUT", 15*time.Minute); got != 30*time.Minute {
		t.Fatalf("MayDuration = %v, want 30m", got)
	}
	t.Setenv("TRIGGER_RUN_TIMEOUT", "soon")
	if got := c.MayDuration("RUN_TIMEOUT", 15*time.Minute); got != 15*time.Minute {
		t.Fatalf("malformed duration should fall back, got %v", got)
	}
}

func TestMayCSVSplitsAndDropsBlanks(t *testing.T) {
	c := New().Prefix("GHSTATS_")
	if got := c.MayCSV("REPOS", nil); got != nil {
		t.Fatalf("MayCSV missing should return the default, got %#v", got)
	}
	t.Setenv("GHSTATS_REPOS", " backend, api , ,cli ,, ")
	got := c.MayCSV("REPOS", nil)
	want := []string{"backend", "api", "cli"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV len = %d, want %d (%#v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// commas and blanks only: treat as unset
	t.Setenv("GHSTATS_REPOS", " , ,  ,")
	def := []string{"backend"}
	if got := c.MayCSV("REPOS", def); len(got) != 1 || got[0] != "backend" {
		t.Fatalf("all-blank CSV should fall back, got %#v", got)
	}
}

func TestMayEnumValidates(t *testing.T) {
	c := New().Prefix("GHSTATS_")

	if got := c.MayEnum("WAREHOUSE_DRIVER", "bigquery", "bigquery", "postgres"); got != "bigquery" {
		t.Fatalf("MayEnum default = %q, want bigquery", got)
	}

	// matching is case-insensitive but the original spelling is returned
	t.Setenv("GHSTATS_WAREHOUSE_DRIVER", "Postgres")
	if got := c.MayEnum("WAREHOUSE_DRIVER", "bigquery", "bigquery", "postgres"); got != "Postgres" {
		t.Fatalf("MayEnum allowed value = %q, want Postgres", got)
	}

	t.Setenv("GHSTATS_WAREHOUSE_DRIVER", "oracle")
	kit.MustPanic(t, func() { _ = c.MayEnum("WAREHOUSE_DRIVER", "bigquery", "bigquery", "postgres") })

	// empty default with a missing env stays empty without panicking
	if got := c.MayEnum("LOG_FORMAT", "", "json", "console"); got != "" {
		t.Fatalf("MayEnum empty default = %q, want empty", got)
	}
}
