package records

import (
	"encoding/json"
	"testing"
)

func TestKindRoundTrip(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}

	if _, err := ParseKind("metrics"); err == nil {
		t.Fatal("ParseKind accepted an unknown name")
	}
}

func TestKindKeyColumns(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind Kind
		want []string
	}{
		{KindPullRequest, []string{"pr_number", "repository", "organization"}},
		{KindCommit, []string{"sha", "repository", "organization"}},
		{KindReview, []string{"review_id", "repository", "organization"}},
		{KindReviewComment, []string{"comment_id", "repository", "organization"}},
		{KindIssueComment, []string{"comment_id", "repository", "organization"}},
	}
	for _, tc := range cases {
		got := tc.kind.KeyColumns()
		if len(got) != len(tc.want) {
			t.Fatalf("%s KeyColumns = %v, want %v", tc.kind, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s KeyColumns = %v, want %v", tc.kind, got, tc.want)
			}
		}
	}

	if Kind(0).KeyColumns() != nil {
		t.Fatal("invalid kind should have no key columns")
	}
}

func TestKindPrototype(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		p := k.Prototype()
		if p == nil {
			t.Fatalf("%s has no prototype", k)
		}
		if p.RecordKind() != k {
			t.Fatalf("%s prototype reports kind %s", k, p.RecordKind())
		}
	}
	if Kind(0).Prototype() != nil {
		t.Fatal("invalid kind should have no prototype")
	}
}

func TestKindJSONMapKeys(t *testing.T) {
	t.Parallel()

	in := map[Kind]int64{KindPullRequest: 3, KindCommit: 7}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[Kind]int64
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out[KindPullRequest] != 3 || out[KindCommit] != 7 {
		t.Fatalf("round trip lost counts: %v", out)
	}

	// invalid kinds must not serialize silently
	if _, err := json.Marshal(map[Kind]int64{Kind(42): 1}); err == nil {
		t.Fatal("expected marshal error for invalid kind key")
	}
}

func TestRowKeys(t *testing.T) {
	t.Parallel()

	rows := []Row{
		PullRequest{PRNumber: 12, Repository: "frontend", Organization: "acme"},
		Commit{SHA: "abc123", Repository: "frontend", Organization: "acme"},
		Review{ReviewID: 99, Repository: "frontend", Organization: "acme"},
		ReviewComment{CommentID: 7, Repository: "frontend", Organization: "acme"},
		IssueComment{CommentID: 8, Repository: "frontend", Organization: "acme"},
	}
	wantIDs := []string{"12", "abc123", "99", "7", "8"}

	for i, r := range rows {
		k := r.Key()
		if !k.Complete() {
			t.Fatalf("%s key incomplete: %+v", r.RecordKind(), k)
		}
		if k.ID != wantIDs[i] {
			t.Fatalf("%s key id = %q, want %q", r.RecordKind(), k.ID, wantIDs[i])
		}
	}

	// a zero identifier must not look like a valid key
	if (PullRequest{Repository: "frontend", Organization: "acme"}).Key().Complete() {
		t.Fatal("pr without number reported a complete key")
	}
	if (Commit{SHA: "abc", Organization: "acme"}).Key().Complete() {
		t.Fatal("commit without repository reported a complete key")
	}
}

func TestSetRowsAndCounts(t *testing.T) {
	t.Parallel()

	s := &Set{
		PullRequests: []PullRequest{{PRNumber: 1}, {PRNumber: 2}},
		Commits:      []Commit{{SHA: "a"}},
	}

	if got := s.Count(KindPullRequest); got != 2 {
		t.Fatalf("Count(pull_requests) = %d, want 2", got)
	}
	if got := s.Total(); got != 3 {
		t.Fatalf("Total = %d, want 3", got)
	}
	if got := len(s.Rows(KindCommit)); got != 1 {
		t.Fatalf("Rows(commits) len = %d, want 1", got)
	}
	if got := len(s.Rows(KindReview)); got != 0 {
		t.Fatalf("Rows(reviews) len = %d, want 0", got)
	}

	counts := s.Counts()
	if len(counts) != 2 || counts[KindPullRequest] != 2 || counts[KindCommit] != 1 {
		t.Fatalf("Counts = %v", counts)
	}
}
