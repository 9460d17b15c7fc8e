package records

import (
	"strconv"
	"time"
)

// Row is one fetched unit of any kind. Rows are immutable once fetched;
// a later fetch of the same natural key supersedes, never mutates
type Row interface {
	// RecordKind tags the row with its variant
	RecordKind() Kind
	// Key extracts the natural key; empty fields mean the row is unpublishable
	Key() RowKey
}

// RowKey identifies one logical record within its kind. ID is the
// kind-specific identifier rendered as a string (pr number, sha, review id,
// comment id) so keys stay comparable across kinds
type RowKey struct {
	ID           string
	Repository   string
	Organization string
}

// Complete reports whether every key field is present
func (k RowKey) Complete() bool {
	return k.ID != "" && k.Repository != "" && k.Organization != ""
}

// PullRequest is one pull request as published to the warehouse
type PullRequest struct {
	PRNumber           int        `json:"pr_number" bigquery:"pr_number" validate:"required"`
	Title              string     `json:"title" bigquery:"title"`
	State              string     `json:"state" bigquery:"state"`
	Author             string     `json:"author" bigquery:"author"`
	AuthorType         string     `json:"author_type" bigquery:"author_type"`
	CreatedAt          time.Time  `json:"created_at" bigquery:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" bigquery:"updated_at"`
	ClosedAt           *time.Time `json:"closed_at,omitempty" bigquery:"closed_at"`
	MergedAt           *time.Time `json:"merged_at,omitempty" bigquery:"merged_at"`
	Repository         string     `json:"repository" bigquery:"repository" validate:"required"`
	Organization       string     `json:"organization" bigquery:"organization" validate:"required"`
	URL                string     `json:"url" bigquery:"url"`
	Additions          int        `json:"additions" bigquery:"additions"`
	Deletions          int        `json:"deletions" bigquery:"deletions"`
	ChangedFiles       int        `json:"changed_files" bigquery:"changed_files"`
	Labels             []string   `json:"labels" bigquery:"labels"`
	SizeLabel          string     `json:"size_label" bigquery:"size_label"`
	CommitCount        int        `json:"commit_count" bigquery:"commit_count"`
	ReviewCount        int        `json:"review_count" bigquery:"review_count"`
	ReviewCommentCount int        `json:"review_comment_count" bigquery:"review_comment_count"`
	IssueCommentCount  int        `json:"issue_comment_count" bigquery:"issue_comment_count"`
	IsDraft            bool       `json:"is_draft" bigquery:"is_draft"`
	IsMerged           bool       `json:"is_merged" bigquery:"is_merged"`
	MergeCommitSHA     string     `json:"merge_commit_sha" bigquery:"merge_commit_sha"`
	BaseRef            string     `json:"base_ref" bigquery:"base_ref"`
	HeadRef            string     `json:"head_ref" bigquery:"head_ref"`
	IngestedAt         time.Time  `json:"ingestion_timestamp" bigquery:"ingestion_timestamp"`
}

// RecordKind implements Row
func (PullRequest) RecordKind() Kind { return KindPullRequest }

// Key implements Row
func (p PullRequest) Key() RowKey {
	id := ""
	if p.PRNumber > 0 {
		id = strconv.Itoa(p.PRNumber)
	}
	return RowKey{ID: id, Repository: p.Repository, Organization: p.Organization}
}

// Commit is one commit reachable from a collected pull request. Author and
// committer attribution come from the git signature, not a platform account,
// so either side may be blank
type Commit struct {
	SHA            string     `json:"sha" bigquery:"sha" validate:"required"`
	PRNumber       int        `json:"pr_number" bigquery:"pr_number"`
	Repository     string     `json:"repository" bigquery:"repository" validate:"required"`
	Organization   string     `json:"organization" bigquery:"organization" validate:"required"`
	Author         string     `json:"author" bigquery:"author"`
	AuthorEmail    string     `json:"author_email" bigquery:"author_email"`
	Committer      string     `json:"committer" bigquery:"committer"`
	CommitterEmail string     `json:"committer_email" bigquery:"committer_email"`
	Message        string     `json:"message" bigquery:"message"`
	CommitDate     time.Time  `json:"commit_date" bigquery:"commit_date"`
	AuthorDate     *time.Time `json:"author_date,omitempty" bigquery:"author_date"`
	URL            string     `json:"url" bigquery:"url"`
	IngestedAt     time.Time  `json:"ingestion_timestamp" bigquery:"ingestion_timestamp"`
}

// RecordKind implements Row
func (Commit) RecordKind() Kind { return KindCommit }

// Key implements Row
func (c Commit) Key() RowKey {
	return RowKey{ID: c.SHA, Repository: c.Repository, Organization: c.Organization}
}

// Review is one pull request review. SubmittedAt is nil for reviews still in
// the pending state
type Review struct {
	ReviewID     int64      `json:"review_id" bigquery:"review_id" validate:"required"`
	PRNumber     int        `json:"pr_number" bigquery:"pr_number"`
	Repository   string     `json:"repository" bigquery:"repository" validate:"required"`
	Organization string     `json:"organization" bigquery:"organization" validate:"required"`
	Reviewer     string     `json:"reviewer" bigquery:"reviewer"`
	ReviewerType string     `json:"reviewer_type" bigquery:"reviewer_type"`
	State        string     `json:"state" bigquery:"state"`
	Body         string     `json:"body" bigquery:"body"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty" bigquery:"submitted_at"`
	CommitID     string     `json:"commit_id" bigquery:"commit_id"`
	URL          string     `json:"url" bigquery:"url"`
	IngestedAt   time.Time  `json:"ingestion_timestamp" bigquery:"ingestion_timestamp"`
}

// RecordKind implements Row
func (Review) RecordKind() Kind { return KindReview }

// Key implements Row
func (r Review) Key() RowKey {
	id := ""
	if r.ReviewID > 0 {
		id = strconv.FormatInt(r.ReviewID, 10)
	}
	return RowKey{ID: id, Repository: r.Repository, Organization: r.Organization}
}

// ReviewComment is one inline diff comment on a pull request review. Position
// is nil when the comment's diff anchor has gone stale
type ReviewComment struct {
	CommentID    int64     `json:"comment_id" bigquery:"comment_id" validate:"required"`
	PRNumber     int       `json:"pr_number" bigquery:"pr_number"`
	Repository   string    `json:"repository" bigquery:"repository" validate:"required"`
	Organization string    `json:"organization" bigquery:"organization" validate:"required"`
	Author       string    `json:"author" bigquery:"author"`
	AuthorType   string    `json:"author_type" bigquery:"author_type"`
	Body         string    `json:"body" bigquery:"body"`
	CreatedAt    time.Time `json:"created_at" bigquery:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bigquery:"updated_at"`
	Path         string    `json:"path" bigquery:"path"`
	Position     *int      `json:"position,omitempty" bigquery:"position"`
	CommitID     string    `json:"commit_id" bigquery:"commit_id"`
	URL          string    `json:"url" bigquery:"url"`
	IngestedAt   time.Time `json:"ingestion_timestamp" bigquery:"ingestion_timestamp"`
}

// RecordKind implements Row
func (ReviewComment) RecordKind() Kind { return KindReviewComment }

// Key implements Row
func (c ReviewComment) Key() RowKey {
	id := ""
	if c.CommentID > 0 {
		id = strconv.FormatInt(c.CommentID, 10)
	}
	return RowKey{ID: id, Repository: c.Repository, Organization: c.Organization}
}

// IssueComment is one conversation comment on a pull request
type IssueComment struct {
	CommentID    int64     `json:"comment_id" bigquery:"comment_id" validate:"required"`
	PRNumber     int       `json:"pr_number" bigquery:"pr_number"`
	Author       string    `json:"author" bigquery:"author"`
	AuthorType   string    `json:"author_type" bigquery:"author_type"`
	Body         string    `json:"body" bigquery:"body"`
	CreatedAt    time.Time `json:"created_at" bigquery:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bigquery:"updated_at"`
	Repository   string    `json:"repository" bigquery:"repository" validate:"required"`
	Organization string    `json:"organization" bigquery:"organization" validate:"required"`
	URL          string    `json:"url" bigquery:"url"`
	IngestedAt   time.Time `json:"ingestion_timestamp" bigquery:"ingestion_timestamp"`
}

// RecordKind implements Row
func (IssueComment) RecordKind() Kind { return KindIssueComment }

// Key implements Row
func (c IssueComment) Key() RowKey {
	id := ""
	if c.CommentID > 0 {
		id = strconv.FormatInt(c.CommentID, 10)
	}
	return RowKey{ID: id, Repository: c.Repository, Organization: c.Organization}
}

// Set holds one repository's fetched records grouped by kind
type Set struct {
	PullRequests   []PullRequest   `json:"pull_requests"`
	Commits        []Commit        `json:"commits"`
	Reviews        []Review        `json:"reviews"`
	ReviewComments []ReviewComment `json:"review_comments"`
	IssueComments  []IssueComment  `json:"issue_comments"`
}

// Rows returns the kind's records as the uniform Row slice
func (s *Set) Rows(k Kind) []Row {
	switch k {
	case KindPullRequest:
		out := make([]Row, len(s.PullRequests))
		for i := range s.PullRequests {
			out[i] = s.PullRequests[i]
		}
		return out
	case KindCommit:
		out := make([]Row, len(s.Commits))
		for i := range s.Commits {
			out[i] = s.Commits[i]
		}
		return out
	case KindReview:
		out := make([]Row, len(s.Reviews))
		for i := range s.Reviews {
			out[i] = s.Reviews[i]
		}
		return out
	case KindReviewComment:
		out := make([]Row, len(s.ReviewComments))
		for i := range s.ReviewComments {
			out[i] = s.ReviewComments[i]
		}
		return out
	case KindIssueComment:
		out := make([]Row, len(s.IssueComments))
		for i := range s.IssueComments {
			out[i] = s.IssueComments[i]
		}
		return out
	default:
		return nil
	}
}

// Count returns how many records of the kind the set holds
func (s *Set) Count(k Kind) int {
	switch k {
	case KindPullRequest:
		return len(s.PullRequests)
	case KindCommit:
		return len(s.Commits)
	case KindReview:
		return len(s.Reviews)
	case KindReviewComment:
		return len(s.ReviewComments)
	case KindIssueComment:
		return len(s.IssueComments)
	default:
		return 0
	}
}

// Total returns the record count across all kinds
func (s *Set) Total() int {
	n := 0
	for _, k := range Kinds() {
		n += s.Count(k)
	}
	return n
}

// Counts returns per-kind record counts, omitting empty kinds
func (s *Set) Counts() map[Kind]int {
	out := make(map[Kind]int, len(Kinds()))
	for _, k := range Kinds() {
		if n := s.Count(k); n > 0 {
			out[k] = n
		}
	}
	return out
}
