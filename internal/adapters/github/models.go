package github

import "time"

// User is a partial GitHub user or org document
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Repo is a partial GitHub repository document with fields we use
type Repo struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	Archived      bool      `json:"archived"`
	DefaultBranch string    `json:"default_branch"`
	Language      string    `json:"language"`
	PushedAt      time.Time `json:"pushed_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	HTMLURL       string    `json:"html_url"`
}

// Label is a partial GitHub label document
type Label struct {
	Name string `json:"name"`
}

// BranchRef is the base or head side of a pull request
type BranchRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// Pull is a partial GitHub pull request document. The diff stat fields are
// only populated by the list endpoint when GitHub chooses to include them;
// absent means zero, same as upstream reports for empty diffs
type Pull struct {
	Number         int        `json:"number"`
	State          string     `json:"state"`
	Title          string     `json:"title"`
	User           User       `json:"user"`
	Draft          bool       `json:"draft"`
	Labels         []Label    `json:"labels"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	MergedAt       *time.Time `json:"merged_at"`
	MergeCommitSHA string     `json:"merge_commit_sha"`
	Base           BranchRef  `json:"base"`
	Head           BranchRef  `json:"head"`
	Additions      int        `json:"additions"`
	Deletions      int        `json:"deletions"`
	ChangedFiles   int        `json:"changed_files"`
	HTMLURL        string     `json:"html_url"`
}

// CommitSig is one side of a git signature inside a commit document
type CommitSig struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Date  *time.Time `json:"date"`
}

// CommitDetail is the nested git commit body with message and attribution
type CommitDetail struct {
	Message   string    `json:"message"`
	Author    CommitSig `json:"author"`
	Committer CommitSig `json:"committer"`
}

// PullCommit is one commit listed under a pull request. Author is the
// platform account when GitHub could resolve one, nil otherwise
type PullCommit struct {
	SHA     string       `json:"sha"`
	Commit  CommitDetail `json:"commit"`
	Author  *User        `json:"author"`
	HTMLURL string       `json:"html_url"`
}

// Review is a partial GitHub pull request review document
type Review struct {
	ID          int64      `json:"id"`
	User        User       `json:"user"`
	State       string     `json:"state"`
	Body        string     `json:"body"`
	SubmittedAt *time.Time `json:"submitted_at"`
	CommitID    string     `json:"commit_id"`
	HTMLURL     string     `json:"html_url"`
}

// Comment is a partial GitHub comment document shared by the review comment
// and issue comment endpoints. Path, Position, and CommitID are only set on
// review comments
type Comment struct {
	ID        int64     `json:"id"`
	User      User      `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Path      string    `json:"path"`
	Position  *int      `json:"position"`
	CommitID  string    `json:"commit_id"`
	HTMLURL   string    `json:"html_url"`
}
