package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ghstats/internal/adapters/github"
	"ghstats/internal/core/records"
	"ghstats/internal/platform/logger"
	ptime "ghstats/internal/platform/time"
)

const defaultWorkers = 10

// GitHubAPI is the slice of the GitHub client the fetcher needs
type GitHubAPI interface {
	OrgRepos(ctx context.Context, org string) ([]github.Repo, error)
	PullsUpdatedSince(ctx context.Context, org, repo string, since time.Time) ([]github.Pull, error)
	PullCommits(ctx context.Context, org, repo string, number int) ([]github.PullCommit, error)
	PullReviews(ctx context.Context, org, repo string, number int) ([]github.Review, error)
	PullReviewComments(ctx context.Context, org, repo string, number int) ([]github.Comment, error)
	IssueComments(ctx context.Context, org, repo string, number int) ([]github.Comment, error)
}

// Fetcher turns the GitHub API into typed record sets and implements
// domain.FetcherPort. Per pull request detail fetches fan out across a
// bounded worker pool; a failed detail fetch degrades that one pull
// request to partial data instead of failing the repository
type Fetcher struct {
	GH      GitHubAPI
	Org     string
	Workers int
}

// NewFetcher constructs a Fetcher
func NewFetcher(gh GitHubAPI, org string, workers int) *Fetcher {
	if gh == nil {
		panic("collector.Fetcher requires a non nil github client")
	}
	if org == "" {
		panic("collector.Fetcher requires an organization")
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Fetcher{GH: gh, Org: org, Workers: workers}
}

// ListRepos implements domain.FetcherPort
func (f *Fetcher) ListRepos(ctx context.Context) ([]string, error) {
	repos, err := f.GH.OrgRepos(ctx, f.Org)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(repos))
	for _, r := range repos {
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out, nil
}

// FetchRepo implements domain.FetcherPort
func (f *Fetcher) FetchRepo(ctx context.Context, repo string, since, until time.Time) (*records.Set, error) {
	pulls, err := f.GH.PullsUpdatedSince(ctx, f.Org, repo, since)
	if err != nil {
		return nil, err
	}

	// the list endpoint only bounds the lower edge; the upper edge is ours
	in := make([]github.Pull, 0, len(pulls))
	for _, p := range pulls {
		if !until.IsZero() && p.UpdatedAt.After(until) {
			continue
		}
		in = append(in, p)
	}

	now := time.Now().UTC()
	out := make([]prRecords, len(in))

	sem := make(chan struct{}, f.Workers)
	wg := sync.WaitGroup{}
	for i := range in {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() { <-sem; wg.Done() }()
			out[i] = f.fetchPR(ctx, repo, in[i], now)
		}(i)
	}
	wg.Wait()

	set := &records.Set{}
	for i := range out {
		set.PullRequests = append(set.PullRequests, out[i].pr)
		set.Commits = append(set.Commits, out[i].commits...)
		set.Reviews = append(set.Reviews, out[i].reviews...)
		set.ReviewComments = append(set.ReviewComments, out[i].reviewComments...)
		set.IssueComments = append(set.IssueComments, out[i].issueComments...)
	}

	logger.C(ctx).Info().
		Str("repo", repo).
		Int("pull_requests", len(set.PullRequests)).
		Int("total", set.Total()).
		Msg("collector: fetched repository")
	return set, nil
}

// prRecords bundles one pull request with everything hanging off it
type prRecords struct {
	pr             records.PullRequest
	commits        []records.Commit
	reviews        []records.Review
	reviewComments []records.ReviewComment
	issueComments  []records.IssueComment
}

// fetchPR collects the detail records for one pull request. Each detail
// endpoint fails independently; the pull request row itself always survives
func (f *Fetcher) fetchPR(ctx context.Context, repo string, p github.Pull, now time.Time) prRecords {
	var res prRecords

	commits, err := f.GH.PullCommits(ctx, f.Org, repo, p.Number)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("repo", repo).Int("pr", p.Number).
			Msg("collector: could not fetch commits")
	}
	reviews, err := f.GH.PullReviews(ctx, f.Org, repo, p.Number)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("repo", repo).Int("pr", p.Number).
			Msg("collector: could not fetch reviews")
	}
	reviewComments, err := f.GH.PullReviewComments(ctx, f.Org, repo, p.Number)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("repo", repo).Int("pr", p.Number).
			Msg("collector: could not fetch review comments")
	}
	issueComments, err := f.GH.IssueComments(ctx, f.Org, repo, p.Number)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("repo", repo).Int("pr", p.Number).
			Msg("collector: could not fetch issue comments")
	}

	labels := make([]string, 0, len(p.Labels))
	for _, l := range p.Labels {
		labels = append(labels, l.Name)
	}

	res.pr = records.PullRequest{
		PRNumber:           p.Number,
		Title:              p.Title,
		State:              p.State,
		Author:             login(p.User),
		AuthorType:         accountType(p.User),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		ClosedAt:           p.ClosedAt,
		MergedAt:           p.MergedAt,
		Repository:         repo,
		Organization:       f.Org,
		URL:                p.HTMLURL,
		Additions:          p.Additions,
		Deletions:          p.Deletions,
		ChangedFiles:       p.ChangedFiles,
		Labels:             labels,
		SizeLabel:          sizeLabel(p.Labels),
		CommitCount:        len(commits),
		ReviewCount:        len(reviews),
		ReviewCommentCount: len(reviewComments),
		IssueCommentCount:  len(issueComments),
		IsDraft:            p.Draft,
		IsMerged:           p.MergedAt != nil,
		MergeCommitSHA:     p.MergeCommitSHA,
		BaseRef:            p.Base.Ref,
		HeadRef:            p.Head.Ref,
		IngestedAt:         now,
	}

	for _, c := range commits {
		res.commits = append(res.commits, records.Commit{
			SHA:            c.SHA,
			PRNumber:       p.Number,
			Repository:     repo,
			Organization:   f.Org,
			Author:         c.Commit.Author.Name,
			AuthorEmail:    c.Commit.Author.Email,
			Committer:      c.Commit.Committer.Name,
			CommitterEmail: c.Commit.Committer.Email,
			Message:        c.Commit.Message,
			CommitDate:     ptime.Deref(c.Commit.Committer.Date),
			AuthorDate:     c.Commit.Author.Date,
			URL:            c.HTMLURL,
			IngestedAt:     now,
		})
	}
	for _, r := range reviews {
		res.reviews = append(res.reviews, records.Review{
			ReviewID:     r.ID,
			PRNumber:     p.Number,
			Repository:   repo,
			Organization: f.Org,
			Reviewer:     login(r.User),
			ReviewerType: accountType(r.User),
			State:        r.State,
			Body:         r.Body,
			SubmittedAt:  r.SubmittedAt,
			CommitID:     r.CommitID,
			URL:          r.HTMLURL,
			IngestedAt:   now,
		})
	}
	for _, c := range reviewComments {
		res.reviewComments = append(res.reviewComments, records.ReviewComment{
			CommentID:    c.ID,
			PRNumber:     p.Number,
			Repository:   repo,
			Organization: f.Org,
			Author:       login(c.User),
			AuthorType:   accountType(c.User),
			Body:         c.Body,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
			Path:         c.Path,
			Position:     c.Position,
			CommitID:     c.CommitID,
			URL:          c.HTMLURL,
			IngestedAt:   now,
		})
	}
	for _, c := range issueComments {
		res.issueComments = append(res.issueComments, records.IssueComment{
			CommentID:    c.ID,
			PRNumber:     p.Number,
			Author:       login(c.User),
			AuthorType:   accountType(c.User),
			Body:         c.Body,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
			Repository:   repo,
			Organization: f.Org,
			URL:          c.HTMLURL,
			IngestedAt:   now,
		})
	}
	return res
}

// sizeLabel picks the first size/ label, the convention used by PR size
// bots
func sizeLabel(labels []github.Label) string {
	for _, l := range labels {
		if strings.HasPrefix(l.Name, "size/") {
			return l.Name
		}
	}
	return ""
}

// login falls back to unknown for deleted accounts
func login(u github.User) string {
	if u.Login == "" {
		return "unknown"
	}
	return u.Login
}

// accountType is User or Bot; absent means User
func accountType(u github.User) string {
	if u.Type == "" {
		return "User"
	}
	return u.Type
}
