package github

import (
	"context"
	json "encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"time"
)

const pageSize = 100

// listPage fetches one page, decodes the array body, and reports the next
// page path when the Link header names one
func listPage[T any](ctx context.Context, c *Client, path string) ([]T, string, error) {
	resp, err := c.Do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
		}
	}()

	var out []T
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, "", err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, "", err
	}
	return out, nextPagePath(resp.Header, c.opts.BaseURL), nil
}

// listAll walks every page starting at path
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for path != "" {
		page, next, err := listPage[T](ctx, c, path)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		path = next
	}
	return all, nil
}

// OrgRepos lists every repository in the organization
func (c *Client) OrgRepos(ctx context.Context, org string) ([]Repo, error) {
	path := fmt.Sprintf("/orgs/%s/repos?type=all&per_page=%d", org, pageSize)
	return listAll[Repo](ctx, c, path)
}

// PullsUpdatedSince lists pull requests whose last update falls at or after
// since, newest first. The endpoint serves most recently updated first, so
// the walk stops at the first pull older than the cutoff instead of paging
// through the repository's full history
func (c *Client) PullsUpdatedSince(ctx context.Context, org, repo string, since time.Time) ([]Pull, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls?state=all&sort=updated&direction=desc&per_page=%d", org, repo, pageSize)
	var all []Pull
	for path != "" {
		page, next, err := listPage[Pull](ctx, c, path)
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			if p.UpdatedAt.Before(since) {
				return all, nil
			}
			all = append(all, p)
		}
		path = next
	}
	return all, nil
}

// PullCommits lists the commits on one pull request
func (c *Client) PullCommits(ctx context.Context, org, repo string, number int) ([]PullCommit, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/commits?per_page=%d", org, repo, number, pageSize)
	return listAll[PullCommit](ctx, c, path)
}

// PullReviews lists the reviews on one pull request
func (c *Client) PullReviews(ctx context.Context, org, repo string, number int) ([]Review, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews?per_page=%d", org, repo, number, pageSize)
	return listAll[Review](ctx, c, path)
}

// PullReviewComments lists the inline diff comments on one pull request
func (c *Client) PullReviewComments(ctx context.Context, org, repo string, number int) ([]Comment, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/comments?per_page=%d", org, repo, number, pageSize)
	return listAll[Comment](ctx, c, path)
}

// IssueComments lists the conversation comments on one pull request. Pull
// requests share the issues comment endpoint upstream
func (c *Client) IssueComments(ctx context.Context, org, repo string, number int) ([]Comment, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments?per_page=%d", org, repo, number, pageSize)
	return listAll[Comment](ctx, c, path)
}
