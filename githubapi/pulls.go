/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// Merge methods inferred from the parent count of a merge commit: a
// squashed (or rebased) PR lands as a single-parent commit, a merge
// commit keeps both parents.
const (
	MergeMethodSquash = "squash"
	MergeMethodMerge  = "merge"
)

// PullRequest fetches a PR by number.
func (c *Client) PullRequest(ctx context.Context, number int) (*github.PullRequest, bool) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		observe(ctx, "pull request", resp, err)
		return nil, false
	}
	return pr, true
}

// PRCommits returns the commits on a PR.
func (c *Client) PRCommits(ctx context.Context, number int) ([]*github.RepositoryCommit, bool) {
	commits, resp, err := c.gh.PullRequests.ListCommits(ctx, c.owner, c.repo, number, &github.ListOptions{PerPage: 100})
	if err != nil {
		observe(ctx, "pull request commits", resp, err)
		return nil, false
	}
	return commits, true
}

// MergeMethod determines how a merged PR landed by counting the parents
// of its merge commit. Returns ok=false when the PR is not merged or the
// merge commit cannot be fetched.
func (c *Client) MergeMethod(ctx context.Context, pr *github.PullRequest) (string, bool) {
	if pr.GetMergedAt().Time.IsZero() || pr.GetMergeCommitSHA() == "" {
		return "", false
	}
	commit, ok := c.Commit(ctx, pr.GetMergeCommitSHA())
	if !ok {
		return "", false
	}
	if len(commit.Parents) >= 2 {
		return MergeMethodMerge, true
	}
	return MergeMethodSquash, true
}
