/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"strings"

	"github.com/google/go-github/v75/github"
)

// FindPRByTitle locates a pull request by exact title match, looking at
// closed PRs first (most verified tasks end with a merged PR), then open
// ones.
func (c *Client) FindPRByTitle(ctx context.Context, title string) (*github.PullRequest, bool) {
	for _, state := range []string{"closed", "open"} {
		prs, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
			State:       state,
			ListOptions: github.ListOptions{PerPage: 100},
		})
		if err != nil {
			observe(ctx, "pulls?state="+state, resp, err)
			continue
		}
		for _, pr := range prs {
			if pr.GetTitle() == title {
				return pr, true
			}
		}
	}
	return nil, false
}

// FindPRByKeyword locates a pull request whose title contains the
// keyword, case-insensitively. Like FindPRByTitle it prefers closed PRs,
// since most verified workflows end with a merged PR.
func (c *Client) FindPRByKeyword(ctx context.Context, keyword string) (*github.PullRequest, bool) {
	needle := strings.ToLower(keyword)
	for _, state := range []string{"closed", "open"} {
		prs, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
			State:       state,
			ListOptions: github.ListOptions{PerPage: 100},
		})
		if err != nil {
			observe(ctx, "pulls?state="+state, resp, err)
			continue
		}
		for _, pr := range prs {
			if strings.Contains(strings.ToLower(pr.GetTitle()), needle) {
				return pr, true
			}
		}
	}
	return nil, false
}

// FindIssueByKeyword locates an issue (not a PR) whose title contains the
// keyword, case-insensitively. Agent-authored titles vary in phrasing, so
// containment is preferred over equality here.
func (c *Client) FindIssueByKeyword(ctx context.Context, keyword string) (*github.Issue, bool) {
	issues, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		observe(ctx, "issues?state=all", resp, err)
		return nil, false
	}
	needle := strings.ToLower(keyword)
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		if strings.Contains(strings.ToLower(issue.GetTitle()), needle) {
			return issue, true
		}
	}
	return nil, false
}

// IssueComments returns all comments on an issue or PR.
func (c *Client) IssueComments(ctx context.Context, number int) ([]*github.IssueComment, bool) {
	comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		observe(ctx, "issue comments", resp, err)
		return nil, false
	}
	return comments, true
}

// CommentBodiesBy returns the bodies of comments a specific actor (for
// example "github-actions[bot]") left on an issue or PR.
func (c *Client) CommentBodiesBy(ctx context.Context, number int, login string) ([]string, bool) {
	comments, ok := c.IssueComments(ctx, number)
	if !ok {
		return nil, false
	}
	var bodies []string
	for _, comment := range comments {
		if comment.GetUser().GetLogin() == login {
			bodies = append(bodies, comment.GetBody())
		}
	}
	return bodies, true
}

// IssueLabels returns the label names on an issue or PR.
func (c *Client) IssueLabels(ctx context.Context, number int) ([]string, bool) {
	labels, resp, err := c.gh.Issues.ListLabelsByIssue(ctx, c.owner, c.repo, number, &github.ListOptions{PerPage: 100})
	if err != nil {
		observe(ctx, "issue labels", resp, err)
		return nil, false
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names, true
}

// SearchIssues runs an issue search query scoped to this repository.
func (c *Client) SearchIssues(ctx context.Context, query string) ([]*github.Issue, bool) {
	scoped := query + " repo:" + c.owner + "/" + c.repo
	result, resp, err := c.gh.Search.Issues(ctx, scoped, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	})
	if err != nil {
		observe(ctx, "search issues", resp, err)
		return nil, false
	}
	return result.Issues, true
}
