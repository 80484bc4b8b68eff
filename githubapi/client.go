/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
)

// DefaultBranch is the base branch every eval repository uses.
const DefaultBranch = "main"

// Client inspects one repository with one authenticated identity.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// New returns a Client authenticated with a bearer token.
func New(ctx context.Context, token, owner, repo string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		gh:    github.NewClient(oauth2.NewClient(ctx, ts)),
		owner: owner,
		repo:  repo,
	}
}

// NewFromClient wraps an existing go-github client. Used by tests to
// point the Client at a local server.
func NewFromClient(gh *github.Client, owner, repo string) *Client {
	return &Client{gh: gh, owner: owner, repo: repo}
}

// Owner returns the repository owner.
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name.
func (c *Client) Repo() string { return c.repo }

// notFound reports whether an API error was a plain 404.
func notFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// observe converts a read-path API error into the ok=false contract,
// logging everything except a plain 404.
func observe(ctx context.Context, what string, resp *github.Response, err error) {
	if notFound(resp) {
		return
	}
	clog.FromContext(ctx).With("target", what).With("error", err.Error()).Warn("GitHub read failed")
}

// BranchExists reports whether the named branch exists.
func (c *Client) BranchExists(ctx context.Context, branch string) bool {
	_, resp, err := c.gh.Repositories.GetBranch(ctx, c.owner, c.repo, branch, 0)
	if err != nil {
		observe(ctx, "branch "+branch, resp, err)
		return false
	}
	return true
}

// FileContent fetches and decodes a file at the given ref. The contents
// API returns file blobs base64 encoded; decode failures are treated the
// same as a missing file.
func (c *Client) FileContent(ctx context.Context, path, ref string) (string, bool) {
	fc, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		observe(ctx, "contents "+path+"@"+ref, resp, err)
		return "", false
	}
	if fc == nil {
		// The path resolved to a directory listing.
		return "", false
	}
	content, err := fc.GetContent()
	if err != nil {
		clog.FromContext(ctx).With("path", path).With("error", err.Error()).Warn("Content decode failed")
		return "", false
	}
	return content, true
}

// Commit fetches a commit by SHA.
func (c *Client) Commit(ctx context.Context, sha string) (*github.RepositoryCommit, bool) {
	commit, resp, err := c.gh.Repositories.GetCommit(ctx, c.owner, c.repo, sha, nil)
	if err != nil {
		observe(ctx, "commit "+sha, resp, err)
		return nil, false
	}
	return commit, true
}
