/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v75/github"
)

// CreateBranch creates a branch off the default branch head. If the
// branch already exists from an earlier aborted probe it is deleted and
// recreated so the probe always starts from a clean head.
func (c *Client) CreateBranch(ctx context.Context, name string) error {
	base, _, err := c.gh.Git.GetRef(ctx, c.owner, c.repo, "heads/"+DefaultBranch)
	if err != nil {
		return fmt.Errorf("resolving %s head: %w", DefaultBranch, err)
	}
	ref := github.CreateRef{
		Ref: "refs/heads/" + name,
		SHA: base.Object.GetSHA(),
	}
	if _, _, err := c.gh.Git.CreateRef(ctx, c.owner, c.repo, ref); err != nil {
		clog.FromContext(ctx).With("branch", name).Info("Branch exists, recreating")
		if err := c.DeleteBranch(ctx, name); err != nil {
			return fmt.Errorf("recreating branch %s: %w", name, err)
		}
		if _, _, err := c.gh.Git.CreateRef(ctx, c.owner, c.repo, ref); err != nil {
			return fmt.Errorf("creating branch %s: %w", name, err)
		}
	}
	return nil
}

// PutFile creates or updates a file on a branch.
func (c *Client) PutFile(ctx context.Context, branch, path, message, content string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: []byte(content),
		Branch:  github.Ptr(branch),
	}
	existing, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: branch})
	switch {
	case err == nil && existing != nil:
		opts.SHA = existing.SHA
		if _, _, err := c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts); err != nil {
			return fmt.Errorf("updating %s on %s: %w", path, branch, err)
		}
	case notFound(resp):
		if _, _, err := c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts); err != nil {
			return fmt.Errorf("creating %s on %s: %w", path, branch, err)
		}
	default:
		return fmt.Errorf("checking %s on %s: %w", path, branch, err)
	}
	return nil
}

// OpenPR opens a pull request from head into the default branch.
func (c *Client) OpenPR(ctx context.Context, title, head, body string) (*github.PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, &github.NewPullRequest{
		Title: github.Ptr(title),
		Head:  github.Ptr(head),
		Base:  github.Ptr(DefaultBranch),
		Body:  github.Ptr(body),
	})
	if err != nil {
		return nil, fmt.Errorf("opening PR %q: %w", title, err)
	}
	return pr, nil
}

// ClosePR closes a pull request without merging it.
func (c *Client) ClosePR(ctx context.Context, number int) error {
	if _, _, err := c.gh.PullRequests.Edit(ctx, c.owner, c.repo, number, &github.PullRequest{
		State: github.Ptr("closed"),
	}); err != nil {
		return fmt.Errorf("closing PR #%d: %w", number, err)
	}
	return nil
}

// DeleteBranch deletes a branch ref.
func (c *Client) DeleteBranch(ctx context.Context, name string) error {
	if _, err := c.gh.Git.DeleteRef(ctx, c.owner, c.repo, "heads/"+name); err != nil {
		return fmt.Errorf("deleting branch %s: %w", name, err)
	}
	return nil
}

// EphemeralPR describes a short-lived probe PR: a branch carrying one
// file change, opened against the default branch to trigger automation.
type EphemeralPR struct {
	Branch   string
	Title    string
	FilePath string
	Content  string
	Message  string
}

// WithEphemeralPR creates the probe branch and PR, runs fn against the
// opened PR, then tears everything down. Cleanup runs even when fn
// fails or the PR never opened, so probes cannot leak branches into the
// eval repository. The returned error is fn's error; cleanup failures
// are logged, not returned.
func (c *Client) WithEphemeralPR(ctx context.Context, spec EphemeralPR, fn func(context.Context, *github.PullRequest) error) error {
	log := clog.FromContext(ctx).With("branch", spec.Branch)

	if err := c.CreateBranch(ctx, spec.Branch); err != nil {
		return err
	}
	defer func() {
		if err := c.DeleteBranch(ctx, spec.Branch); err != nil {
			log.With("error", err.Error()).Warn("Probe branch cleanup failed")
		}
	}()

	if err := c.PutFile(ctx, spec.Branch, spec.FilePath, spec.Message, spec.Content); err != nil {
		return err
	}

	pr, err := c.OpenPR(ctx, spec.Title, spec.Branch, "Automated verification probe.")
	if err != nil {
		return err
	}
	defer func() {
		if err := c.ClosePR(ctx, pr.GetNumber()); err != nil {
			log.With("pr", pr.GetNumber()).With("error", err.Error()).Warn("Probe PR cleanup failed")
		}
	}()

	return fn(ctx, pr)
}
