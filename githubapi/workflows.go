/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v75/github"

	"github.com/shzhiqi/mcpverify/pollwait"
)

// recentRunWindow bounds how many of the newest runs the settle check
// inspects. Older runs belong to earlier pushes and must not hold the
// wait open.
const recentRunWindow = 5

// WorkflowRuns returns up to n of the most recent runs of a workflow
// file, newest first.
func (c *Client) WorkflowRuns(ctx context.Context, file string, n int) ([]*github.WorkflowRun, bool) {
	runs, resp, err := c.gh.Actions.ListWorkflowRunsByFileName(ctx, c.owner, c.repo, file,
		&github.ListWorkflowRunsOptions{ListOptions: github.ListOptions{PerPage: n}})
	if err != nil {
		observe(ctx, "workflow runs "+file, resp, err)
		return nil, false
	}
	return runs.WorkflowRuns, true
}

// RunJobs returns the jobs of a workflow run.
func (c *Client) RunJobs(ctx context.Context, runID int64) ([]*github.WorkflowJob, bool) {
	jobs, resp, err := c.gh.Actions.ListWorkflowJobs(ctx, c.owner, c.repo, runID,
		&github.ListWorkflowJobsOptions{ListOptions: github.ListOptions{PerPage: 100}})
	if err != nil {
		observe(ctx, "workflow jobs", resp, err)
		return nil, false
	}
	return jobs.Jobs, true
}

// RunsForPR returns the pull_request runs triggered by a PR, matched by
// head SHA with a head-branch fallback for runs where the API omits the
// PR association.
func (c *Client) RunsForPR(ctx context.Context, pr *github.PullRequest) ([]*github.WorkflowRun, bool) {
	runs, resp, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, c.owner, c.repo,
		&github.ListWorkflowRunsOptions{
			Event:       "pull_request",
			ListOptions: github.ListOptions{PerPage: 100},
		})
	if err != nil {
		observe(ctx, "pull_request runs", resp, err)
		return nil, false
	}
	headSHA := pr.GetHead().GetSHA()
	headRef := pr.GetHead().GetRef()
	var matched []*github.WorkflowRun
	for _, run := range runs.WorkflowRuns {
		if run.GetHeadSHA() == headSHA || run.GetHeadBranch() == headRef {
			matched = append(matched, run)
		}
	}
	return matched, true
}

// RunsForCommit returns the workflow runs triggered for a specific head
// commit.
func (c *Client) RunsForCommit(ctx context.Context, sha string) ([]*github.WorkflowRun, bool) {
	runs, resp, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, c.owner, c.repo,
		&github.ListWorkflowRunsOptions{
			HeadSHA:     sha,
			ListOptions: github.ListOptions{PerPage: 100},
		})
	if err != nil {
		observe(ctx, "runs for commit "+sha, resp, err)
		return nil, false
	}
	return runs.WorkflowRuns, true
}

// WaitForWorkflows polls until no recent run of the workflow file is
// queued or in progress. It reports false when the wait times out or
// the workflow never shows any runs at all.
func (c *Client) WaitForWorkflows(ctx context.Context, file string, cfg pollwait.Config) bool {
	return pollwait.Until(ctx, cfg, "workflow "+file, func(ctx context.Context) (pollwait.Outcome, error) {
		runs, ok := c.WorkflowRuns(ctx, file, recentRunWindow)
		if !ok {
			return pollwait.Busy, nil
		}
		if len(runs) == 0 {
			return pollwait.Empty, nil
		}
		for _, run := range runs {
			switch run.GetStatus() {
			case "queued", "in_progress", "waiting", "pending":
				clog.FromContext(ctx).With("run", run.GetID()).With("status", run.GetStatus()).
					Info("Workflow run still active")
				return pollwait.Busy, nil
			}
		}
		return pollwait.Settled, nil
	})
}
