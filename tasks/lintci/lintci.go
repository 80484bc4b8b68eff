/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package lintci verifies the ESLint CI workflow task on the
// mcpmark-cicd repository: the agent must land a lint workflow and an
// ESLint configuration on a CI branch, then demonstrate it working by
// pushing a failing commit followed by a fixed one on the same PR.
package lintci

import (
	"context"
	_ "embed"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/go-github/v75/github"

	"github.com/shzhiqi/mcpverify/githubapi"
	"github.com/shzhiqi/mcpverify/pollwait"
	"github.com/shzhiqi/mcpverify/taskenv"
	"github.com/shzhiqi/mcpverify/tasks"
	"github.com/shzhiqi/mcpverify/verify"
)

//go:embed meta.json
var rawMeta []byte

var meta = func() tasks.Meta {
	var m tasks.Meta
	if err := json.Unmarshal(rawMeta, &m); err != nil {
		panic(err)
	}
	return m
}()

const (
	repoName     = "mcpmark-cicd"
	ciBranch     = "ci/add-eslint-workflow"
	eslintConfig = ".eslintrc.json"
	workflowPath = ".github/workflows/lint.yml"
	exampleFile  = "src/example.js"

	prKeyword         = "eslint workflow"
	prFallbackKeyword = "eslint"

	// The PR must carry the failing commit and the fix, nothing else.
	expectedCommits = 2
)

var (
	workflowKeywords = []string{"Code Linting", "ubuntu-latest", "actions/setup-node", "npm ci", "eslint", "src/"}
	requiredRules    = []string{"no-unused-vars", "semi", "quotes"}
	prSections       = []string{"## Summary", "## Changes", "## Testing"}
)

func init() {
	tasks.Register(tasks.Task{
		Name:     meta.CategoryID + "/" + meta.TaskID,
		Category: meta.CategoryID,
		Service:  tasks.GitHub,
		Verify: func(ctx context.Context, env *taskenv.Env) verify.Result {
			token, org, err := env.GitHub()
			if err != nil {
				return verify.Failf("%v", err)
			}
			return Pipeline(githubapi.New(ctx, token, org, repoName), pollwait.Default()).Run(ctx)
		},
	})
}

// commitOutcome reduces a commit's workflow runs to a verdict: "failed"
// when any completed run failed or was cancelled, "passed" when one
// succeeded, "" when nothing has completed.
func commitOutcome(runs []*github.WorkflowRun) string {
	for _, run := range runs {
		if run.GetStatus() != "completed" {
			continue
		}
		switch run.GetConclusion() {
		case "failure", "cancelled":
			return "failed"
		case "success":
			return "passed"
		}
	}
	return ""
}

// Pipeline builds the check sequence against a repository client. The
// polling configuration governs how long the sequence check waits for
// the lint runs on both commits to complete.
func Pipeline(client *githubapi.Client, cfg pollwait.Config) verify.Pipeline {
	// Resolved by the PR check and reused by the sequence check;
	// pipeline order guarantees it is set before use.
	var lintPR *github.PullRequest

	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "ci branch",
			Run: func(ctx context.Context) verify.Result {
				if !client.BranchExists(ctx, ciBranch) {
					return verify.Failf("branch %q not found", ciBranch)
				}
				return verify.Pass()
			},
		}, {
			Name: "eslint config",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, eslintConfig, ciBranch)
				if !ok {
					return verify.Failf("%s not found on %s", eslintConfig, ciBranch)
				}
				var config struct {
					Rules map[string]json.RawMessage `json:"rules"`
				}
				if err := json.Unmarshal([]byte(content), &config); err != nil {
					return verify.Failf("%s is not valid JSON: %v", eslintConfig, err)
				}
				for _, rule := range requiredRules {
					if _, ok := config.Rules[rule]; !ok {
						return verify.Failf("%s missing rule %q", eslintConfig, rule)
					}
				}
				return verify.Pass()
			},
		}, {
			Name: "lint workflow",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, workflowPath, ciBranch)
				if !ok {
					return verify.Failf("%s not found on %s", workflowPath, ciBranch)
				}
				for _, kw := range workflowKeywords {
					if !strings.Contains(content, kw) {
						return verify.Failf("workflow missing %q", kw)
					}
				}
				if !strings.Contains(content, "pull_request") || !strings.Contains(content, "push") {
					return verify.Failf("workflow missing pull_request and push triggers")
				}
				return verify.Pass()
			},
		}, {
			Name: "example file",
			Run: func(ctx context.Context) verify.Result {
				if _, ok := client.FileContent(ctx, exampleFile, ciBranch); !ok {
					return verify.Failf("%s not found on %s", exampleFile, ciBranch)
				}
				return verify.Pass()
			},
		}, {
			Name: "lint pull request",
			Run: func(ctx context.Context) verify.Result {
				pr, ok := client.FindPRByKeyword(ctx, prKeyword)
				if !ok {
					pr, ok = client.FindPRByKeyword(ctx, prFallbackKeyword)
				}
				if !ok {
					return verify.Failf("lint PR not found")
				}
				body := pr.GetBody()
				for _, section := range prSections {
					if !strings.Contains(body, section) {
						return verify.Failf("lint PR missing required section %q", section)
					}
				}
				lintPR = pr
				return verify.Pass()
			},
		}, {
			Name: "commit workflow sequence",
			Run: func(ctx context.Context) verify.Result {
				commits, ok := client.PRCommits(ctx, lintPR.GetNumber())
				if !ok {
					return verify.Failf("failed to fetch commits for PR #%d", lintPR.GetNumber())
				}
				if len(commits) != expectedCommits {
					return verify.Failf("expected exactly %d commits, found %d", expectedCommits, len(commits))
				}
				sort.Slice(commits, func(i, j int) bool {
					return commits[i].GetCommit().GetAuthor().GetDate().Time.
						Before(commits[j].GetCommit().GetAuthor().GetDate().Time)
				})
				first := commits[0].GetSHA()
				second := commits[1].GetSHA()

				// Best effort; verification proceeds even when the wait
				// gives up.
				pollwait.Until(ctx, cfg, "lint runs", func(ctx context.Context) (pollwait.Outcome, error) {
					firstRuns, ok1 := client.RunsForCommit(ctx, first)
					secondRuns, ok2 := client.RunsForCommit(ctx, second)
					if !ok1 || !ok2 {
						return pollwait.Busy, nil
					}
					if len(firstRuns) == 0 && len(secondRuns) == 0 {
						return pollwait.Empty, nil
					}
					if commitOutcome(firstRuns) != "" && commitOutcome(secondRuns) != "" {
						return pollwait.Settled, nil
					}
					return pollwait.Busy, nil
				})

				firstRuns, ok := client.RunsForCommit(ctx, first)
				if !ok {
					return verify.Failf("failed to fetch workflow runs for commit %s", first)
				}
				if commitOutcome(firstRuns) != "failed" {
					return verify.Failf("first commit %s should have failed the lint workflow", first)
				}
				secondRuns, ok := client.RunsForCommit(ctx, second)
				if !ok {
					return verify.Failf("failed to fetch workflow runs for commit %s", second)
				}
				if commitOutcome(secondRuns) != "passed" {
					return verify.Failf("second commit %s should have passed the lint workflow", second)
				}
				return verify.Pass()
			},
		}},
	}
}
