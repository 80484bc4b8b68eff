/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package prautomation verifies the PR automation workflow task on the
// mcpmark-cicd repository: the agent must land a GitHub Actions workflow
// that runs four parallel quality gates on every pull request and
// comments the results back. Beyond inspecting the merged workflow, the
// verifier opens short-lived failing PRs to prove each gate actually
// rejects bad code.
package prautomation

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

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
	workflowPath = ".github/workflows/pr-automation.yml"
	workflowFile = "pr-automation.yml"

	mainPRTitle = "Implement Pull Request Automation Workflow"
	headBranch  = "pr-automation-workflow"

	botLogin = "github-actions[bot]"

	// Jobs starting within this window of each other count as parallel.
	parallelWindow = 2 * time.Minute
)

var (
	requiredEvents = []string{"opened", "synchronize", "reopened"}
	requiredJobs   = []string{"code-quality", "testing-suite", "security-scan", "build-validation"}
)

// report is one automation comment the bot must have left on the main
// PR. Sub-keywords must appear in the same comment as the main keyword.
type report struct {
	Name        string
	MainKeyword string
	SubKeywords []string
}

var requiredReports = []report{
	{Name: "Code Quality Report", MainKeyword: "Code Quality Report", SubKeywords: []string{"ESLint", "Prettier"}},
	{Name: "Test Coverage Report", MainKeyword: "Test Coverage Report"},
	{Name: "Security Scan Report", MainKeyword: "Security Scan Report", SubKeywords: []string{"Vulnerabilities", "Dependencies"}},
	{Name: "Build Validation Report", MainKeyword: "Build Validation"},
}

// probe is one ephemeral failing PR: its file content is crafted to trip
// exactly one of the workflow's gates.
type probe struct {
	Gate string
	Spec githubapi.EphemeralPR
}

var probes = []probe{{
	Gate: "code-quality",
	Spec: githubapi.EphemeralPR{
		Branch:   "test-code-quality-fail",
		Title:    "Test: Code Quality Failure",
		FilePath: "src/lint-fail-test.js",
		Message:  "Test commit for Test: Code Quality Failure",
		Content: "// This file contains intentional ESLint violations\n" +
			"var unused_variable = 'this will trigger unused-vars rule'\n" +
			"console.log('missing semicolon - will trigger semi rule')\n" +
			"const   badly_spaced   =   'too many spaces'\n" +
			"if(true){console.log('missing spaces around braces')}\n" +
			"eval('alert(\"dangerous eval\")');\n" +
			"var a = 1; var a = 2; // redeclared variable\n",
	},
}, {
	Gate: "testing-suite",
	Spec: githubapi.EphemeralPR{
		Branch:   "test-testing-fail",
		Title:    "Test: Testing Suite Failure",
		FilePath: "tests/fail-test.test.js",
		Message:  "Test commit for Test: Testing Suite Failure",
		Content: "describe('Intentional Test Failures', () => {\n" +
			"  test('This test should always fail', () => {\n" +
			"    expect(2 + 2).toBe(5); // Intentionally wrong\n" +
			"  });\n" +
			"  test('Another failing test', () => {\n" +
			"    expect(true).toBe(false); // Intentionally wrong\n" +
			"  });\n" +
			"});\n",
	},
}, {
	Gate: "security-scan",
	Spec: githubapi.EphemeralPR{
		Branch:   "test-security-fail",
		Title:    "Test: Security Scan Failure",
		FilePath: "src/security-fail-test.js",
		Message:  "Test commit for Test: Security Scan Failure",
		Content: "// This file contains patterns that should trigger secret detection\n" +
			"const hardcodedPassword = 'admin123password';\n" +
			"const fakeApiKey = 'sk_test_' + 'fake123key456here789';\n" +
			"const tokenPattern = 'token' + '=' + 'ghp_1234567890abcdef';\n" +
			"module.exports = { password: hardcodedPassword, apiKey: fakeApiKey };\n",
	},
}, {
	Gate: "build-validation",
	Spec: githubapi.EphemeralPR{
		Branch:   "test-build-fail",
		Title:    "Test: Build Validation Failure",
		FilePath: "src/build-fail-test.js",
		Message:  "Test commit for Test: Build Validation Failure",
		Content: "// This file will cause build/startup failures\n" +
			"const nonExistentModule = require('this-module-does-not-exist-anywhere');\n" +
			"const anotherMissing = require('@fake/missing-package');\n" +
			"nonExistentModule.doSomething();\n" +
			"module.exports = anotherMissing;\n",
	},
}}

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

// Pipeline builds the check sequence against a repository client. The
// polling configuration governs how long the probe checks wait for the
// workflow to process the ephemeral PRs.
func Pipeline(client *githubapi.Client, cfg pollwait.Config) verify.Pipeline {
	// Resolved by the main PR check and reused by the later checks;
	// pipeline order guarantees it is set before use.
	var mainPR *github.PullRequest

	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "workflow file",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, workflowPath, githubapi.DefaultBranch)
				if !ok {
					return verify.Failf("workflow file %s not found in %s branch", workflowPath, githubapi.DefaultBranch)
				}
				if !strings.Contains(content, "pull_request:") {
					return verify.Failf("workflow missing pull_request trigger")
				}
				for _, event := range requiredEvents {
					if !strings.Contains(content, event) {
						return verify.Failf("missing event trigger: %s", event)
					}
				}
				for _, job := range requiredJobs {
					if !strings.Contains(content, job+":") {
						return verify.Failf("missing job: %s", job)
					}
				}
				return verify.Pass()
			},
		}, {
			Name: "main pr merged",
			Run: func(ctx context.Context) verify.Result {
				pr, ok := client.FindPRByTitle(ctx, mainPRTitle)
				if !ok {
					return verify.Failf("main PR %q not found", mainPRTitle)
				}
				if pr.GetMergedAt().Time.IsZero() {
					return verify.Failf("PR #%d was not merged", pr.GetNumber())
				}
				if ref := pr.GetHead().GetRef(); ref != headBranch {
					return verify.Failf("PR #%d was not from %s branch (head: %s)", pr.GetNumber(), headBranch, ref)
				}
				if base := pr.GetBase().GetRef(); base != githubapi.DefaultBranch {
					return verify.Failf("PR #%d was not merged to %s branch (base: %s)", pr.GetNumber(), githubapi.DefaultBranch, base)
				}
				mainPR = pr
				return verify.Pass()
			},
		}, {
			Name: "workflow runs",
			Run: func(ctx context.Context) verify.Result {
				runs, ok := client.RunsForPR(ctx, mainPR)
				if !ok {
					return verify.Failf("failed to fetch workflow runs")
				}
				if len(runs) == 0 {
					return verify.Failf("no workflow runs found for PR #%d (head: %s)",
						mainPR.GetNumber(), mainPR.GetHead().GetSHA())
				}
				// Runs come back newest first.
				latest := runs[0]
				if conclusion := latest.GetConclusion(); conclusion != "success" {
					return verify.Failf("latest workflow run %d did not succeed (conclusion: %s)", latest.GetID(), conclusion)
				}
				jobs, ok := client.RunJobs(ctx, latest.GetID())
				if !ok {
					return verify.Failf("failed to fetch workflow jobs")
				}
				found := map[string]bool{}
				for _, job := range jobs {
					found[job.GetName()] = true
				}
				for _, name := range requiredJobs {
					if !found[name] {
						return verify.Failf("missing job %s in run %d", name, latest.GetID())
					}
				}
				for _, job := range jobs {
					if conclusion := job.GetConclusion(); conclusion != "success" {
						return verify.Failf("job %s failed (conclusion: %s)", job.GetName(), conclusion)
					}
				}
				return parallelStarts(jobs)
			},
		}, {
			Name: "automation reports",
			Run: func(ctx context.Context) verify.Result {
				bodies, ok := client.CommentBodiesBy(ctx, mainPR.GetNumber(), botLogin)
				if !ok {
					return verify.Failf("failed to fetch PR comments")
				}
				if len(bodies) == 0 {
					return verify.Failf("no comments found from %s", botLogin)
				}
				for _, rep := range requiredReports {
					body, found := findReport(bodies, rep.MainKeyword)
					if !found {
						return verify.Failf("missing %s from %s", rep.Name, botLogin)
					}
					for _, sub := range rep.SubKeywords {
						if !strings.Contains(body, sub) {
							return verify.Failf("missing sub-keyword %q in %s", sub, rep.Name)
						}
					}
				}
				return verify.Pass()
			},
		}, {
			Name: "failing probes",
			Run: func(ctx context.Context) verify.Result {
				for _, p := range probes {
					if err := runProbe(ctx, client, cfg, p); err != nil {
						return verify.Failf("%v", err)
					}
				}
				return verify.Pass()
			},
		}},
	}
}

// parallelStarts checks that the jobs started within the parallel
// window of each other.
func parallelStarts(jobs []*github.WorkflowJob) verify.Result {
	var earliest, latest time.Time
	counted := 0
	for _, job := range jobs {
		start := job.GetStartedAt().Time
		if start.IsZero() {
			continue
		}
		if counted == 0 || start.Before(earliest) {
			earliest = start
		}
		if counted == 0 || start.After(latest) {
			latest = start
		}
		counted++
	}
	if counted < len(requiredJobs) {
		return verify.Failf("not enough job start times to verify parallel execution")
	}
	if span := latest.Sub(earliest); span > parallelWindow {
		return verify.Failf("jobs did not run in parallel (time span: %s)", span)
	}
	return verify.Pass()
}

// findReport returns the first comment body containing the keyword.
func findReport(bodies []string, keyword string) (string, bool) {
	for _, body := range bodies {
		if strings.Contains(body, keyword) {
			return body, true
		}
	}
	return "", false
}

// runProbe opens one failing PR, waits for the workflow to process it,
// and asserts the run concluded in failure. Branch and PR cleanup is
// guaranteed by WithEphemeralPR.
func runProbe(ctx context.Context, client *githubapi.Client, cfg pollwait.Config, p probe) error {
	return client.WithEphemeralPR(ctx, p.Spec, func(ctx context.Context, pr *github.PullRequest) error {
		// Best effort; verification proceeds even when the wait gives up.
		client.WaitForWorkflows(ctx, workflowFile, cfg)

		runs, ok := client.RunsForPR(ctx, pr)
		if !ok || len(runs) == 0 {
			return fmt.Errorf("no workflow runs found for test PR #%d (%s)", pr.GetNumber(), p.Gate)
		}
		if conclusion := runs[0].GetConclusion(); conclusion != "failure" {
			return fmt.Errorf("test PR #%d (%s) should have failed but got: %s", pr.GetNumber(), p.Gate, conclusion)
		}
		return nil
	})
}
