/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package labelguide verifies the label color standardization task on
// the claude-code fork: the agent must document the repository's label
// organization in docs/LABEL_COLORS.md on a feature branch, open an
// issue carrying every expected label, and open a PR that references
// the issue.
package labelguide

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shzhiqi/mcpverify/githubapi"
	"github.com/shzhiqi/mcpverify/mdtable"
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
	repoName    = "claude-code"
	guideBranch = "feat/label-color-guide"
	docFile     = "docs/LABEL_COLORS.md"

	tableHeader = "| Label Name | Category |"

	// The guide must document at least this many labels.
	minDocumentedLabels = 20

	issueKeyword   = "label guide"
	issueTitleAlso = "document label organization"

	prSearchQuery = `"label organization guide" "visual organization" in:title is:pr`
	minPRLabels   = 5
)

var (
	issueSections = []string{"## Problem", "## Proposed Solution", "## Benefits"}
	issueKeywords = []string{"label documentation", "visual organization", "label guide", "organization"}

	prSections = []string{"## Summary", "## Changes", "## Verification"}
	prKeywords = []string{"label documentation", "organization guide", "visual improvement", "documentation"}

	// Labels the issue must carry before anything else.
	initialLabels = []string{"enhancement", "documentation"}

	// Every label in use on the repository. Unused labels (wontfix,
	// invalid, good first issue, help wanted) are deliberately excluded.
	expectedLabels = []string{
		"bug", "enhancement", "duplicate", "question", "documentation",
		"platform:macos", "platform:linux", "platform:windows",
		"area:core", "area:tools", "area:tui", "area:ide", "area:mcp",
		"area:api", "area:security", "area:model", "area:auth",
		"area:packaging",
		"has repro", "memory", "perf:memory", "external",
	}

	// At least one of these must appear in the wrap-up comment.
	completionKeywords = []string{"documentation created", "label guide complete", "organization complete"}
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
			return Pipeline(githubapi.New(ctx, token, org, repoName)).Run(ctx)
		},
	})
}

// documentedLabels extracts the label names from the guide's table.
func documentedLabels(content string) []string {
	var names []string
	for _, rec := range mdtable.Parse(content, tableHeader) {
		if name := rec.Cell(0); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func containsAll(haystack string, needles []string) (string, bool) {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if !strings.Contains(lower, strings.ToLower(n)) {
			return n, false
		}
	}
	return "", true
}

// Pipeline builds the check sequence against a repository client.
func Pipeline(client *githubapi.Client) verify.Pipeline {
	// Resolved by the issue and PR checks; pipeline order guarantees
	// they are set before the later checks use them.
	var issueNumber, prNumber int

	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "guide branch",
			Run: func(ctx context.Context) verify.Result {
				if !client.BranchExists(ctx, guideBranch) {
					return verify.Failf("branch %q not found", guideBranch)
				}
				return verify.Pass()
			},
		}, {
			Name: "label guide document",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, docFile, guideBranch)
				if !ok {
					return verify.Failf("%s not found on %s", docFile, guideBranch)
				}
				documented := documentedLabels(content)
				if len(documented) < minDocumentedLabels {
					return verify.Failf("documentation table incomplete, found only %d labels", len(documented))
				}
				present := make(map[string]bool, len(documented))
				for _, name := range documented {
					present[name] = true
				}
				var missing []string
				for _, want := range expectedLabels {
					if !present[want] {
						missing = append(missing, want)
					}
				}
				if len(missing) > 0 {
					return verify.Failf("documentation missing expected labels: %s", strings.Join(missing, ", "))
				}
				return verify.Pass()
			},
		}, {
			Name: "organization issue",
			Run: func(ctx context.Context) verify.Result {
				issue, ok := client.FindIssueByKeyword(ctx, issueKeyword)
				if !ok {
					return verify.Failf("issue with title containing %q not found", issueKeyword)
				}
				if !strings.Contains(strings.ToLower(issue.GetTitle()), issueTitleAlso) {
					return verify.Failf("issue #%d title missing %q", issue.GetNumber(), issueTitleAlso)
				}
				body := issue.GetBody()
				for _, section := range issueSections {
					if !strings.Contains(body, section) {
						return verify.Failf("issue body missing required section %q", section)
					}
				}
				if missing, ok := containsAll(body, issueKeywords); !ok {
					return verify.Failf("issue body missing required keyword %q", missing)
				}
				issueNumber = issue.GetNumber()
				return verify.Pass()
			},
		}, {
			Name: "issue labels",
			Run: func(ctx context.Context) verify.Result {
				labels, ok := client.IssueLabels(ctx, issueNumber)
				if !ok {
					return verify.Failf("failed to fetch labels for issue #%d", issueNumber)
				}
				present := make(map[string]bool, len(labels))
				for _, name := range labels {
					present[name] = true
				}
				for _, want := range initialLabels {
					if !present[want] {
						return verify.Failf("issue #%d missing initial required label %q", issueNumber, want)
					}
				}
				var missing []string
				for _, want := range expectedLabels {
					if !present[want] {
						missing = append(missing, want)
					}
				}
				if len(missing) > 0 {
					preview := missing
					if len(preview) > 5 {
						preview = preview[:5]
					}
					return verify.Failf("issue #%d missing %d expected labels: %s",
						issueNumber, len(missing), strings.Join(preview, ", "))
				}
				return verify.Pass()
			},
		}, {
			Name: "guide pull request",
			Run: func(ctx context.Context) verify.Result {
				results, ok := client.SearchIssues(ctx, prSearchQuery)
				if !ok || len(results) == 0 {
					return verify.Failf("PR with title containing required keywords not found")
				}
				pr := results[0]
				body := pr.GetBody()
				fixes := fmt.Sprintf("fixes #%d", issueNumber)
				if !strings.Contains(strings.ToLower(body), fixes) {
					return verify.Failf("PR #%d does not contain 'Fixes #%d'", pr.GetNumber(), issueNumber)
				}
				for _, section := range prSections {
					if !strings.Contains(body, section) {
						return verify.Failf("PR body missing required section %q", section)
					}
				}
				if missing, ok := containsAll(body, prKeywords); !ok {
					return verify.Failf("PR body missing required keyword %q", missing)
				}
				if got := len(pr.Labels); got < minPRLabels {
					return verify.Failf("PR #%d has only %d labels, needs at least %d", pr.GetNumber(), got, minPRLabels)
				}
				prNumber = pr.GetNumber()
				return verify.Pass()
			},
		}, {
			Name: "issue update comment",
			Run: func(ctx context.Context) verify.Result {
				comments, ok := client.IssueComments(ctx, issueNumber)
				if !ok {
					return verify.Failf("failed to fetch comments for issue #%d", issueNumber)
				}
				prRef := fmt.Sprintf("PR #%d", prNumber)
				for _, comment := range comments {
					body := comment.GetBody()
					lower := strings.ToLower(body)
					if !strings.Contains(body, prRef) {
						continue
					}
					hasKeyword := false
					for _, kw := range completionKeywords {
						if strings.Contains(lower, kw) {
							hasKeyword = true
							break
						}
					}
					if hasKeyword && strings.Contains(lower, "total") && strings.Contains(lower, "labels") {
						return verify.Pass()
					}
				}
				return verify.Failf("issue #%d missing comment referencing PR #%d with label totals", issueNumber, prNumber)
			},
		}},
	}
}
