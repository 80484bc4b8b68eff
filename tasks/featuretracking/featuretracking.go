/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package featuretracking verifies the feature commit tracking task on
// the claude-code fork: the agent must research three feature commits
// and record them in a FEATURE_COMMITS.md table on the default branch.
package featuretracking

import (
	"context"
	_ "embed"
	"encoding/json"
	"regexp"
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
	repoName   = "claude-code"
	reportFile = "FEATURE_COMMITS.md"

	tableHeader = "| Feature Name | Commit SHA | Author | Branch | Date | Files Changed | Commit Message |"
)

var requiredSections = []string{
	"# Feature Development Tracking",
	"## Overview",
	"## Feature Commit History",
}

// featureCommit is the answer table for one tracked feature. SHAs,
// authors, and dates compare exactly; these are machine identifiers.
type featureCommit struct {
	Name    string
	SHA     string
	Author  string
	Date    string
	Message string
}

var expectedFeatures = []featureCommit{{
	Name:    "Shell Completion Scripts",
	SHA:     "8a0febdd09bda32f38c351c0881784460d69997d",
	Author:  "gitmpr",
	Date:    "2025-08-01",
	Message: "feat: add shell completions (bash, zsh, fish)",
}, {
	Name:    "CHANGELOG Version 1.0.65",
	SHA:     "94dcaca5d71ad82644ae97f3a2b0c5eb8b63eae0",
	Author:  "QwertyJack",
	Date:    "2025-08-02",
	Message: "Merge branch 'anthropics:main' into main",
}, {
	Name:    "Rust Extraction Improvements",
	SHA:     "50e58affdf1bfc7d875202bc040ebe0dcfb7d332",
	Author:  "alokdangre",
	Date:    "2025-08-09",
	Message: "Enhance Rust extraction and output handling in workflows",
}}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

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

// tableRow is one parsed row of the feature table.
type tableRow struct {
	Name, SHA, Author, Branch, Date, FilesChanged, Message string
}

// parseFeatureTable extracts rows that carry at least the identifying
// columns. Rows missing name, SHA, author, branch, or date are dropped
// here and caught by the completeness check via the row count.
func parseFeatureTable(content string) []tableRow {
	var rows []tableRow
	for _, rec := range mdtable.Parse(content, tableHeader) {
		row := tableRow{
			Name:         rec.Cell(0),
			SHA:          rec.Cell(1),
			Author:       rec.Cell(2),
			Branch:       rec.Cell(3),
			Date:         rec.Cell(4),
			FilesChanged: rec.Cell(5),
			Message:      rec.Cell(6),
		}
		if row.Name != "" && row.SHA != "" && row.Author != "" && row.Branch != "" && row.Date != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

func expectedBySHA(sha string) (featureCommit, bool) {
	for _, f := range expectedFeatures {
		if f.SHA == sha {
			return f, true
		}
	}
	return featureCommit{}, false
}

// Pipeline builds the check sequence against a repository client.
func Pipeline(client *githubapi.Client) verify.Pipeline {
	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "report exists",
			Run: func(ctx context.Context) verify.Result {
				if _, ok := client.FileContent(ctx, reportFile, githubapi.DefaultBranch); !ok {
					return verify.Failf("%s not found in %s branch", reportFile, githubapi.DefaultBranch)
				}
				return verify.Pass()
			},
		}, {
			Name: "required sections",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, reportFile, githubapi.DefaultBranch)
				if !ok {
					return verify.Failf("%s not found in %s branch", reportFile, githubapi.DefaultBranch)
				}
				for _, section := range requiredSections {
					if !strings.Contains(content, section) {
						return verify.Failf("missing required section %q", section)
					}
				}
				return verify.Pass()
			},
		}, {
			Name: "feature table",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, reportFile, githubapi.DefaultBranch)
				if !ok {
					return verify.Failf("%s not found in %s branch", reportFile, githubapi.DefaultBranch)
				}
				if !strings.Contains(content, tableHeader) {
					return verify.Failf("table header format is incorrect")
				}
				rows := parseFeatureTable(content)
				if len(rows) < len(expectedFeatures) {
					return verify.Failf("expected at least %d features, found %d", len(expectedFeatures), len(rows))
				}
				return verify.Pass()
			},
		}, {
			Name: "feature commit shas",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, reportFile, githubapi.DefaultBranch)
				if !ok {
					return verify.Failf("%s not found in %s branch", reportFile, githubapi.DefaultBranch)
				}
				shaByName := map[string]string{}
				for _, row := range parseFeatureTable(content) {
					shaByName[row.Name] = row.SHA
				}
				for _, f := range expectedFeatures {
					sha, ok := shaByName[f.Name]
					if !ok {
						return verify.Failf("feature %q not found in table", f.Name)
					}
					if sha != f.SHA {
						return verify.Failf("wrong SHA for %q: expected %s, got %s", f.Name, f.SHA, sha)
					}
				}
				return verify.Pass()
			},
		}, {
			Name: "commit details",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, reportFile, githubapi.DefaultBranch)
				if !ok {
					return verify.Failf("%s not found in %s branch", reportFile, githubapi.DefaultBranch)
				}
				for _, row := range parseFeatureTable(content) {
					expected, tracked := expectedBySHA(row.SHA)
					if !tracked {
						continue
					}
					commit, ok := client.Commit(ctx, row.SHA)
					if !ok {
						return verify.Failf("commit %s not found", row.SHA)
					}
					if login := commit.GetAuthor().GetLogin(); login != expected.Author {
						return verify.Failf("wrong author for %s: expected %s, got %s", row.SHA, expected.Author, login)
					}
					if row.Message != expected.Message {
						return verify.Failf("wrong commit message in table for %s: expected %q, got %q",
							row.SHA, expected.Message, row.Message)
					}
					firstLine, _, _ := strings.Cut(commit.GetCommit().GetMessage(), "\n")
					if firstLine != expected.Message {
						return verify.Failf("wrong commit message for %s: expected %q, got %q",
							row.SHA, expected.Message, firstLine)
					}
					if !datePattern.MatchString(row.Date) {
						return verify.Failf("invalid date format for %q: %s", row.Name, row.Date)
					}
					if row.Date != expected.Date {
						return verify.Failf("wrong date for %s: expected %s, got %s", row.SHA, expected.Date, row.Date)
					}
				}
				return verify.Pass()
			},
		}, {
			Name: "table completeness",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, reportFile, githubapi.DefaultBranch)
				if !ok {
					return verify.Failf("%s not found in %s branch", reportFile, githubapi.DefaultBranch)
				}
				for _, row := range parseFeatureTable(content) {
					if row.Message == "" {
						return verify.Failf("incomplete information for feature %q", row.Name)
					}
				}
				return verify.Pass()
			},
		}},
	}
}
