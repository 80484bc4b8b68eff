/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package releasemgmt verifies the release management task on the
// harmony fork: the agent must cut a release-v1.1.0 branch, land the
// token-mapping fixes and changelog on main, and merge the release PR
// using squash and merge.
package releasemgmt

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-github/v75/github"

	"github.com/shzhiqi/mcpverify/githubapi"
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
	repoName      = "harmony"
	releaseBranch = "release-v1.1.0"
	prKeyword     = "Release v1.1.0"
)

// fileFix is one expected content change on main. MinLength rejects
// files gutted down to just the expected snippet.
type fileFix struct {
	Path      string
	Needle    string
	MinLength int
}

var expectedFixes = []fileFix{
	{Path: "src/encoding.rs", Needle: `FormattingToken::MetaSep => "<|meta_sep|>"`, MinLength: 500},
	{Path: "src/registry.rs", Needle: `(FormattingToken::MetaSep, "<|meta_sep|>")`, MinLength: 500},
	{Path: "src/registry.rs", Needle: `(FormattingToken::MetaEnd, "<|meta_end|>")`, MinLength: 500},
	{Path: "demo/harmony-demo/src/lib/utils.ts", Needle: "export function cn(...inputs: ClassValue[])", MinLength: 50},
	{Path: ".gitignore", Needle: "!demo/harmony-demo/src/lib", MinLength: 100},
	{Path: "Cargo.toml", Needle: `version = "1.1.0"`, MinLength: 200},
}

var changelogKeywords = []string{
	"## [1.1.0] - 2025-08-07",
	"MetaSep token mapping bug",
	"shadcn utils.ts file",
	"Fixed MetaSep token",
	"Registry now properly recognizes",
}

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

// Pipeline builds the check sequence against a repository client.
func Pipeline(client *githubapi.Client) verify.Pipeline {
	// Resolved by the release PR check and reused by the merge method
	// check; pipeline order guarantees it is set before use.
	var releasePR *github.PullRequest

	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "release branch",
			Run: func(ctx context.Context) verify.Result {
				if !client.BranchExists(ctx, releaseBranch) {
					return verify.Failf("branch %q not found", releaseBranch)
				}
				return verify.Pass()
			},
		}, {
			Name: "release fixes on main",
			Run: func(ctx context.Context) verify.Result {
				for _, fix := range expectedFixes {
					content, ok := client.FileContent(ctx, fix.Path, githubapi.DefaultBranch)
					if !ok {
						return verify.Failf("%s not found on %s", fix.Path, githubapi.DefaultBranch)
					}
					if len(content) < fix.MinLength {
						return verify.Failf("%s is too small, expected at least %d bytes", fix.Path, fix.MinLength)
					}
					if !strings.Contains(content, fix.Needle) {
						return verify.Failf("%s missing expected content %q", fix.Path, fix.Needle)
					}
				}
				return verify.Pass()
			},
		}, {
			Name: "changelog",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, "CHANGELOG.md", githubapi.DefaultBranch)
				if !ok {
					return verify.Failf("CHANGELOG.md not found on %s", githubapi.DefaultBranch)
				}
				for _, kw := range changelogKeywords {
					if !strings.Contains(content, kw) {
						return verify.Failf("CHANGELOG.md missing %q", kw)
					}
				}
				return verify.Pass()
			},
		}, {
			Name: "release pull request",
			Run: func(ctx context.Context) verify.Result {
				pr, ok := client.FindPRByKeyword(ctx, prKeyword)
				if !ok {
					return verify.Failf("release PR with title containing %q not found", prKeyword)
				}
				if base := pr.GetBase().GetRef(); base != githubapi.DefaultBranch {
					return verify.Failf("release PR #%d targets %s, not %s", pr.GetNumber(), base, githubapi.DefaultBranch)
				}
				if pr.GetMergedAt().Time.IsZero() {
					return verify.Failf("release PR #%d was not merged", pr.GetNumber())
				}
				releasePR = pr
				return verify.Pass()
			},
		}, {
			Name: "squash merge",
			Run: func(ctx context.Context) verify.Result {
				method, ok := client.MergeMethod(ctx, releasePR)
				if !ok {
					return verify.Failf("could not determine merge method for PR #%d", releasePR.GetNumber())
				}
				if method != githubapi.MergeMethodSquash {
					return verify.Failf("PR #%d was not merged using squash and merge (got %s)", releasePR.GetNumber(), method)
				}
				commit, ok := client.Commit(ctx, releasePR.GetMergeCommitSHA())
				if !ok {
					return verify.Failf("merge commit %s not found", releasePR.GetMergeCommitSHA())
				}
				ref := fmt.Sprintf("#%d", releasePR.GetNumber())
				if !strings.Contains(commit.GetCommit().GetMessage(), ref) {
					return verify.Failf("merge commit message does not reference %s", ref)
				}
				return verify.Pass()
			},
		}},
	}
}
