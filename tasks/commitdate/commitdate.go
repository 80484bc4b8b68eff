/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package commitdate verifies the commit date task on the
// build-your-own-x fork: the agent must record, in ANSWER.md, the date
// the Voxel Engine entries were added to the README.
package commitdate

import (
	"context"
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/chainguard-dev/clog"

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
	repoName   = "build-your-own-x"
	answerFile = "ANSWER.md"
	// The upstream repository predates the main default and still uses
	// master.
	defaultRef = "master"

	expectedDate = "2018-07-07"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// voxelEntries are the README entries the date refers to. Their absence
// is only logged; the upstream README wording drifts over time.
var voxelEntries = []string{
	"Let's Make a Voxel Engine",
	"Java Voxel Engine Tutorial",
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
	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "answer file exists",
			Run: func(ctx context.Context) verify.Result {
				if _, ok := client.FileContent(ctx, answerFile, defaultRef); !ok {
					return verify.Failf("%s not found in repository", answerFile)
				}
				return verify.Pass()
			},
		}, {
			Name: "answer date format",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, answerFile, defaultRef)
				if !ok {
					return verify.Failf("%s not found in repository", answerFile)
				}
				answer := strings.TrimSpace(content)
				if !datePattern.MatchString(answer) {
					return verify.Failf("invalid date format, expected YYYY-MM-DD, got: %s", answer)
				}
				return verify.Pass()
			},
		}, {
			Name: "answer date",
			Run: func(ctx context.Context) verify.Result {
				content, ok := client.FileContent(ctx, answerFile, defaultRef)
				if !ok {
					return verify.Failf("%s not found in repository", answerFile)
				}
				if answer := strings.TrimSpace(content); answer != expectedDate {
					return verify.Failf("incorrect date, expected %s, got: %s", expectedDate, answer)
				}
				return verify.Pass()
			},
		}, {
			Name: "readme voxel section",
			Run: func(ctx context.Context) verify.Result {
				readme, ok := client.FileContent(ctx, "README.md", defaultRef)
				if !ok {
					return verify.Failf("README.md not found in repository")
				}
				if !strings.Contains(readme, "Voxel Engine") {
					return verify.Failf("Voxel Engine section not found in README.md")
				}
				for _, entry := range voxelEntries {
					if !strings.Contains(readme, entry) {
						clog.FromContext(ctx).With("entry", entry).Warn("Voxel Engine entry not found in README.md")
					}
				}
				return verify.Pass()
			},
		}},
	}
}
