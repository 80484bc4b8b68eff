/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package gradesummary verifies the grade-based score analysis task: the
// agent must summarize the student database into grade_summary.txt
// covering Chinese, Math, and English grade distributions.
package gradesummary

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/shzhiqi/mcpverify/fscheck"
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

const summaryFile = "grade_summary.txt"

// subjects that must be mentioned, matched case-insensitively since the
// summary is free-form text.
var subjects = []string{"chinese", "math", "english"}

// expectedStats is the answer table: total students, then per subject
// the grade counts followed by pass and fail totals. The summary is
// free-form, so the numbers are matched by multiplicity, not position.
var expectedStats = []int{
	150,
	42, 37, 43, 28, 122, 28,
	31, 38, 47, 34, 116, 34,
	32, 38, 38, 41, 1, 108, 42,
}

func init() {
	tasks.Register(tasks.Task{
		Name:     meta.CategoryID + "/" + meta.TaskID,
		Category: meta.CategoryID,
		Service:  tasks.Filesystem,
		Verify: func(ctx context.Context, env *taskenv.Env) verify.Result {
			dir, err := env.TestDir(meta.CategoryID)
			if err != nil {
				return verify.Failf("%v", err)
			}
			if !fscheck.DirExists(dir) {
				return verify.Failf("test directory %q not found", dir)
			}
			return Pipeline(dir).Run(ctx)
		},
	})
}

// Pipeline builds the check sequence against the resolved testbed
// directory.
func Pipeline(dir string) verify.Pipeline {
	summary := filepath.Join(dir, summaryFile)
	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "summary exists",
			Run: func(context.Context) verify.Result {
				if !fscheck.FileExists(summary) {
					return verify.Failf("file %q not found", summaryFile)
				}
				return verify.Pass()
			},
		}, {
			Name: "summary readable",
			Run: func(context.Context) verify.Result {
				raw, err := os.ReadFile(summary)
				if err != nil {
					return verify.Failf("reading %s: %v", summaryFile, err)
				}
				if strings.TrimSpace(string(raw)) == "" {
					return verify.Failf("%s is empty", summaryFile)
				}
				return verify.Pass()
			},
		}, {
			Name: "three subjects present",
			Run: func(context.Context) verify.Result {
				raw, err := os.ReadFile(summary)
				if err != nil {
					return verify.Failf("reading %s: %v", summaryFile, err)
				}
				content := strings.ToLower(string(raw))
				var missing []string
				for _, s := range subjects {
					if !strings.Contains(content, s) {
						missing = append(missing, s)
					}
				}
				if len(missing) > 0 {
					return verify.Failf("missing subjects in %s: %s", summaryFile, strings.Join(missing, ", "))
				}
				return verify.Pass()
			},
		}, {
			Name: "grade statistics",
			Run: func(context.Context) verify.Result {
				raw, err := os.ReadFile(summary)
				if err != nil {
					return verify.Failf("reading %s: %v", summaryFile, err)
				}
				found := fscheck.ExtractInts(string(raw))
				if len(found) == 0 {
					return verify.Failf("no numbers found in %s", summaryFile)
				}
				if ok, reason := fscheck.ContainsCounts(found, expectedStats); !ok {
					return verify.Failf("%s", reason)
				}
				return verify.Pass()
			},
		}},
	}
}
