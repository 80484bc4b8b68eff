/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package scoreranking verifies the score ranking task: the agent must
// rank the student database by total score into score_ranking.txt as
// name;score lines in descending score order.
package scoreranking

import (
	"context"
	_ "embed"
	"encoding/json"
	"path/filepath"

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

const rankingFile = "score_ranking.txt"

// expectedRanking is the answer table in one valid order. Students with
// equal scores may appear in either order, so membership is checked as
// a multiset and ordering only requires non-increasing scores.
var expectedRanking = []fscheck.Entry{
	{Path: "Wei Zhang", Amount: 285.5},
	{Path: "Mei Lin", Amount: 281.0},
	{Path: "Jun Chen", Amount: 278.5},
	{Path: "Xia Wang", Amount: 276.0},
	{Path: "Hao Liu", Amount: 276.0},
	{Path: "Yan Sun", Amount: 271.5},
	{Path: "Lei Zhao", Amount: 268.0},
	{Path: "Min Wu", Amount: 265.5},
	{Path: "Tao Huang", Amount: 262.0},
	{Path: "Fang Zhou", Amount: 259.5},
	{Path: "Gang Xu", Amount: 255.0},
	{Path: "Hong Ma", Amount: 252.5},
	{Path: "Bo Zhu", Amount: 249.0},
	{Path: "Ning Hu", Amount: 246.5},
	{Path: "Qiang Guo", Amount: 243.0},
	{Path: "Li He", Amount: 239.5},
	{Path: "Juan Gao", Amount: 236.0},
	{Path: "Peng Lin", Amount: 231.5},
	{Path: "Rui Song", Amount: 227.0},
	{Path: "Shan Tang", Amount: 221.5},
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

// parseRanking splits every line into a (name, score) entry.
func parseRanking(lines []string) ([]fscheck.Entry, error) {
	entries := make([]fscheck.Entry, 0, len(lines))
	for _, line := range lines {
		parts, err := fscheck.SplitRecord(line, ";", 2)
		if err != nil {
			return nil, err
		}
		score, err := fscheck.ParseAmount(parts[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, fscheck.Entry{Path: parts[0], Amount: score})
	}
	return entries, nil
}

// Pipeline builds the check sequence against the resolved testbed
// directory.
func Pipeline(dir string) verify.Pipeline {
	ranking := filepath.Join(dir, rankingFile)
	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "ranking exists",
			Run: func(context.Context) verify.Result {
				if !fscheck.FileExists(ranking) {
					return verify.Failf("file %q not found", rankingFile)
				}
				return verify.Pass()
			},
		}, {
			Name: "ranking format",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(ranking)
				if err != nil {
					return verify.Failf("%v", err)
				}
				if _, err := parseRanking(lines); err != nil {
					return verify.Failf("%v", err)
				}
				return verify.Pass()
			},
		}, {
			Name: "row count",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(ranking)
				if err != nil {
					return verify.Failf("%v", err)
				}
				if len(lines) != len(expectedRanking) {
					return verify.Failf("expected %d ranked students, found %d", len(expectedRanking), len(lines))
				}
				return verify.Pass()
			},
		}, {
			Name: "membership",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(ranking)
				if err != nil {
					return verify.Failf("%v", err)
				}
				entries, err := parseRanking(lines)
				if err != nil {
					return verify.Failf("%v", err)
				}
				if ok, reason := fscheck.MatchEntries(entries, expectedRanking, fscheck.ScoreTolerance); !ok {
					return verify.Failf("%s", reason)
				}
				return verify.Pass()
			},
		}, {
			Name: "descending order",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(ranking)
				if err != nil {
					return verify.Failf("%v", err)
				}
				entries, err := parseRanking(lines)
				if err != nil {
					return verify.Failf("%v", err)
				}
				scores := make([]float64, len(entries))
				for i, e := range entries {
					scores[i] = e.Amount
				}
				if !fscheck.NonIncreasing(scores, fscheck.ScoreTolerance) {
					return verify.Failf("scores are not in descending order")
				}
				return verify.Pass()
			},
		}},
	}
}
