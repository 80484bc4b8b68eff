/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package budget verifies the budget computation task: the agent must
// collect expenses scattered across the desktop template testbed into
// total_budget.txt as path;price lines followed by a grand total.
package budget

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
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

const (
	reportFile    = "total_budget.txt"
	expectedTotal = 95624.46
	// 15 expense lines plus the total line.
	expectedLines = 16
)

// expectedExpenses is the answer table. Three expenses per source file,
// order not significant.
var expectedExpenses = []fscheck.Entry{
	{Path: "Archives/tax_documents_2022.csv", Amount: 42000.00},
	{Path: "Archives/tax_documents_2022.csv", Amount: 1800.00},
	{Path: "Archives/tax_documents_2022.csv", Amount: 950.00},
	{Path: "Documents/Personal/tax_info_2023.csv", Amount: 45000.00},
	{Path: "Documents/Personal/tax_info_2023.csv", Amount: 2500.00},
	{Path: "Documents/Personal/tax_info_2023.csv", Amount: 1200.00},
	{Path: "Documents/budget.csv", Amount: 250.00},
	{Path: "Documents/budget.csv", Amount: 180.00},
	{Path: "Documents/budget.csv", Amount: 120.00},
	{Path: "Downloads/expenses.csv", Amount: 45.99},
	{Path: "Downloads/expenses.csv", Amount: 99.00},
	{Path: "Downloads/expenses.csv", Amount: 234.50},
	{Path: "Downloads/price_comparisons.csv", Amount: 879.99},
	{Path: "Downloads/price_comparisons.csv", Amount: 289.99},
	{Path: "Downloads/price_comparisons.csv", Amount: 74.99},
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

func report(dir string) string {
	return filepath.Join(dir, reportFile)
}

// parseExpenses splits the expense lines (everything before the total)
// into entries. The file is re-read per check, so the length is guarded
// here rather than assumed from an earlier check.
func parseExpenses(lines []string) ([]fscheck.Entry, error) {
	if len(lines) == 0 {
		return nil, errors.New("file is empty")
	}
	entries := make([]fscheck.Entry, 0, len(lines)-1)
	for _, line := range lines[:len(lines)-1] {
		parts, err := fscheck.SplitRecord(line, ";", 2)
		if err != nil {
			return nil, err
		}
		amount, err := fscheck.ParseAmount(parts[1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, fscheck.Entry{Path: parts[0], Amount: amount})
	}
	return entries, nil
}

// Pipeline builds the check sequence against the resolved testbed
// directory.
func Pipeline(dir string) verify.Pipeline {
	return verify.Pipeline{
		Name: meta.TaskID,
		Checks: []verify.Check{{
			Name: "report exists",
			Run: func(context.Context) verify.Result {
				if !fscheck.FileExists(report(dir)) {
					return verify.Failf("file %q not found", reportFile)
				}
				return verify.Pass()
			},
		}, {
			Name: "report format",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(report(dir))
				if err != nil {
					return verify.Failf("%v", err)
				}
				if len(lines) < 2 {
					return verify.Failf("file must contain at least 2 lines (expenses + total)")
				}
				if _, err := parseExpenses(lines); err != nil {
					return verify.Failf("%v", err)
				}
				if _, err := fscheck.ParseAmount(lines[len(lines)-1]); err != nil {
					return verify.Failf("last line %v", err)
				}
				return verify.Pass()
			},
		}, {
			Name: "expense entry count",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(report(dir))
				if err != nil {
					return verify.Failf("%v", err)
				}
				if len(lines) != expectedLines {
					return verify.Failf("expected %d lines (%d expenses + 1 total), found %d",
						expectedLines, expectedLines-1, len(lines))
				}
				return verify.Pass()
			},
		}, {
			Name: "file paths and counts",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(report(dir))
				if err != nil {
					return verify.Failf("%v", err)
				}
				entries, err := parseExpenses(lines)
				if err != nil {
					return verify.Failf("%v", err)
				}
				paths := make([]string, len(entries))
				for i, e := range entries {
					paths[i] = e.Path
				}
				if ok, reason := fscheck.MatchPathCounts(paths, expectedExpenses); !ok {
					return verify.Failf("%s", reason)
				}
				return verify.Pass()
			},
		}, {
			Name: "individual prices",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(report(dir))
				if err != nil {
					return verify.Failf("%v", err)
				}
				entries, err := parseExpenses(lines)
				if err != nil {
					return verify.Failf("%v", err)
				}
				if ok, reason := fscheck.MatchEntries(entries, expectedExpenses, fscheck.CurrencyTolerance); !ok {
					return verify.Failf("%s", reason)
				}
				return verify.Pass()
			},
		}, {
			Name: "stated total",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(report(dir))
				if err != nil {
					return verify.Failf("%v", err)
				}
				if len(lines) == 0 {
					return verify.Failf("file is empty")
				}
				total, err := fscheck.ParseAmount(lines[len(lines)-1])
				if err != nil {
					return verify.Failf("last line %v", err)
				}
				if !fscheck.WithinTolerance(total, expectedTotal, fscheck.CurrencyTolerance) {
					return verify.Failf("expected total %.2f, found %g", expectedTotal, total)
				}
				return verify.Pass()
			},
		}, {
			Name: "total calculation",
			Run: func(context.Context) verify.Result {
				lines, err := fscheck.Lines(report(dir))
				if err != nil {
					return verify.Failf("%v", err)
				}
				entries, err := parseExpenses(lines)
				if err != nil {
					return verify.Failf("%v", err)
				}
				var sum float64
				for _, e := range entries {
					sum += e.Amount
				}
				stated, err := fscheck.ParseAmount(lines[len(lines)-1])
				if err != nil {
					return verify.Failf("last line %v", err)
				}
				if !fscheck.WithinTolerance(sum, stated, fscheck.CurrencyTolerance) {
					return verify.Failf("total calculation mismatch: calculated %.2f, stated %.2f", sum, stated)
				}
				return verify.Pass()
			},
		}},
	}
}
