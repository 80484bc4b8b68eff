/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package gradesummary

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const goodSummary = `# Grade Summary

Total students: 150

## Chinese
A: 42, B: 37, C: 43, D: 28
Pass: 122, Fail: 28

## Math
A: 31, B: 38, C: 47, D: 34
Pass: 116, Fail: 34

## English
A: 32, B: 38, C: 38, D: 41, F: 1
Pass: 108, Fail: 42
`

func writeSummary(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "grade_summary.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPipelinePasses(t *testing.T) {
	t.Parallel()
	dir := writeSummary(t, goodSummary)
	res := Pipeline(dir).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed: %s", res.Reason)
	}
}

func TestPipelineCaseInsensitiveSubjects(t *testing.T) {
	t.Parallel()
	dir := writeSummary(t, strings.ToUpper(goodSummary))
	res := Pipeline(dir).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed on upper-cased summary: %s", res.Reason)
	}
}

func TestPipelineFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		content    string
		wantReason string
	}{{
		name:       "empty file",
		content:    "  \n\n",
		wantReason: "empty",
	}, {
		name:       "missing subject",
		content:    strings.ReplaceAll(goodSummary, "English", "History"),
		wantReason: "missing subjects",
	}, {
		name: "wrong statistic",
		// Chinese A count changed from 42 to 40; 42 still appears once
		// (English fail count) but is needed twice.
		content:    strings.Replace(goodSummary, "A: 42", "A: 40", 1),
		wantReason: "number 42 appears 1 times, expected 2 times",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := writeSummary(t, tt.content)
			res := Pipeline(dir).Run(context.Background())
			if res.Passed {
				t.Fatal("Run() passed, wanted failure")
			}
			if !strings.Contains(res.Reason, tt.wantReason) {
				t.Errorf("reason: got = %q, wanted substring %q", res.Reason, tt.wantReason)
			}
		})
	}
}

func TestPipelineMissingFile(t *testing.T) {
	t.Parallel()
	res := Pipeline(t.TempDir()).Run(context.Background())
	if res.Passed {
		t.Fatal("Run() passed on empty directory")
	}
	if !strings.Contains(res.Reason, "grade_summary.txt") {
		t.Errorf("reason: got = %q, wanted mention of grade_summary.txt", res.Reason)
	}
}
