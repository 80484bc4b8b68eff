/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package scoreranking

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func goodLines() []string {
	lines := make([]string, len(expectedRanking))
	for i, e := range expectedRanking {
		lines[i] = fmt.Sprintf("%s;%.1f", e.Path, e.Amount)
	}
	return lines
}

func writeRanking(t *testing.T, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "score_ranking.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPipelinePasses(t *testing.T) {
	t.Parallel()
	dir := writeRanking(t, goodLines())
	res := Pipeline(dir).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed: %s", res.Reason)
	}
}

func TestPipelineAcceptsTieSwap(t *testing.T) {
	t.Parallel()
	lines := goodLines()
	// Xia Wang and Hao Liu are tied at 276.0; either order is a valid
	// ranking.
	lines[3], lines[4] = lines[4], lines[3]
	dir := writeRanking(t, lines)
	res := Pipeline(dir).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed on tied swap: %s", res.Reason)
	}
}

func TestPipelineRejectsNonTiedSwap(t *testing.T) {
	t.Parallel()
	lines := goodLines()
	lines[0], lines[1] = lines[1], lines[0]
	dir := writeRanking(t, lines)
	res := Pipeline(dir).Run(context.Background())
	if res.Passed {
		t.Fatal("Run() passed on out-of-order ranking")
	}
	if !strings.Contains(res.Reason, "descending") {
		t.Errorf("reason: got = %q, wanted order failure", res.Reason)
	}
}

func TestPipelineFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		mutate     func([]string) []string
		wantReason string
	}{{
		name: "unknown student",
		mutate: func(lines []string) []string {
			lines[5] = "Unknown Student;271.5"
			return lines
		},
		wantReason: "unexpected entry",
	}, {
		name: "score off beyond tolerance",
		mutate: func(lines []string) []string {
			lines[0] = "Wei Zhang;285.503"
			return lines
		},
		wantReason: "unexpected entry",
	}, {
		name: "missing row",
		mutate: func(lines []string) []string {
			return lines[:len(lines)-1]
		},
		wantReason: "expected 20 ranked students",
	}, {
		name: "malformed row",
		mutate: func(lines []string) []string {
			lines[10] = "Gang Xu 255.0"
			return lines
		},
		wantReason: "separator",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := writeRanking(t, tt.mutate(goodLines()))
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
