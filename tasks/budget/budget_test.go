/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package budget

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var goodLines = []string{
	"Archives/tax_documents_2022.csv;42000.00",
	"Archives/tax_documents_2022.csv;1800.00",
	"Archives/tax_documents_2022.csv;950.00",
	"Documents/Personal/tax_info_2023.csv;45000.00",
	"Documents/Personal/tax_info_2023.csv;2500.00",
	"Documents/Personal/tax_info_2023.csv;1200.00",
	"Documents/budget.csv;250.00",
	"Documents/budget.csv;180.00",
	"Documents/budget.csv;120.00",
	"Downloads/expenses.csv;45.99",
	"Downloads/expenses.csv;99.00",
	"Downloads/expenses.csv;234.50",
	"Downloads/price_comparisons.csv;879.99",
	"Downloads/price_comparisons.csv;289.99",
	"Downloads/price_comparisons.csv;74.99",
	"95624.46",
}

func writeReport(t *testing.T, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "total_budget.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPipelinePasses(t *testing.T) {
	t.Parallel()
	dir := writeReport(t, goodLines)
	res := Pipeline(dir).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed: %s", res.Reason)
	}
}

func TestPipelineIgnoresLineOrder(t *testing.T) {
	t.Parallel()
	shuffled := make([]string, 0, len(goodLines))
	// Reverse the expense lines, keep the total last.
	for i := len(goodLines) - 2; i >= 0; i-- {
		shuffled = append(shuffled, goodLines[i])
	}
	shuffled = append(shuffled, goodLines[len(goodLines)-1])

	dir := writeReport(t, shuffled)
	res := Pipeline(dir).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed on reordered expenses: %s", res.Reason)
	}
}

func TestPipelineAcceptsRelativePrefixes(t *testing.T) {
	t.Parallel()
	prefixed := make([]string, len(goodLines))
	for i, line := range goodLines[:len(goodLines)-1] {
		prefixed[i] = "./" + line
	}
	prefixed[len(prefixed)-1] = goodLines[len(goodLines)-1]

	dir := writeReport(t, prefixed)
	res := Pipeline(dir).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed on ./-prefixed paths: %s", res.Reason)
	}
}

func TestPipelineFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		mutate     func([]string) []string
		wantReason string
	}{{
		name: "wrong total",
		mutate: func(lines []string) []string {
			out := append([]string{}, lines...)
			out[len(out)-1] = "90000.00"
			return out
		},
		wantReason: "expected total",
	}, {
		name: "missing path",
		mutate: func(lines []string) []string {
			out := append([]string{}, lines...)
			out[0] = "Downloads/other_expenses.csv;42000.00"
			return out
		},
		wantReason: "unexpected file path",
	}, {
		name: "missing entry line",
		mutate: func(lines []string) []string {
			return append(append([]string{}, lines[1:len(lines)-1]...), lines[len(lines)-1])
		},
		wantReason: "expected 16 lines",
	}, {
		name: "price off beyond tolerance",
		mutate: func(lines []string) []string {
			out := append([]string{}, lines...)
			out[9] = "Downloads/expenses.csv;46.99"
			return out
		},
		wantReason: "unexpected entry",
	}, {
		name: "malformed line",
		mutate: func(lines []string) []string {
			out := append([]string{}, lines...)
			out[3] = "Documents/Personal/tax_info_2023.csv 45000.00"
			return out
		},
		wantReason: "separator",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := writeReport(t, tt.mutate(goodLines))
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

func TestParseExpensesEmpty(t *testing.T) {
	t.Parallel()
	// Every check re-reads the file, so a report emptied between checks
	// must surface as an error rather than a slice panic.
	if _, err := parseExpenses(nil); err == nil {
		t.Error("parseExpenses(nil) = nil error, wanted failure")
	}
	if _, err := parseExpenses([]string{}); err == nil {
		t.Error("parseExpenses(empty) = nil error, wanted failure")
	}
}

func TestPipelineEmptyReport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "total_budget.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	res := Pipeline(dir).Run(context.Background())
	if res.Passed {
		t.Fatal("Run() passed on empty report")
	}
}

func TestPipelineMissingFile(t *testing.T) {
	t.Parallel()
	res := Pipeline(t.TempDir()).Run(context.Background())
	if res.Passed {
		t.Fatal("Run() passed on empty directory")
	}
	if !strings.Contains(res.Reason, "total_budget.txt") {
		t.Errorf("reason: got = %q, wanted mention of total_budget.txt", res.Reason)
	}
}
