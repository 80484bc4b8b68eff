/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package fscheck_test

import (
	"strings"
	"testing"

	"github.com/shzhiqi/mcpverify/fscheck"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"Documents/budget.csv", "Documents/budget.csv"},
		{"./Documents/budget.csv", "Documents/budget.csv"},
		{"../../Documents/budget.csv", "Documents/budget.csv"},
		{".././Documents/budget.csv", "Documents/budget.csv"},
	}
	for _, tt := range tests {
		if got := fscheck.NormalizePath(tt.in); got != tt.want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathMatches(t *testing.T) {
	t.Parallel()
	if !fscheck.PathMatches("./Downloads/expenses.csv", "Downloads/expenses.csv") {
		t.Fatal("relative prefix must match")
	}
	if !fscheck.PathMatches("/sandbox/desktop/Downloads/expenses.csv", "Downloads/expenses.csv") {
		t.Fatal("longer absolute form must match")
	}
	if fscheck.PathMatches("Downloads/other.csv", "Downloads/expenses.csv") {
		t.Fatal("different file must not match")
	}
}

func TestMatchEntries(t *testing.T) {
	t.Parallel()
	expected := []fscheck.Entry{
		{Path: "Documents/budget.csv", Amount: 250.00},
		{Path: "Documents/budget.csv", Amount: 250.00},
		{Path: "Downloads/expenses.csv", Amount: 45.99},
	}

	t.Run("order independent", func(t *testing.T) {
		t.Parallel()
		actual := []fscheck.Entry{
			{Path: "Downloads/expenses.csv", Amount: 45.99},
			{Path: "./Documents/budget.csv", Amount: 250.00},
			{Path: "Documents/budget.csv", Amount: 250.004},
		}
		if ok, reason := fscheck.MatchEntries(actual, expected, fscheck.CurrencyTolerance); !ok {
			t.Fatalf("expected match, got: %s", reason)
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		t.Parallel()
		actual := []fscheck.Entry{
			{Path: "Documents/budget.csv", Amount: 250.00},
			{Path: "Documents/budget.csv", Amount: 250.00},
		}
		ok, reason := fscheck.MatchEntries(actual, expected, fscheck.CurrencyTolerance)
		if ok {
			t.Fatal("expected failure for missing entry")
		}
		if !strings.Contains(reason, "Downloads/expenses.csv") {
			t.Fatalf("reason should name the missing path, got: %s", reason)
		}
	})

	t.Run("unexpected entry", func(t *testing.T) {
		t.Parallel()
		actual := []fscheck.Entry{
			{Path: "Documents/budget.csv", Amount: 250.00},
			{Path: "Documents/budget.csv", Amount: 250.00},
			{Path: "Downloads/expenses.csv", Amount: 45.99},
			{Path: "Music/playlist.csv", Amount: 1.00},
		}
		ok, reason := fscheck.MatchEntries(actual, expected, fscheck.CurrencyTolerance)
		if ok {
			t.Fatal("expected failure for unexpected entry")
		}
		if !strings.Contains(reason, "Music/playlist.csv") {
			t.Fatalf("reason should name the unexpected path, got: %s", reason)
		}
	})

	t.Run("wrong count", func(t *testing.T) {
		t.Parallel()
		actual := []fscheck.Entry{
			{Path: "Documents/budget.csv", Amount: 250.00},
			{Path: "Documents/budget.csv", Amount: 250.00},
			{Path: "Documents/budget.csv", Amount: 250.00},
			{Path: "Downloads/expenses.csv", Amount: 45.99},
		}
		if ok, _ := fscheck.MatchEntries(actual, expected, fscheck.CurrencyTolerance); ok {
			t.Fatal("expected failure for duplicate beyond expected count")
		}
	})

	t.Run("amount beyond tolerance", func(t *testing.T) {
		t.Parallel()
		actual := []fscheck.Entry{
			{Path: "Documents/budget.csv", Amount: 250.00},
			{Path: "Documents/budget.csv", Amount: 250.00},
			{Path: "Downloads/expenses.csv", Amount: 46.99},
		}
		if ok, _ := fscheck.MatchEntries(actual, expected, fscheck.CurrencyTolerance); ok {
			t.Fatal("expected failure for amount off by a dollar")
		}
	})
}

func TestMatchPathCounts(t *testing.T) {
	t.Parallel()
	expected := []fscheck.Entry{
		{Path: "Documents/budget.csv"},
		{Path: "Documents/budget.csv"},
		{Path: "Downloads/expenses.csv"},
	}

	if ok, reason := fscheck.MatchPathCounts(
		[]string{"./Downloads/expenses.csv", "Documents/budget.csv", "Documents/budget.csv"},
		expected); !ok {
		t.Fatalf("expected match, got: %s", reason)
	}

	ok, reason := fscheck.MatchPathCounts([]string{"Documents/budget.csv", "Documents/budget.csv"}, expected)
	if ok {
		t.Fatal("expected failure for missing path")
	}
	if !strings.Contains(reason, "Downloads/expenses.csv") {
		t.Fatalf("reason should name the missing path, got: %s", reason)
	}

	if ok, _ := fscheck.MatchPathCounts([]string{"Videos/clip.csv"}, expected); ok {
		t.Fatal("expected failure for unexpected path")
	}
}
