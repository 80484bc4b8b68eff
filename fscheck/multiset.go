/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package fscheck

import (
	"fmt"
	"strings"
)

// Entry is one (path, amount) record from a delimited report line.
type Entry struct {
	Path   string
	Amount float64
}

// NormalizePath strips leading ./ and ../ segments so agent output that
// prefixes relative markers still matches the expected path.
func NormalizePath(p string) string {
	for {
		switch {
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		case strings.HasPrefix(p, "../"):
			p = p[3:]
		default:
			return p
		}
	}
}

// PathMatches reports whether the actual path refers to the expected one,
// tolerating relative-marker prefixes and longer absolute forms.
func PathMatches(actual, expected string) bool {
	normalized := NormalizePath(actual)
	return normalized == expected || strings.Contains(normalized, expected)
}

// MatchEntries compares actual against expected as a multiset: every
// expected (path, amount) must appear exactly as many times as listed,
// in any order, with amounts compared within eps and paths matched via
// PathMatches. Entries matching nothing expected are rejected. Returns a
// diagnostic naming the first mismatch.
func MatchEntries(actual, expected []Entry, eps float64) (bool, string) {
	type group struct {
		entry     Entry
		want, got int
	}

	var groups []*group
	for _, e := range expected {
		found := false
		for _, g := range groups {
			if g.entry.Path == e.Path && g.entry.Amount == e.Amount {
				g.want++
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, &group{entry: e, want: 1})
		}
	}

	for _, a := range actual {
		matched := false
		for _, g := range groups {
			if PathMatches(a.Path, g.entry.Path) && WithinTolerance(a.Amount, g.entry.Amount, eps) {
				g.got++
				matched = true
				break
			}
		}
		if !matched {
			return false, fmt.Sprintf("unexpected entry: %s;%.2f", a.Path, a.Amount)
		}
	}

	for _, g := range groups {
		if g.got != g.want {
			if g.got == 0 {
				return false, fmt.Sprintf("missing expected entry: %s;%.2f", g.entry.Path, g.entry.Amount)
			}
			return false, fmt.Sprintf("entry %s;%.2f has wrong count: expected %d, found %d",
				g.entry.Path, g.entry.Amount, g.want, g.got)
		}
	}

	return true, ""
}

// MatchPathCounts verifies that each expected path appears the expected
// number of times among paths, with the same suffix-tolerant matching as
// MatchEntries, and that no unexpected path appears.
func MatchPathCounts(paths []string, expected []Entry) (bool, string) {
	type group struct {
		path      string
		want, got int
	}

	var groups []*group
	for _, e := range expected {
		found := false
		for _, g := range groups {
			if g.path == e.Path {
				g.want++
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, &group{path: e.Path, want: 1})
		}
	}

	for _, p := range paths {
		matched := false
		for _, g := range groups {
			if PathMatches(p, g.path) {
				g.got++
				matched = true
				break
			}
		}
		if !matched {
			return false, fmt.Sprintf("unexpected file path: %s", p)
		}
	}

	for _, g := range groups {
		if g.got != g.want {
			if g.got == 0 {
				return false, fmt.Sprintf("missing expected file path: %s", g.path)
			}
			return false, fmt.Sprintf("path %s has wrong count: expected %d, found %d", g.path, g.want, g.got)
		}
	}

	return true, ""
}
