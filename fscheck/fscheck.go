/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package fscheck provides the shared helpers filesystem verifiers build
// their checks from: line and delimiter structure, numeric tolerance,
// multiset comparison against expected-answer tables, and ranking order
// validation.
package fscheck

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Tolerances for floating-point comparisons. Score-like fields use the
// tighter tolerance; currency-like fields the looser one.
const (
	ScoreTolerance    = 0.001
	CurrencyTolerance = 0.01
)

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Lines reads path and returns its non-blank lines, trimmed.
func Lines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines, nil
}

// SplitRecord splits line on sep and requires exactly nfields fields.
func SplitRecord(line, sep string, nfields int) ([]string, error) {
	if !strings.Contains(line, sep) {
		return nil, fmt.Errorf("line does not contain %q separator: %s", sep, line)
	}
	parts := strings.Split(line, sep)
	if len(parts) != nfields {
		return nil, fmt.Errorf("line does not have exactly %d parts: %s", nfields, line)
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts, nil
}

// ParseAmount parses a numeric field, reporting the offending value on
// failure.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a valid number: %s", s)
	}
	return v, nil
}

// WithinTolerance reports whether actual is within eps of expected.
func WithinTolerance(actual, expected, eps float64) bool {
	return math.Abs(actual-expected) <= eps
}

// NonIncreasing reports whether scores are in valid descending order.
// Ties may appear in either order, so swapping two equally scored items
// keeps the ranking valid; swapping non-tied items does not.
func NonIncreasing(scores []float64, eps float64) bool {
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1]+eps {
			return false
		}
	}
	return true
}

var digits = regexp.MustCompile(`\d+`)

// ExtractInts returns every unsigned integer appearing in text, in order.
func ExtractInts(text string) []int {
	var out []int
	for _, m := range digits.FindAllString(text, -1) {
		if n, err := strconv.Atoi(m); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// ContainsCounts verifies that each expected number appears in found at
// least as many times as it appears in expected. Returns a diagnostic
// naming the first shortfall.
func ContainsCounts(found, expected []int) (bool, string) {
	counts := make(map[int]int, len(found))
	for _, n := range found {
		counts[n]++
	}
	want := make(map[int]int, len(expected))
	for _, n := range expected {
		want[n]++
	}
	keys := make([]int, 0, len(want))
	for n := range want {
		keys = append(keys, n)
	}
	sort.Ints(keys)
	for _, n := range keys {
		if counts[n] < want[n] {
			return false, fmt.Sprintf("number %d appears %d times, expected %d times", n, counts[n], want[n])
		}
	}
	return true, ""
}

// ReadJSON decodes the JSON file at path into v, reporting decode
// problems as a diagnostic rather than an error value.
func ReadJSON(path string, v any) (bool, string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Sprintf("reading %s: %v", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Sprintf("invalid JSON in %s: %v", filepath.Base(path), err)
	}
	return true, ""
}
