/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package mdtable extracts structured records from markdown tables in
// agent-authored report files.
package mdtable

import "strings"

// Record is one table row. Cells are trimmed and positional, matching the
// column order of the header row.
type Record []string

// Cell returns the i-th cell, or "" when the row is too short.
func (r Record) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Parse locates a table by an exact substring match on its header row and
// returns the rows that follow. The separator row is skipped, each
// `|`-delimited row becomes a Record, and parsing stops at the first
// non-table line that starts a new `##` section. Rows whose cells are all
// empty are dropped.
func Parse(content, header string) []Record {
	var records []Record
	inTable := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if !inTable {
			if strings.Contains(line, header) {
				inTable = true
			}
			continue
		}

		if isSeparator(trimmed) {
			continue
		}

		if strings.HasPrefix(trimmed, "|") {
			if rec := splitRow(trimmed); len(rec) > 0 {
				records = append(records, rec)
			}
			continue
		}

		// A non-table line opening a new section ends the table.
		if trimmed != "" && strings.Contains(trimmed, "##") {
			break
		}
	}

	return records
}

// isSeparator reports whether the line is the |---|---| row under the
// header.
func isSeparator(line string) bool {
	if !strings.HasPrefix(line, "|") {
		return false
	}
	rest := strings.Trim(line, "| ")
	if rest == "" {
		return false
	}
	for _, r := range rest {
		switch r {
		case '-', ':', '|', ' ':
		default:
			return false
		}
	}
	return strings.Contains(rest, "-")
}

// splitRow splits a `| a | b |` line into trimmed cells, dropping the
// empty fragments produced by the leading and trailing delimiters.
func splitRow(line string) Record {
	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return nil
	}
	cells := make(Record, 0, len(parts)-2)
	nonEmpty := false
	for _, p := range parts[1 : len(parts)-1] {
		cell := strings.TrimSpace(p)
		if cell != "" {
			nonEmpty = true
		}
		cells = append(cells, cell)
	}
	if !nonEmpty {
		return nil
	}
	return cells
}
