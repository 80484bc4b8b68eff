/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders the aggregated outcome of a verification run
// as a markdown table.
package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/shzhiqi/mcpverify/verify"
)

// Row is one task's outcome in the run report.
type Row struct {
	Task    string
	Service string
	Result  verify.Result
}

// Verdict is the rendered pass/fail cell.
func (r Row) Verdict() string {
	if r.Result.Passed {
		return "PASS"
	}
	return "FAIL"
}

// newTable creates a table writer with the formatting shared by all run
// reports.
func newTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 120,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Render writes the run report table. It returns true when every row
// passed.
func Render(w io.Writer, rows []Row) (bool, error) {
	table := newTable([]string{"Task", "Service", "Verdict", "Reason"}, w)

	allPassed := true
	for _, row := range rows {
		if !row.Result.Passed {
			allPassed = false
		}
		if err := table.Append([]string{row.Task, row.Service, row.Verdict(), row.Result.Reason}); err != nil {
			return false, err
		}
	}
	if err := table.Render(); err != nil {
		return false, err
	}
	return allPassed, nil
}
