/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shzhiqi/mcpverify/report"
	"github.com/shzhiqi/mcpverify/taskenv"
	"github.com/shzhiqi/mcpverify/tasks"

	// Register the verification tasks.
	_ "github.com/shzhiqi/mcpverify/tasks/budget"
	_ "github.com/shzhiqi/mcpverify/tasks/commitdate"
	_ "github.com/shzhiqi/mcpverify/tasks/featuretracking"
	_ "github.com/shzhiqi/mcpverify/tasks/gradesummary"
	_ "github.com/shzhiqi/mcpverify/tasks/labelguide"
	_ "github.com/shzhiqi/mcpverify/tasks/lintci"
	_ "github.com/shzhiqi/mcpverify/tasks/prautomation"
	_ "github.com/shzhiqi/mcpverify/tasks/releasemgmt"
	_ "github.com/shzhiqi/mcpverify/tasks/scoreranking"
)

var (
	passMark = color.New(color.FgGreen, color.Bold).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
)

var runCmd = &cobra.Command{
	Use:   "run [task ...]",
	Short: "Run verification tasks and report the verdicts",
	Long:  "Run the named verification tasks, or every registered task when none are named. Exits 1 when any task fails, printing the failure reason.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := taskenv.Load(ctx, envFile)
		if err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}

		selected := tasks.All()
		if len(args) > 0 {
			selected = selected[:0]
			for _, name := range args {
				task, ok := tasks.Lookup(name)
				if !ok {
					return fmt.Errorf("unknown task %q, see `mcpverify list`", name)
				}
				selected = append(selected, task)
			}
		}

		out := cmd.OutOrStdout()
		rows := make([]report.Row, 0, len(selected))
		for _, task := range selected {
			res := task.Verify(ctx, env)
			rows = append(rows, report.Row{
				Task:    task.Name,
				Service: string(task.Service),
				Result:  res,
			})
			if res.Passed {
				fmt.Fprintf(out, "%s %s\n", passMark("PASS"), task.Name)
			} else {
				fmt.Fprintf(out, "%s %s: %s\n", failMark("FAIL"), task.Name, res.Reason)
			}
		}

		fmt.Fprintln(out)
		allPassed, err := report.Render(out, rows)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
		if !allPassed {
			return fmt.Errorf("verification failed")
		}
		return nil
	},
}
