/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shzhiqi/mcpverify/tasks"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered verification tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, task := range tasks.All() {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", task.Name, task.Service); err != nil {
				return err
			}
		}
		return nil
	},
}
