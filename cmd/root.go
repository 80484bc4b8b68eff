/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package cmd defines the command-line interface for mcpverify.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// envFile is the dotenv path used to fill in credentials and testbed
// locations not present in the process environment.
var envFile string

var rootCmd = &cobra.Command{
	Use:           "mcpverify",
	Short:         "Verify agent-completed filesystem and GitHub tasks",
	Long:          "mcpverify runs the verification pipelines that decide whether an agent completed its assigned filesystem or GitHub task correctly.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".mcp_env", "Path to the dotenv file with task credentials")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
}

// Execute runs the CLI and exits non-zero on any failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
