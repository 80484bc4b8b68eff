/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// mcpverify is the entry point for the task verification CLI.
package main

import "github.com/shzhiqi/mcpverify/cmd"

func main() {
	cmd.Execute()
}
