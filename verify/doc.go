/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package verify provides the check-pipeline core shared by every task
// verifier: a named Check returns a Result, and a Pipeline runs an ordered
// list of Checks, stopping at the first failure.
//
// A Pipeline's Result is the sole externally observed output of a verifier.
// There is no partial aggregation: the pipeline either passes with an empty
// reason, or fails with the first failing check's reason. Checks are
// arranged cheapest first (existence) to most detailed last (content
// equality) so that failures surface quickly with a clear diagnostic.
//
// Checks may perform I/O but must not mutate the inspection target, with
// the single exception of declared ephemeral probes (see the githubapi
// package), which clean up after themselves on every path.
package verify
