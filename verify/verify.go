/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package verify

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"
)

// Result is the outcome of a single check or of a whole pipeline.
// Reason is empty when Passed is true, and holds the first failing
// check's diagnostic otherwise.
type Result struct {
	Passed bool
	Reason string
}

// Pass returns a passing Result.
func Pass() Result {
	return Result{Passed: true}
}

// Failf returns a failing Result with a formatted reason.
func Failf(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Check is one named assertion over an inspection target. Run may perform
// I/O (file reads, API calls) but never mutates the target.
type Check struct {
	Name string
	Run  func(context.Context) Result
}

// Pipeline is an ordered list of checks executed strictly sequentially.
type Pipeline struct {
	Name   string
	Checks []Check
}

// Run executes the checks in declared order and returns the first failing
// Result. Checks after the first failure never run. Returns a passing
// Result only when every check passes. There are no retries at this layer;
// checks that need to wait for eventual consistency do their own polling.
func (p Pipeline) Run(ctx context.Context) Result {
	log := clog.FromContext(ctx).With("pipeline", p.Name)

	for _, c := range p.Checks {
		res := c.Run(ctx)
		if !res.Passed {
			log.With("check", c.Name).With("reason", res.Reason).Warn("Check failed")
			return res
		}
		log.With("check", c.Name).Info("Check passed")
	}

	return Pass()
}
