/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package pollwait implements the bounded sleep-poll loop used to wait for
// GitHub Actions workflow runs to settle before artifact checks run.
//
// The wait is best effort, not a correctness guarantee: it exists to reduce
// false negatives from inspecting automation artifacts (comments, labels)
// before the automation that creates them has finished. On timeout the
// caller proceeds with verification anyway.
package pollwait

import (
	"context"
	"errors"
	"time"

	"github.com/chainguard-dev/clog"
)

// Outcome is what a single poll observed.
type Outcome int

const (
	// Busy means recent activity is still queued or in progress.
	Busy Outcome = iota
	// Empty means no activity exists yet.
	Empty
	// Settled means all recent activity has completed.
	Settled
)

// Config configures the poll loop. The zero value is not usable; start
// from Default.
type Config struct {
	// Interval is the sleep between polls while activity is in progress.
	Interval time.Duration
	// MaxWait bounds the total wall-clock time spent waiting. Until
	// returns within MaxWait plus one Interval regardless of upstream
	// state.
	MaxWait time.Duration
	// EmptyGap is the shorter sleep between polls that saw no activity.
	EmptyGap time.Duration
	// MaxEmptyPolls is the number of consecutive empty polls after which
	// the wait gives up early, on the assumption that the activity was
	// never triggered.
	MaxEmptyPolls int
	// Grace is a final sleep after settling, letting server-side
	// post-processing catch up.
	Grace time.Duration
}

// Default returns the polling configuration used by the GitHub verifiers.
func Default() Config {
	return Config{
		Interval:      10 * time.Second,
		MaxWait:       90 * time.Second,
		EmptyGap:      5 * time.Second,
		MaxEmptyPolls: 2,
		Grace:         2 * time.Second,
	}
}

// Validate checks that the configuration has valid values.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if c.MaxWait <= 0 {
		return errors.New("max wait must be positive")
	}
	if c.EmptyGap < 0 {
		return errors.New("empty gap cannot be negative")
	}
	if c.MaxEmptyPolls < 1 {
		return errors.New("max empty polls must be at least 1")
	}
	if c.Grace < 0 {
		return errors.New("grace cannot be negative")
	}
	return nil
}

// Until polls until the poll function reports Settled, MaxEmptyPolls
// consecutive polls report Empty, or MaxWait elapses. It returns true only
// on Settled. Timeouts, early give-ups, and context cancellation all
// return false; Until never returns an error. Poll errors are logged and
// treated as Busy so a flaky upstream read cannot abort the wait.
func Until(ctx context.Context, cfg Config, operation string, poll func(context.Context) (Outcome, error)) bool {
	log := clog.FromContext(ctx).With("operation", operation)
	deadline := time.Now().Add(cfg.MaxWait)
	empty := 0

	for time.Now().Before(deadline) {
		outcome, err := poll(ctx)
		if err != nil {
			log.With("error", err.Error()).Warn("Poll failed, will retry")
			outcome = Busy
		}

		switch outcome {
		case Settled:
			log.Info("Activity settled")
			sleep(ctx, cfg.Grace)
			return true
		case Empty:
			empty++
			if empty >= cfg.MaxEmptyPolls {
				log.With("polls", empty).Warn("No activity detected, giving up early")
				return false
			}
			if !sleep(ctx, cfg.EmptyGap) {
				return false
			}
			continue
		case Busy:
			empty = 0
		}

		if !sleep(ctx, cfg.Interval) {
			return false
		}
	}

	log.With("max_wait", cfg.MaxWait).Warn("Timed out waiting for activity to settle")
	return false
}

// sleep blocks for d or until the context is done, reporting whether the
// full duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
