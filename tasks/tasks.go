/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package tasks is the registry of verifiable tasks. Task packages
// register themselves from init, and the CLI imports them for side
// effect.
package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shzhiqi/mcpverify/taskenv"
	"github.com/shzhiqi/mcpverify/verify"
)

// Service names the MCP service a task exercises.
type Service string

const (
	Filesystem Service = "filesystem"
	GitHub     Service = "github"
)

// Meta mirrors the meta.json each task package embeds alongside its
// verifier. CategoryID doubles as the testbed directory suffix for
// filesystem tasks and TaskID as the short task name.
type Meta struct {
	CategoryID string `json:"category_id"`
	TaskID     string `json:"task_id"`
	Service    string `json:"service"`
}

// Task is one registered verification target.
type Task struct {
	// Name is the task identifier, unique across the registry.
	Name string
	// Category groups tasks the way the eval testbeds are laid out.
	Category string
	// Service selects which environment the task needs.
	Service Service
	// Verify runs the task's check pipeline against the environment.
	Verify func(context.Context, *taskenv.Env) verify.Result
}

var (
	mu       sync.RWMutex
	registry = map[string]Task{}
)

// Register adds a task to the registry. It panics on a duplicate name
// since registration happens at init and a collision is a programming
// error.
func Register(t Task) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[t.Name]; ok {
		panic(fmt.Sprintf("task %q registered twice", t.Name))
	}
	registry[t.Name] = t
}

// Lookup returns the named task.
func Lookup(name string) (Task, bool) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

// All returns every registered task, sorted by name.
func All() []Task {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Task, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
