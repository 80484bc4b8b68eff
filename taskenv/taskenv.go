/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package taskenv resolves the environment a verification run needs:
// GitHub credentials and the filesystem test root, sourced from the
// process environment with an optional .mcp_env dotenv file underneath.
package taskenv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/viper"
)

// DefaultDotenv is the conventional dotenv file holding eval credentials.
const DefaultDotenv = ".mcp_env"

// Env holds everything a task verifier can need. Which fields are
// required depends on the task's service, so validation happens in
// GitHub and TestDir rather than at load time.
type Env struct {
	GitHubToken string `env:"MCP_GITHUB_TOKEN"`
	GitHubOrg   string `env:"GITHUB_EVAL_ORG"`
	TestRoot    string `env:"FILESYSTEM_TEST_DIR"`
}

// Load builds an Env from the process environment, with values from the
// dotenv file at dotenvPath (if it exists) filling in anything unset.
// Process environment always wins over the file.
func Load(ctx context.Context, dotenvPath string) (*Env, error) {
	lookupers := []envconfig.Lookuper{envconfig.OsLookuper()}

	if dotenvPath != "" {
		if m, err := readDotenv(dotenvPath); err != nil {
			clog.FromContext(ctx).With("path", dotenvPath).With("error", err.Error()).
				Debug("Skipping dotenv file")
		} else {
			lookupers = append(lookupers, envconfig.MapLookuper(m))
		}
	}

	var env Env
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: envconfig.MultiLookuper(lookupers...),
	}); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	return &env, nil
}

// readDotenv parses a KEY=VALUE dotenv file into a lookup map.
func readDotenv(path string) (map[string]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	m := make(map[string]string)
	for _, key := range v.AllKeys() {
		m[strings.ToUpper(key)] = v.GetString(key)
	}
	return m, nil
}

// GitHub returns the token and org, failing fast with a setup diagnostic
// when either is missing. These messages describe the environment, not
// the task, so a misconfigured runner is distinguishable from a failed
// verification.
func (e *Env) GitHub() (token, org string, err error) {
	if e.GitHubToken == "" {
		return "", "", errors.New("MCP_GITHUB_TOKEN environment variable not set")
	}
	if e.GitHubOrg == "" {
		return "", "", errors.New("GITHUB_EVAL_ORG environment variable not set")
	}
	return e.GitHubToken, e.GitHubOrg, nil
}

// TestDir resolves the test directory for a filesystem task category. The
// category segment is appended only when the configured root does not
// already end with it.
func (e *Env) TestDir(category string) (string, error) {
	if e.TestRoot == "" {
		return "", errors.New("FILESYSTEM_TEST_DIR environment variable not set")
	}
	if filepath.Base(e.TestRoot) == category {
		return e.TestRoot, nil
	}
	return filepath.Join(e.TestRoot, category), nil
}
