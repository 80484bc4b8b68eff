/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

package lintci

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/stretchr/testify/require"

	"github.com/shzhiqi/mcpverify/githubapi"
	"github.com/shzhiqi/mcpverify/pollwait"
)

const prNum = 8

const goodConfig = `{
  "env": {"node": true},
  "rules": {
    "no-unused-vars": "error",
    "semi": ["error", "always"],
    "quotes": ["error", "single"]
  }
}`

const goodWorkflow = `name: Code Linting
on:
  pull_request:
  push:
jobs:
  lint:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-node@v4
      - run: npm ci
      - run: npx eslint src/
`

const goodPRBody = `## Summary
Adds an ESLint workflow that lints src/ on every push.

## Changes
New lint workflow and ESLint configuration.

## Testing
First commit fails the lint run, second commit fixes it.
`

// fixture is a fake mcpmark-cicd repository served over httptest.
type fixture struct {
	branchMissing    bool
	config           string
	workflow         string
	prTitle          string
	prBody           string
	commitSHAs       []string
	firstConclusion  string
	secondConclusion string
}

func newFixture() *fixture {
	return &fixture{
		config:           goodConfig,
		workflow:         goodWorkflow,
		prTitle:          "Add ESLint workflow for continuous linting",
		prBody:           goodPRBody,
		commitSHAs:       []string{"badsha", "goodsha"},
		firstConclusion:  "failure",
		secondConclusion: "success",
	}
}

func (f *fixture) client(t *testing.T) *githubapi.Client {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/repos/owner/mcpmark-cicd/branches/ci%2Fadd-eslint-workflow", func(w http.ResponseWriter, r *http.Request) {
		if f.branchMissing {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"name":"ci/add-eslint-workflow"}`)
	})

	mux.HandleFunc("/repos/owner/mcpmark-cicd/contents/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/repos/owner/mcpmark-cicd/contents/")
		files := map[string]string{
			".eslintrc.json":             f.config,
			".github/workflows/lint.yml": f.workflow,
			"src/example.js":             "const x = 1;\n",
		}
		content, ok := files[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		encoded := base64.StdEncoding.EncodeToString([]byte(content))
		fmt.Fprintf(w, `{"type":"file","encoding":"base64","content":%q}`, encoded)
	})

	mux.HandleFunc("/repos/owner/mcpmark-cicd/pulls", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != "closed" {
			fmt.Fprint(w, `[]`)
			return
		}
		body, _ := json.Marshal(f.prBody)
		fmt.Fprintf(w, `[{"number":%d,"title":%q,"body":%s,"merged_at":"2025-08-12T09:00:00Z"}]`,
			prNum, f.prTitle, body)
	})

	mux.HandleFunc(fmt.Sprintf("/repos/owner/mcpmark-cicd/pulls/%d/commits", prNum), func(w http.ResponseWriter, r *http.Request) {
		base := time.Date(2025, 8, 12, 8, 0, 0, 0, time.UTC)
		var commits []string
		for i, sha := range f.commitSHAs {
			commits = append(commits, fmt.Sprintf(
				`{"sha":%q,"commit":{"author":{"date":%q}}}`,
				sha, base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339)))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(commits, ","))
	})

	mux.HandleFunc("/repos/owner/mcpmark-cicd/actions/runs", func(w http.ResponseWriter, r *http.Request) {
		conclusions := map[string]string{
			"badsha":  f.firstConclusion,
			"goodsha": f.secondConclusion,
		}
		sha := r.URL.Query().Get("head_sha")
		conclusion, ok := conclusions[sha]
		if !ok {
			fmt.Fprint(w, `{"total_count":0,"workflow_runs":[]}`)
			return
		}
		fmt.Fprintf(w, `{"total_count":1,"workflow_runs":[{"id":900,"head_sha":%q,"status":"completed","conclusion":%q}]}`,
			sha, conclusion)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	gh := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = base
	return githubapi.NewFromClient(gh, "owner", "mcpmark-cicd")
}

func fastPoll() pollwait.Config {
	return pollwait.Config{
		Interval:      time.Millisecond,
		MaxWait:       100 * time.Millisecond,
		EmptyGap:      time.Millisecond,
		MaxEmptyPolls: 2,
	}
}

func TestPipelinePasses(t *testing.T) {
	t.Parallel()
	f := newFixture()
	res := Pipeline(f.client(t), fastPoll()).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed: %s", res.Reason)
	}
}

func TestPipelineFallbackKeyword(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.prTitle = "Introduce eslint to the build"
	res := Pipeline(f.client(t), fastPoll()).Run(context.Background())
	if !res.Passed {
		t.Fatalf("Run() failed: %s", res.Reason)
	}
}

func TestPipelineFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		mutate     func(*fixture)
		wantReason string
	}{{
		name:       "missing ci branch",
		mutate:     func(f *fixture) { f.branchMissing = true },
		wantReason: `branch "ci/add-eslint-workflow" not found`,
	}, {
		name:       "config not json",
		mutate:     func(f *fixture) { f.config = "module.exports = {}" },
		wantReason: "not valid JSON",
	}, {
		name: "config missing rule",
		mutate: func(f *fixture) {
			f.config = strings.Replace(f.config, `"semi"`, `"eqeqeq"`, 1)
		},
		wantReason: `missing rule "semi"`,
	}, {
		name: "workflow missing keyword",
		mutate: func(f *fixture) {
			f.workflow = strings.Replace(f.workflow, "npm ci", "npm install", 1)
		},
		wantReason: `workflow missing "npm ci"`,
	}, {
		name: "workflow missing push trigger",
		mutate: func(f *fixture) {
			f.workflow = strings.Replace(f.workflow, "push:", "workflow_dispatch:", 1)
		},
		wantReason: "pull_request and push triggers",
	}, {
		name:       "pr not found",
		mutate:     func(f *fixture) { f.prTitle = "Tidy the README" },
		wantReason: "lint PR not found",
	}, {
		name: "pr missing section",
		mutate: func(f *fixture) {
			f.prBody = strings.Replace(f.prBody, "## Testing", "## Notes", 1)
		},
		wantReason: `missing required section "## Testing"`,
	}, {
		name:       "wrong commit count",
		mutate:     func(f *fixture) { f.commitSHAs = []string{"badsha", "goodsha", "extrasha"} },
		wantReason: "expected exactly 2 commits, found 3",
	}, {
		name:       "first commit passed",
		mutate:     func(f *fixture) { f.firstConclusion = "success" },
		wantReason: "should have failed",
	}, {
		name:       "second commit failed",
		mutate:     func(f *fixture) { f.secondConclusion = "failure" },
		wantReason: "should have passed",
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			tt.mutate(f)
			res := Pipeline(f.client(t), fastPoll()).Run(context.Background())
			if res.Passed {
				t.Fatal("Run() passed, wanted failure")
			}
			if !strings.Contains(res.Reason, tt.wantReason) {
				t.Errorf("reason: got = %q, wanted substring %q", res.Reason, tt.wantReason)
			}
		})
	}
}
