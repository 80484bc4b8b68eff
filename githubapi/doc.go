/*
Copyright 2026 The mcpverify Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package githubapi wraps the go-github client with the read and write
// primitives the GitHub task verifiers are built from.
//
// The read path follows a deliberate non-error contract: a 404 means the
// resource does not exist and comes back as ok=false, and any other API
// or network failure is logged and also comes back as ok=false. Check
// functions therefore compose without error plumbing, and a transient
// failure reads the same as a wrong answer, which is what a verifier
// wants. The write path, used only by ephemeral probe checks, returns
// errors normally.
package githubapi
