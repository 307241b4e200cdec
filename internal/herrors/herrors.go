// Package herrors defines the error taxonomy shared across the hotspots
// engine. Concrete types carry the fields callers need to react
// programmatically; everything else is wrapped with fmt.Errorf.
package herrors

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when a cooperative cancellation signal trips
// mid-run. No partial snapshot or index update is ever emitted.
var ErrCancelled = errors.New("operation cancelled")

// InvalidRepository means the target path is not a git repo, or HEAD
// could not be resolved.
type InvalidRepository struct {
	Path   string
	Reason string
}

func (e *InvalidRepository) Error() string {
	return fmt.Sprintf("invalid repository at %s: %s", e.Path, e.Reason)
}

// GitError wraps a failed git subprocess invocation.
type GitError struct {
	Operation string
	Stderr    string
	Timeout   bool
	Err       error
}

func (e *GitError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("git %s: timed out", e.Operation)
	}

	return fmt.Sprintf("git %s: %v: %s", e.Operation, e.Err, e.Stderr)
}

func (e *GitError) Unwrap() error { return e.Err }

// ParseError means a language frontend rejected source.
type ParseError struct {
	File    string
	Line    int // 0 when unknown.
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s:%d: %s", e.File, e.Line, e.Message)
	}

	return fmt.Sprintf("parse error in %s: %s", e.File, e.Message)
}

// CfgConstructionError means CFG validation failed for a function.
type CfgConstructionError struct {
	File       string
	FunctionID string
	Reason     string
}

func (e *CfgConstructionError) Error() string {
	return fmt.Sprintf("cfg construction failed for %s (%s): %s", e.FunctionID, e.File, e.Reason)
}

// SnapshotConflict means immutable snapshot bytes would change on rewrite.
type SnapshotConflict struct {
	Sha string
}

func (e *SnapshotConflict) Error() string {
	return fmt.Sprintf("snapshot conflict: %s already exists with different content", e.Sha)
}

// IncompatibleSnapshots means a delta was requested between snapshots of
// different schema versions or compaction levels.
type IncompatibleSnapshots struct {
	Current string
	Parent  string
	Reason  string
}

func (e *IncompatibleSnapshots) Error() string {
	return fmt.Sprintf("incompatible snapshots %s -> %s: %s", e.Parent, e.Current, e.Reason)
}

// ConfigError means a configuration key failed validation.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error on %q: %s", e.Key, e.Reason)
}

// IOError wraps a filesystem failure.
type IOError struct {
	Path      string
	Operation string
	Err       error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error during %s on %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
