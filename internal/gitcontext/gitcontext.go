// Package gitcontext extracts the current commit's identity (§4.A) via
// subprocess invocations of git, grounded on the mutex-serialized
// exec.CommandContext wrapper idiom of lcgerke-gitDualRemote's CLI
// client (explicit cwd, GIT_TERMINAL_PROMPT=0 and LC_ALL=C pinning for
// stable output parsing) rather than a git2go binding, per the spec's
// explicit subprocess requirement.
package gitcontext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hotspots-dev/hotspots/internal/herrors"
)

// DefaultTimeout is the conservative per-invocation timeout §5 requires.
const DefaultTimeout = 10 * time.Second

// Context mirrors §3's Commit record, plus the detached-HEAD flag §4.A
// asks for alongside branch.
type Context struct {
	HeadSHA    string
	Parents    []string
	Timestamp  int64
	Branch     string
	IsDetached bool
}

// Client wraps git CLI invocations, serialized through mu so concurrent
// callers (the worker pool's per-file goroutines never call this, but
// a PR-mode merge-base lookup can race a mainline extract_context on
// shared test fixtures) never interleave stdout/stderr buffers.
type Client struct {
	repoPath string
	timeout  time.Duration
	mu       sync.Mutex
}

// New returns a Client rooted at repoPath using DefaultTimeout.
func New(repoPath string) *Client {
	return &Client{repoPath: repoPath, timeout: DefaultTimeout}
}

// WithTimeout returns a copy of c using the given per-invocation timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	return &Client{repoPath: c.repoPath, timeout: d}
}

func (c *Client) run(args ...string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.repoPath
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", &herrors.GitError{
			Operation: strings.Join(args, " "),
			Stderr:    stderr.String(),
			Timeout:   true,
			Err:       ctx.Err(),
		}
	}
	if err != nil {
		return "", &herrors.GitError{
			Operation: strings.Join(args, " "),
			Stderr:    stderr.String(),
			Err:       err,
		}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Extract returns the current HEAD's GitContext (§4.A). Missing parent
// SHAs are tolerated (a root commit) — callers surface that downstream
// as a baseline delta, not an error here.
func (c *Client) Extract() (Context, error) {
	sha, err := c.run("rev-parse", "HEAD")
	if err != nil {
		return Context{}, &herrors.InvalidRepository{Path: c.repoPath, Reason: "HEAD cannot be resolved"}
	}

	parentsLine, err := c.run("rev-list", "--parents", "-n", "1", "HEAD")
	if err != nil {
		return Context{}, err
	}
	fields := strings.Fields(parentsLine)
	var parents []string
	if len(fields) > 1 {
		parents = fields[1:]
	}

	tsStr, err := c.run("show", "-s", "--format=%ct", "HEAD")
	if err != nil {
		return Context{}, err
	}
	ts, perr := strconv.ParseInt(tsStr, 10, 64)
	if perr != nil {
		return Context{}, &herrors.GitError{Operation: "show -s --format=%ct HEAD", Err: fmt.Errorf("unparseable timestamp %q: %w", tsStr, perr)}
	}

	branch, berr := c.run("symbolic-ref", "--short", "HEAD")
	detached := berr != nil
	if detached {
		branch = ""
	}

	return Context{
		HeadSHA:    sha,
		Parents:    parents,
		Timestamp:  ts,
		Branch:     branch,
		IsDetached: detached,
	}, nil
}

// MergeBase returns the merge-base of a and b, for PR-mode parent
// selection (§4.O). Callers fall back to parents[0] with a warning on
// error rather than hard-failing.
func (c *Client) MergeBase(a, b string) (string, error) {
	return c.run("merge-base", a, b)
}

// ReachableFromRefs returns the set of commit SHAs reachable from the
// given ref patterns (default refs/heads/*), for the reachability
// pruner (§4.M).
func (c *Client) ReachableFromRefs(refPatterns ...string) (map[string]bool, error) {
	if len(refPatterns) == 0 {
		refPatterns = []string{"refs/heads/*"}
	}

	args := []string{"rev-list"}
	for _, p := range refPatterns {
		// rev-list does not expand a glob given as a plain revision.
		if strings.ContainsAny(p, "*?[") {
			p = "--glob=" + p
		}
		args = append(args, p)
	}
	out, err := c.run(args...)
	if err != nil {
		return nil, err
	}

	reachable := map[string]bool{}
	if out == "" {
		return reachable, nil
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			reachable[line] = true
		}
	}
	return reachable, nil
}
