// Package mode implements the PR/mainline mode controller of §4.O:
// parent selection and persistence policy, driven either by explicit
// configuration or CI environment detection.
package mode

import (
	"fmt"
	"os"

	"github.com/hotspots-dev/hotspots/internal/gitcontext"
)

// Mode is which parent-selection/persistence regime is in effect.
type Mode int

const (
	Mainline Mode = iota
	PullRequest
)

// Detect reports PullRequest when explicitly forced, or when the CI
// environment indicates a pull request build (§4.O (b)). Only
// GITHUB_EVENT_NAME and GITHUB_REF are consulted, per §6's environment
// contract.
func Detect(forcePR bool) Mode {
	if forcePR {
		return PullRequest
	}
	if os.Getenv("GITHUB_EVENT_NAME") == "pull_request" && os.Getenv("GITHUB_REF") != "" {
		return PullRequest
	}
	return Mainline
}

// ParentResult is the resolved parent sha plus any non-fatal warning
// from a merge-base fallback.
type ParentResult struct {
	ParentSHA string
	Warning   string
}

// ResolveParent chooses the delta-base commit per §4.O. baseBranch is
// the PR's base branch name, required only in PullRequest mode.
func ResolveParent(m Mode, git *gitcontext.Client, headSHA, baseBranch string, parents []string) (ParentResult, error) {
	if m == Mainline {
		if len(parents) == 0 {
			return ParentResult{}, nil
		}
		return ParentResult{ParentSHA: parents[0]}, nil
	}

	base, err := git.MergeBase(headSHA, baseBranch)
	if err != nil || base == "" {
		if len(parents) == 0 {
			return ParentResult{}, nil
		}
		return ParentResult{
			ParentSHA: parents[0],
			Warning:   fmt.Sprintf("merge-base resolution failed, falling back to parents[0]: %v", err),
		}, nil
	}

	return ParentResult{ParentSHA: base}, nil
}

// ShouldPersist reports whether a snapshot computed under this mode
// should be written to the store. PR mode never persists (§4.O).
func ShouldPersist(m Mode) bool {
	return m == Mainline
}
