package mode_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/gitcontext"
	"github.com/hotspots-dev/hotspots/internal/mode"
)

func TestDetectForcePR(t *testing.T) {
	require.Equal(t, mode.PullRequest, mode.Detect(true))
}

func TestDetectFromCIEnvironment(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "pull_request")
	t.Setenv("GITHUB_REF", "refs/pull/1/merge")

	require.Equal(t, mode.PullRequest, mode.Detect(false))
}

func TestDetectDefaultsToMainline(t *testing.T) {
	os.Unsetenv("GITHUB_EVENT_NAME")
	os.Unsetenv("GITHUB_REF")

	require.Equal(t, mode.Mainline, mode.Detect(false))
}

func TestDetectIgnoresNonPullRequestEvent(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "push")
	t.Setenv("GITHUB_REF", "refs/heads/main")

	require.Equal(t, mode.Mainline, mode.Detect(false))
}

func TestResolveParentMainlineUsesFirstParent(t *testing.T) {
	result, err := mode.ResolveParent(mode.Mainline, nil, "head", "", []string{"p1", "p2"})

	require.NoError(t, err)
	require.Equal(t, "p1", result.ParentSHA)
	require.Empty(t, result.Warning)
}

func TestResolveParentMainlineRootCommit(t *testing.T) {
	result, err := mode.ResolveParent(mode.Mainline, nil, "head", "", nil)

	require.NoError(t, err)
	require.Empty(t, result.ParentSHA)
}

func TestResolveParentPullRequestFallsBackOnMergeBaseFailure(t *testing.T) {
	client := gitcontext.New(t.TempDir()) // not a git repo: merge-base always errors

	result, err := mode.ResolveParent(mode.PullRequest, client, "head", "main", []string{"p1"})

	require.NoError(t, err)
	require.Equal(t, "p1", result.ParentSHA)
	require.NotEmpty(t, result.Warning)
}

func TestResolveParentPullRequestNoFallbackOnRootCommit(t *testing.T) {
	client := gitcontext.New(t.TempDir())

	result, err := mode.ResolveParent(mode.PullRequest, client, "head", "main", nil)

	require.NoError(t, err)
	require.Empty(t, result.ParentSHA)
}

func TestShouldPersist(t *testing.T) {
	require.True(t, mode.ShouldPersist(mode.Mainline))
	require.False(t, mode.ShouldPersist(mode.PullRequest))
}
