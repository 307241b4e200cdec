package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/engine"
	"github.com/hotspots-dev/hotspots/internal/langdispatch"
	"github.com/hotspots-dev/hotspots/internal/risk"
)

const trivialGo = `package sample

func Trivial() int {
	return 1
}
`

const branchingGo = `package sample

func Branching(x int) int {
	if x > 0 {
		return 1
	}
	return 0
}
`

type recordingObserver struct {
	mu       sync.Mutex
	analyzed []string
	failed   []string
}

func (o *recordingObserver) FileAnalyzed(relPath string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.analyzed = append(o.analyzed, relPath)
}

func (o *recordingObserver) ParseFailed(relPath string, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, relPath)
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestRunAnalyzesEveryRecognizedFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.go":         trivialGo,
		"b.go":         branchingGo,
		"README.md":    "not code",
		"vendor/c.txt": "ignored",
	})

	obs := &recordingObserver{}
	registry := langdispatch.NewRegistry()
	opts := engine.Options{Weights: risk.DefaultWeights(), Thresholds: risk.DefaultThresholds(), Observer: obs}

	result, err := engine.Run(context.Background(), dir, registry, opts)

	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go", "b.go"}, result.Files)
	require.Len(t, result.Functions, 2)
	require.ElementsMatch(t, []string{"a.go", "b.go"}, obs.analyzed)
	require.Empty(t, obs.failed)
}

func TestRunProducesCanonicallySortedFunctions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"z.go": trivialGo,
		"a.go": trivialGo,
	})

	registry := langdispatch.NewRegistry()
	opts := engine.Options{Weights: risk.DefaultWeights(), Thresholds: risk.DefaultThresholds()}

	result, err := engine.Run(context.Background(), dir, registry, opts)

	require.NoError(t, err)
	require.Len(t, result.Functions, 2)
	require.Less(t, result.Functions[0].FunctionID, result.Functions[1].FunctionID)
}

func TestRunFailsFastOnParseError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"broken.go": "package sample\nfunc broken( {\n",
	})

	obs := &recordingObserver{}
	registry := langdispatch.NewRegistry()
	opts := engine.Options{Weights: risk.DefaultWeights(), Thresholds: risk.DefaultThresholds(), Observer: obs}

	_, err := engine.Run(context.Background(), dir, registry, opts)

	require.Error(t, err)
	require.NotEmpty(t, obs.failed)
}

const branchingPython = `def branching(x):
    if x > 0:
        return 1
    return 0
`

const branchingJava = `class Sample {
    int branching(int x) {
        if (x > 0) {
            return 1;
        }
        return 0;
    }
}
`

const branchingJavaScript = `function branching(x) {
    if (x > 0) {
        return 1;
    }
    return 0;
}
`

const branchingRust = `fn branching(x: i32) -> i32 {
    if x > 0 {
        return 1;
    }
    0
}
`

func TestRunAnalyzesEveryRecognizedLanguage(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.go":   branchingGo,
		"a.py":   branchingPython,
		"A.java": branchingJava,
		"a.js":   branchingJavaScript,
		"a.rs":   branchingRust,
	})

	registry := langdispatch.NewRegistry()
	opts := engine.Options{Weights: risk.DefaultWeights(), Thresholds: risk.DefaultThresholds()}

	result, err := engine.Run(context.Background(), dir, registry, opts)

	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go", "a.py", "A.java", "a.js", "a.rs"}, result.Files)
	require.Len(t, result.Functions, 5)
	for _, fn := range result.Functions {
		require.GreaterOrEqual(t, fn.Metrics.CC, uint32(2))
	}
}

func TestRunAppliesIncludeExcludeFilters(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"keep/a.go": trivialGo,
		"skip/b.go": trivialGo,
	})

	registry := langdispatch.NewRegistry()
	opts := engine.Options{
		Weights:    risk.DefaultWeights(),
		Thresholds: risk.DefaultThresholds(),
		Filters:    langdispatch.Filters{Include: []string{"keep/**"}},
	}

	result, err := engine.Run(context.Background(), dir, registry, opts)

	require.NoError(t, err)
	require.Equal(t, []string{"keep/a.go"}, result.Files)
}
