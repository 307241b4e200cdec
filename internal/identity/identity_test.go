package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hotspots-dev/hotspots/internal/identity"
)

func TestFunctionID(t *testing.T) {
	require.Equal(t, "src/a.go::Foo", identity.FunctionID("src/a.go", "Foo"))
	require.Equal(t, "src/a.go::Foo", identity.FunctionID("./src/a.go", "Foo"))
	require.Equal(t, "src/a.go::Foo", identity.FunctionID(`src\a.go`, "Foo"))
}

func TestAnonymous(t *testing.T) {
	require.Equal(t, "<anonymous>@src/a.go:10", identity.Anonymous("src/a.go", 10))
}

func TestSetDuplicateDetection(t *testing.T) {
	s := identity.NewSet()
	require.True(t, s.AddIfAbsent("a::f"))
	require.False(t, s.AddIfAbsent("a::f"))
	require.True(t, s.AddIfAbsent("a::g"))
}
