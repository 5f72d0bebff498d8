package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckVersion(t *testing.T) {
	require.NotPanics(t, func() { CheckVersion(MinUpdateVersion) })
	require.NotPanics(t, func() { CheckVersion(Version - 1) })

	require.Panics(t, func() { CheckVersion(Version) })
	require.Panics(t, func() { CheckVersion(MinUpdateVersion - 1) })
}

func TestAppendVersion(t *testing.T) {
	require.Equal(t, []any{Version}, AppendVersion(nil))
	require.Equal(t, []any{"a", 1, Version}, AppendVersion([]any{"a", 1}))
}
