package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origV, origC, origD := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origV, origC, origD
	})
}

func TestGetInfo(t *testing.T) {
	withVersion(t, "1.2.3", "unknown", "unknown")

	info, err := GetInfo()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, uint64(1), info.SemVer.Major())
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestGetInfo_Invalid(t *testing.T) {
	withVersion(t, "not-a-version", "unknown", "unknown")

	_, err := GetInfo()
	assert.Error(t, err)
	assert.Equal(t, "webbehave vnot-a-version (invalid version)", GetFormattedVersion())
}

func TestBaseVersionAndMetadata(t *testing.T) {
	withVersion(t, "0.3.1+42.abc1234", "unknown", "unknown")

	assert.Equal(t, "0.3.1", GetBaseVersion())
	assert.Equal(t, "42.abc1234", GetBuildMetadata())
	assert.Contains(t, GetDetailedVersion(), "Build Metadata: 42.abc1234")
}

func TestGetFormattedVersion(t *testing.T) {
	withVersion(t, "0.3.0", "0123456789abcdef", "2026-10-18")

	assert.Equal(t, "webbehave v0.3.0, commit 0123456, built 2026-10-18", GetFormattedVersion())
}

func TestIsCompatible(t *testing.T) {
	withVersion(t, "0.3.0", "unknown", "unknown")

	ok, err := IsCompatible(">= 0.3")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsCompatible("^1.0")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsCompatible("not a constraint")
	assert.Error(t, err)
}
