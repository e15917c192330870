package version

import (
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var buildTime = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func restoreVersion(t *testing.T) {
	v, r, b := Version, Revision, BuildDate
	t.Cleanup(func() {
		Version, Revision, BuildDate = v, r, b
	})
}

func buildInfo(version string, settings map[string]string) *debug.BuildInfo {
	info := &debug.BuildInfo{Main: debug.Module{Version: version}}
	for k, v := range settings {
		info.Settings = append(info.Settings, debug.BuildSetting{Key: k, Value: v})
	}
	return info
}

func TestDetailedAndUserAgent(t *testing.T) {
	assert.Contains(t, Detailed(), Revision)
	assert.Contains(t, Detailed(), "/")
	assert.True(t, strings.HasPrefix(UserAgent(), AppName+"/"+Version+" ("))
}

func TestResolveFromBuildInfo(t *testing.T) {
	restoreVersion(t)
	Version, Revision, BuildDate = devVersion, "HEAD", ""

	resolve(buildInfo("v1.4.0", map[string]string{
		"vcs.revision": "abcdef1234567890",
		"vcs.modified": "true",
		"vcs.time":     "2025-12-12T01:00:00Z",
	}), buildTime)

	assert.Equal(t, "1.4.0", Version)
	assert.Equal(t, "abcdef123456-dirty", Revision)
	assert.Equal(t, "2025-12-12T01:00:00Z", BuildDate)
}

func TestResolveKeepsLinkerValues(t *testing.T) {
	restoreVersion(t)
	Version, Revision, BuildDate = "1.2.3", "deadbeef", "from-ldflags"

	resolve(buildInfo("v9.9.9", map[string]string{"vcs.revision": "abcdef"}), buildTime)

	assert.Equal(t, "1.2.3", Version)
	assert.Equal(t, "deadbeef", Revision)
	assert.Equal(t, "from-ldflags", BuildDate)
}

func TestResolveWithoutBuildInfo(t *testing.T) {
	restoreVersion(t)
	Version, Revision, BuildDate = devVersion, "HEAD", ""

	resolve(nil, buildTime)
	assert.Equal(t, devVersion, Version)
	assert.Equal(t, "HEAD", Revision)
	assert.Equal(t, "2025-06-01T08:00:00Z", BuildDate)

	BuildDate = ""
	resolve(buildInfo("(devel)", nil), buildTime)
	assert.Equal(t, devVersion, Version)
	assert.Equal(t, "2025-06-01T08:00:00Z", BuildDate)
}
