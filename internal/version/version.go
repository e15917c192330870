package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const devVersion = "0.3.0-dev"

// Set with -ldflags "-X github.com/Ermachok/yandex-drive-sych/internal/version.Version=...".
var (
	AppName   = "CloudSync"
	Version   = devVersion
	Revision  = "HEAD"
	BuildDate = ""
)

func init() {
	info, _ := debug.ReadBuildInfo()
	resolve(info, time.Now())
}

// resolve fills whatever the linker left unset from the module build info,
// falling back to now for the build date.
func resolve(info *debug.BuildInfo, now time.Time) {
	settings := map[string]string{}
	if info != nil {
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}
		if v := info.Main.Version; (Version == "" || Version == devVersion) && v != "" && v != "(devel)" {
			Version = strings.TrimPrefix(v, "v")
		}
	}

	if rev := settings["vcs.revision"]; rev != "" && (Revision == "" || Revision == "HEAD") {
		Revision = shortRevision(rev, settings["vcs.modified"] == "true")
	}

	if BuildDate == "" {
		BuildDate = settings["vcs.time"]
	}
	if BuildDate == "" {
		BuildDate = now.UTC().Format(time.RFC3339)
	}
}

func shortRevision(rev string, dirty bool) string {
	const width = 12
	if len(rev) > width {
		rev = rev[:width]
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

// Detailed is printed by `cloudsync version` and served on the control plane index.
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s; %s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH, BuildDate)
}

// UserAgent identifies remote API calls, e.g. `CloudSync/0.3.0 (5e23a4c1d2e3; linux; amd64)`.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s; %s)", AppName, Version, Revision, runtime.GOOS, runtime.GOARCH)
}
