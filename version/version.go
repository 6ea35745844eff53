// Package version reports which build of humgrid is running.
package version

import "runtime/debug"

// Version can be set at build time, for example:
// go build -ldflags "-X github.com/vsariola/humgrid/version.Version=$(git describe --dirty)"
var Version string

// Hash is the short VCS revision embedded by the go tool, with a "-dirty"
// suffix for modified trees. Empty when built without VCS information.
var Hash = revision(debug.ReadBuildInfo())

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "devel"
}()

func revision(info *debug.BuildInfo, ok bool) string {
	if !ok {
		return ""
	}
	var rev string
	dirty := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			rev = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}
