// Package version carries build metadata stamped in with -ldflags and
// backfilled from the Go module build info.
package version

import (
	"fmt"
	"runtime/debug"
	"strconv"
)

// AppName identifies this service in logs, metrics, traces and profiles.
const AppName = "avatars-web"

// Set at link time, e.g. -X .../internal/version.Version=v1.4.0.
var (
	Version    = "dev"
	Commit     = "none"
	CommitDate string
	BuildDate  string
	BuildID    string
	GoVersion  string
	VCSDirty   *bool
)

type Info struct {
	AppName    string `json:"app"`
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	CommitDate string `json:"commit_date"`
	BuildDate  string `json:"build_date"`
	BuildID    string `json:"build_id"`
	GoVersion  string `json:"go_version"`
	VCSDirty   *bool  `json:"vcs_dirty,omitempty"`
}

func Get() Info {
	info := Info{
		AppName:    AppName,
		Version:    Version,
		Commit:     Commit,
		CommitDate: CommitDate,
		BuildDate:  BuildDate,
		BuildID:    BuildID,
		GoVersion:  GoVersion,
		VCSDirty:   VCSDirty,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.merge(bi)
	}
	return info
}

// merge fills gaps from the toolchain's VCS stamping. Link-time values win,
// except the Go version which always reflects the running binary.
func (i *Info) merge(bi *debug.BuildInfo) {
	i.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		if s.Value == "" {
			continue
		}
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "none" {
				i.Commit = s.Value
			}
		case "vcs.time":
			i.CommitDate = s.Value
			if i.BuildDate == "" {
				i.BuildDate = s.Value
			}
		case "vcs.modified":
			if b, err := strconv.ParseBool(s.Value); err == nil {
				i.VCSDirty = &b
			}
		}
	}
}

// Dirty reports whether the build came from a modified tree; unknown is false.
func (i Info) Dirty() bool {
	return i.VCSDirty != nil && *i.VCSDirty
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit=%s, commit_date=%s, build_id=%s, build_date=%s, go=%s, dirty=%t)",
		i.AppName, i.Version, i.Commit, i.CommitDate, i.BuildID, i.BuildDate, i.GoVersion, i.Dirty())
}
