// Package version reports how the snapfind binary was built.
//
// Release builds set the variables below with -ldflags, e.g.
//
//	-X github.com/Aman-CERP/snapfind/pkg/version.Version=v1.2.3
//
// Plain `go build` and `go install` builds fall back to the VCS stamp
// the toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is the JSON shape of `snapfind version --json`.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	infoOnce sync.Once
	info     BuildInfo
)

// Get returns the build information, reading the embedded VCS stamp
// once for any field ldflags left unset.
func Get() BuildInfo {
	infoOnce.Do(func() {
		info = BuildInfo{
			Version:   Version,
			Commit:    Commit,
			Date:      Date,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fillFromBuildInfo(&info, bi)
	})
	return info
}

func fillFromBuildInfo(b *BuildInfo, bi *debug.BuildInfo) {
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "unknown" {
				b.Commit = s.Value
				if len(b.Commit) > 12 {
					b.Commit = b.Commit[:12]
				}
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
}

// String is the one-line form printed by `snapfind version`.
func (b BuildInfo) String() string {
	commit := b.Commit
	if b.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("snapfind %s (commit: %s, built: %s, %s, %s)",
		b.Version, commit, b.Date, b.GoVersion, b.Platform)
}
