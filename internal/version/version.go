// Package version reports build information of the laureate binary.
package version

import (
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Module    string `json:"module"`
	Dirty     bool   `json:"dirty"`
}

// Info returns the build information, falling back to the VCS stamp embedded by
// the Go toolchain when ldflags were not set.
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: GoVersion,
		Dirty:     strings.HasSuffix(GitCommit, "-dirty"),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.Module = bi.Main.Path
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == unknownValue {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == unknownValue {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			info.Dirty = info.Dirty || s.Value == "true"
		}
	}
	return info
}

// String returns the text printed by --version.
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "laureate %s", b.Version)
	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")

	if b.BuildDate != unknownValue && b.BuildDate != "" {
		fmt.Fprintf(&sb, "Build Date: %s\n", b.BuildDate)
	}
	if b.GitCommit != unknownValue && b.GitCommit != "" {
		fmt.Fprintf(&sb, "Git Commit: %s\n", b.ShortCommit())
	}
	fmt.Fprintf(&sb, "Go Version: %s\n", b.GoVersion)
	return sb.String()
}

// ShortCommit returns the abbreviated commit hash.
func (b BuildInfo) ShortCommit() string {
	commit := strings.TrimSuffix(b.GitCommit, "-dirty")
	if len(commit) > commitHashLength {
		commit = commit[:commitHashLength]
	}
	return commit
}

// LogValue implements slog.LogValuer.
func (b BuildInfo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("version", b.Version),
		slog.String("commit", b.ShortCommit()),
		slog.String("go", b.GoVersion),
	)
}

// UserAgent identifies the binary in generated artifacts.
func UserAgent() string {
	return "laureate/" + Version
}

// IsRelease returns true if this is a release version (not dev)
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "-")
}
