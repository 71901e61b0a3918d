// Package compileinfo reports the module version and VCS state a binary was
// built from, so that a count matrix can be traced back to the code that made
// it.
package compileinfo

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

type BuildInfo struct {
	Binary     string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Dirty      bool
}

func (b BuildInfo) String() string {
	if b.Binary == "" {
		return "geocounts: no build information embedded in this binary."
	}

	version := b.Version
	if version == "" || version == "(devel)" {
		version = "a development build"
	}

	dirty := ""
	if b.Dirty {
		dirty = " The working tree had uncommitted changes."
	}

	return fmt.Sprintf("%s (%s) built with %s from commit %v at %v.%s", b.Binary, version, b.GoVersion, b.Commit, b.CommitTime, dirty)
}

// Get reads the build information embedded by the Go toolchain.
func Get() BuildInfo {
	out := BuildInfo{}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) BuildInfo {
	out := BuildInfo{
		Binary:    info.Path,
		Version:   info.Main.Version,
		GoVersion: info.GoVersion,
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Dirty = s.Value == "true"
		}
	}

	return out
}

func Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s\n", Get())
}

func PrintToStdErr() {
	Fprint(os.Stderr)
}
