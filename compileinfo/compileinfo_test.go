package compileinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.21.0",
		Path:      "github.com/carbocation/geocounts/cmd/geocounts",
		Main:      debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	b := fromBuildInfo(info)
	if b.Commit != "abc123" || !b.Dirty || b.GoVersion != "go1.21.0" {
		t.Fatalf("Unexpected build info %+v", b)
	}

	s := b.String()
	for _, want := range []string{"a development build", "abc123", "uncommitted"} {
		if !strings.Contains(s, want) {
			t.Errorf("%q does not contain %q", s, want)
		}
	}
}

func TestEmptyBuildInfo(t *testing.T) {
	if s := (BuildInfo{}).String(); !strings.Contains(s, "no build information") {
		t.Errorf("Unexpected string %q", s)
	}
}
