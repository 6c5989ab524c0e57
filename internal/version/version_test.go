package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet_VCSDirtyFromLinkTime(t *testing.T) {
	saved := VCSDirty
	t.Cleanup(func() { VCSDirty = saved })

	// test binaries carry no vcs.modified setting, so the linked value stands
	VCSDirty = nil
	if got := Get().VCSDirty; got != nil {
		t.Fatalf("VCSDirty = %v, want nil", *got)
	}
	dirty := true
	VCSDirty = &dirty
	if !Get().Dirty() {
		t.Fatal("Dirty() = false, want true")
	}
}

func TestMerge(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.11",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "false"},
			{Key: "vcs.modified", Value: "junk"},
		},
	}

	info := Info{Commit: "none"}
	info.merge(bi)
	if info.Commit != "abc123" || info.CommitDate != "2026-01-02T03:04:05Z" || info.BuildDate != info.CommitDate {
		t.Fatalf("merged = %+v", info)
	}
	if info.VCSDirty == nil || *info.VCSDirty {
		t.Fatalf("VCSDirty = %v, want false", info.VCSDirty)
	}
	if info.GoVersion != "go1.24.11" {
		t.Fatalf("GoVersion = %q", info.GoVersion)
	}

	stamped := Info{Commit: "linked", BuildDate: "yesterday"}
	stamped.merge(bi)
	if stamped.Commit != "linked" || stamped.BuildDate != "yesterday" {
		t.Fatalf("link-time values overwritten: %+v", stamped)
	}
}

func TestString(t *testing.T) {
	s := Info{AppName: AppName, Version: "v1.2.3", Commit: "abc"}.String()
	for _, want := range []string{"avatars-web v1.2.3", "commit=abc", "dirty=false"} {
		if !strings.Contains(s, want) {
			t.Fatalf("%q lacks %q", s, want)
		}
	}
}
