package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "AdminList ") {
		t.Errorf("Info() should start with 'AdminList', got: %s", info)
	}
	if !strings.Contains(info, runtime.Version()) {
		t.Errorf("Info() should contain Go version, got: %s", info)
	}
}

func TestShort_Injected(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "1.2.3"

	if got := Short(); got != "1.2.3" {
		t.Errorf("Short() = %q, want 1.2.3", got)
	}
}

func TestShort_BuildInfoFallback(t *testing.T) {
	old := readBuildInfo
	t.Cleanup(func() { readBuildInfo = old })

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}}, true
	}
	if got := Short(); got != "v0.4.0" {
		t.Errorf("Short() = %q, want v0.4.0", got)
	}

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	if got := Short(); got != "dev" {
		t.Errorf("Short() = %q, want dev", got)
	}
}

func TestMap(t *testing.T) {
	m := Map()
	for _, key := range []string{"version", "git_commit", "build_date", "go_version", "platform"} {
		if _, ok := m[key]; !ok {
			t.Errorf("Map() missing key %q", key)
		}
	}
	if m["platform"] != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Map()[platform] = %q", m["platform"])
	}
}
