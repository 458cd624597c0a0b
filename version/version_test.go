package version

import (
	"strings"
	"testing"
	"time"
)

func stamp(t *testing.T, version, commit, branch, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBranch, origBuildTime := Version, GitCommit, GitBranch, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime = origVersion, origCommit, origBranch, origBuildTime
	})
	Version, GitCommit, GitBranch, BuildTime = version, commit, branch, buildTime
}

func TestGetStamped(t *testing.T) {
	stamp(t, "1.0.0", "abc1234def", "main", "2024-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.0.0" || !info.IsRelease {
		t.Errorf("expected release 1.0.0, got %+v", info)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit truncated to 7, got %q", info.GitCommit)
	}
	if !info.BuildDate.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected build date %v", info.BuildDate)
	}
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"dev", false},
		{"1.0.0-dirty", false},
		{"1.0.0", true},
	}
	for _, tc := range tests {
		stamp(t, tc.version, "", "", "")
		if got := Get().IsRelease; got != tc.want {
			t.Errorf("%s: IsRelease = %v, want %v", tc.version, got, tc.want)
		}
	}
}

func TestInfoFormatting(t *testing.T) {
	built := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		info  Info
		short string
		full  string
	}{
		{"dev", Info{Version: "dev"}, "dev", "dev"},
		{"commit", Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234", "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty", "1.0.0-abc1234-dirty"},
		{"main branch hidden", Info{Version: "1.0.0", GitBranch: "main", BuildDate: built}, "1.0.0", "1.0.0 built 2024-01-15T10:30:00Z"},
		{"feature branch", Info{Version: "1.0.0", GitBranch: "feature/x"}, "1.0.0", "1.0.0 (feature/x)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.short {
				t.Errorf("Short() = %q, want %q", got, tc.short)
			}
			if got := tc.info.String(); got != tc.full {
				t.Errorf("String() = %q, want %q", got, tc.full)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	stamp(t, "2.1.0", "", "", "")
	if ua := UserAgent("apikit"); !strings.HasPrefix(ua, "apikit/2.1.0") {
		t.Errorf("unexpected user agent %q", ua)
	}
}
