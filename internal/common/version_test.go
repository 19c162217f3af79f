package common

import (
	"strings"
	"testing"
)

func TestApplyVersionFile(t *testing.T) {
	origV, origB, origC := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origV, origB, origC })

	Version, Build, GitCommit = "dev", "unknown", "abc1234"

	applyVersionFile(strings.NewReader(`
# written by the release script
version: 1.4.0
build: 2026-10-01T10:00:00Z
commit: fff0000
garbage line
`))

	if Version != "1.4.0" {
		t.Errorf("Version = %q, want 1.4.0", Version)
	}
	if Build != "2026-10-01T10:00:00Z" {
		t.Errorf("Build = %q", Build)
	}
	// ldflags value is kept
	if GitCommit != "abc1234" {
		t.Errorf("GitCommit = %q, want abc1234", GitCommit)
	}
	if !strings.Contains(GetFullVersion(), "1.4.0") {
		t.Errorf("GetFullVersion = %q", GetFullVersion())
	}
}
