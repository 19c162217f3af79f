// Package common provides shared test infrastructure
package common

import (
	"os"
	"testing"
)

// RequireDocker skips t unless container-backed tests are enabled.
func RequireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("MARKETPLAY_TEST_DOCKER") != "true" {
		t.Skip("Docker tests disabled (set MARKETPLAY_TEST_DOCKER=true to enable)")
	}
}
