package app

import (
	"os"
	"strconv"
)

// TestModeEnv, when true, makes the binaries return before dialing Redis,
// Postgres or the salon API. Test packages set it through sakura/testing.
const TestModeEnv = "SAKURA_TEST_MODE"

// InTestMode reports whether TestModeEnv is set to a true value.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}
