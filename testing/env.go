// Package testing is imported for its side effect by test packages: the
// binaries see test mode and the required secrets have throwaway values.
package testing

import "os"

var testEnv = map[string]string{
	"SAKURA_TEST_MODE": "true",
	"SESSION_SECRET":   "test-session-secret",
	"CSRF_SECRET":      "test-csrf-secret",
}

func init() {
	for key, value := range testEnv {
		if _, set := os.LookupEnv(key); !set || key == "SAKURA_TEST_MODE" {
			_ = os.Setenv(key, value)
		}
	}
}
