// Package guard switches binaries into test mode when imported by a test, so
// calling main() never dials Postgres or Redis.
package guard

import (
	"os"
	"sync"
)

// TestModeEnv mirrors the variable read by app.InTestMode.
const TestModeEnv = "STOREPULSE_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(TestModeEnv) == "" {
			_ = os.Setenv(TestModeEnv, "1")
		}
	})
}
