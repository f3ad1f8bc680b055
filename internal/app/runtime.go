package app

import (
	"os"
	"sync"
	"sync/atomic"
)

// TestModeEnv switches off side effects that tests must not trigger, such as
// reading a developer's .env file.
const TestModeEnv = "CADASTRO_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeOnce sync.Once
)

func readTestMode() {
	testMode.Store(os.Getenv(TestModeEnv) == "1")
}

// InTestMode reports whether CADASTRO_TEST_MODE=1 was set at first use.
func InTestMode() bool {
	testModeOnce.Do(readTestMode)
	return testMode.Load()
}
