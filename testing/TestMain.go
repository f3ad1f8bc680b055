// Package testing flips the process into test mode before any package
// reads its configuration. Test binaries import it for the side effect.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("CADASTRO_TEST_MODE", "1")
		for key, value := range map[string]string{
			"API_URL":      "http://127.0.0.1:0",
			"CEP_BASE_URL": "http://127.0.0.1:0",
		} {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain runs m in test mode.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
