package config

import (
	"os"
	"testing"
)

// unsetForTest removes variables for the duration of the test. t.Setenv must
// have been called for each key first so the previous values are restored.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}
