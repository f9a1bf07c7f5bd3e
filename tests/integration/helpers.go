package integration

import (
	"fmt"
	"os"
	"testing"
	"time"
)

// apiBaseURL returns the target instance, skipping the test when none is
// configured. The suite needs a running API plus its backing services.
func apiBaseURL(t *testing.T) string {
	t.Helper()

	baseURL := os.Getenv("KASSA_API_URL")
	if baseURL == "" {
		t.Skip("KASSA_API_URL not set, skipping integration test")
	}
	return baseURL
}

// uniqueEmail generates an address that will not collide across runs
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// LogTestStep logs a test step
func LogTestStep(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	t.Logf("STEP: "+format, args...)
}

// LogTestResult logs a test result
func LogTestResult(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	t.Logf("RESULT: "+format, args...)
}
