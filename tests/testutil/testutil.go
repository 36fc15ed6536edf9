package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var seedNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a stable UUID from seed, so fixtures can refer to the
// same account or payment across tests.
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(seedNamespace, []byte(seed))
}

// WaitForCondition polls condition every interval and reports whether it
// became true before timeout.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !WaitForCondition(t, condition, timeout, interval) {
		t.Errorf("condition not met within %v: %v", timeout, msgAndArgs)
	}
}

func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	if !WaitForCondition(t, condition, timeout, interval) {
		require.Fail(t, "condition not met within timeout", msgAndArgs...)
	}
}

// AssertNever fails the test if condition becomes true at any poll within duration.
func AssertNever(t *testing.T, condition func() bool, duration, interval time.Duration, msgAndArgs ...any) {
	t.Helper()
	for deadline := time.Now().Add(duration); time.Now().Before(deadline); time.Sleep(interval) {
		if condition() {
			t.Fatalf("condition unexpectedly became true: %v", msgAndArgs)
		}
	}
}
