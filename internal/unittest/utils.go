package unittest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// DefaultReadyDoneTimeout bounds how long RequireReady and RequireDone wait.
const DefaultReadyDoneTimeout = 10 * time.Second

// ReadyDoneAware is a long-running component, such as the page or the relayer, that signals
// startup and shutdown by closing channels.
type ReadyDoneAware interface {
	Ready() <-chan struct{}
	Done() <-chan struct{}
}

// RequireCallMustReturnWithinTimeout runs f and fails the test when it has not returned after timeout.
// f runs on its own goroutine, so it must not call require itself; capture results and assert afterwards.
func RequireCallMustReturnWithinTimeout(t *testing.T, f func(), timeout time.Duration, failureMsg string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	ChannelMustCloseWithinTimeout(t, done, timeout, fmt.Sprintf("call did not return in %s: %s", timeout, failureMsg))
}

// ChannelMustCloseWithinTimeout fails the test when c is still open after timeout.
func ChannelMustCloseWithinTimeout(t *testing.T, c <-chan struct{}, timeout time.Duration, failureMsg string) {
	t.Helper()
	select {
	case <-c:
	case <-time.After(timeout):
		require.Fail(t, failureMsg)
	}
}

// RequireReady fails the test when the component has not signalled Ready within DefaultReadyDoneTimeout.
func RequireReady(t *testing.T, component ReadyDoneAware) {
	t.Helper()
	ChannelMustCloseWithinTimeout(t, component.Ready(), DefaultReadyDoneTimeout, "component not ready")
}

// RequireDone fails the test when the component has not signalled Done within DefaultReadyDoneTimeout.
func RequireDone(t *testing.T, component ReadyDoneAware) {
	t.Helper()
	ChannelMustCloseWithinTimeout(t, component.Done(), DefaultReadyDoneTimeout, "component not done")
}
