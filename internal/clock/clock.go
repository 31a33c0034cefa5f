// Package clock abstracts the few time operations the client schedules work
// with, so that debounced searches and relative timestamps can be driven
// deterministically in tests.
package clock

import "time"

// Clock is implemented by Real and *FakeClock.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer cancels the
	// pending call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the call from happening. It reports whether the call was
// still pending.
func (t *Timer) Stop() bool { return t.stopFunc() }

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stopFunc: t.Stop}
}
