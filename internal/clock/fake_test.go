package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestFake_NowOnlyMovesOnAdvance(t *testing.T) {
	c := Fake(epoch)
	assert.Equal(t, epoch, c.Now())

	c.Advance(3 * time.Second)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
}

func TestFake_AfterFuncFiresAtDeadline(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(500*time.Millisecond, func() { fired++ })

	c.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, c.PendingCount())

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, c.PendingCount())

	c.Advance(time.Second)
	assert.Equal(t, 1, fired, "one-shot callback must not fire twice")
}

func TestFake_StopCancelsPendingCall(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	c.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestFake_FiresInDeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	c.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	c.AfterFunc(2*time.Second, func() { order = append(order, "b") })

	c.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestFake_NonPositiveDelayRunsImmediately(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(0, func() { fired = true })

	assert.True(t, fired)
	assert.False(t, timer.Stop())
}

func TestFake_CallbackMayScheduleAnother(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(time.Second, func() {
		fired++
		c.AfterFunc(time.Second, func() { fired++ })
	})

	c.Advance(time.Second)
	assert.Equal(t, 1, fired)
	c.Advance(time.Second)
	assert.Equal(t, 2, fired)
}

func TestReal_AfterFuncStop(t *testing.T) {
	timer := Real().AfterFunc(time.Hour, func() {})
	assert.True(t, timer.Stop())
	assert.WithinDuration(t, time.Now(), Real().Now(), time.Second)
}
