package mailqueue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerTicksImmediatelyAndOnInterval(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler("test", 20*time.Millisecond, func(context.Context) {
		ticks.Add(1)
	}, discardLogger())

	assert.True(t, s.Start())
	assert.False(t, s.Start(), "second start is a no-op")
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)

	assert.True(t, s.Stop())
	assert.False(t, s.Stop(), "second stop is a no-op")
	assert.False(t, s.IsRunning())

	settled := ticks.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load(), "no ticks after stop")
}

func TestSchedulerSurvivesPanickingTick(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler("test", 10*time.Millisecond, func(context.Context) {
		if ticks.Add(1) == 1 {
			panic("boom")
		}
	}, discardLogger())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
