package cmd

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRebuilderDebounces(t *testing.T) {
	var runs atomic.Int32
	b := &rebuilder{ctx: context.Background(), run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}

	for i := 0; i < 5; i++ {
		b.schedule()
	}
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	time.Sleep(2 * debounceDuration)
	assert.Equal(t, int32(1), runs.Load())
}

func TestRebuilderStopCancelsPending(t *testing.T) {
	var runs atomic.Int32
	b := &rebuilder{ctx: context.Background(), run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}

	b.schedule()
	b.stop()
	time.Sleep(2 * debounceDuration)
	assert.Zero(t, runs.Load())
}
