package serialdev

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitRetryReturnsOnHotplugMatch(t *testing.T) {
	hotplug := make(chan string, 1)
	hotplug <- "/dev/ttyACM0"

	cfg := Config{Path: "/dev/ttyACM0", Hotplug: hotplug}

	start := time.Now()
	ok := waitRetry(context.Background(), cfg)
	assert.True(t, ok)
	assert.Less(t, time.Since(start), backoff)
}

func TestWaitRetryIgnoresNonMatchingHotplug(t *testing.T) {
	hotplug := make(chan string, 1)
	hotplug <- "/dev/ttyUSB9"
	close(hotplug)

	cfg := Config{Path: "/dev/ttyACM0", Hotplug: hotplug}

	ok := waitRetry(context.Background(), cfg)
	assert.True(t, ok) // falls through to the backoff timer once the channel closes
}

func TestWaitRetryReturnsFalseOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := waitRetry(ctx, Config{Path: "/dev/ttyACM0"})
	assert.False(t, ok)
}
