package audio

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestStallWatchdog_FiresWhenCallbacksStop(t *testing.T) {
	w := newStallWatchdog(40 * time.Millisecond)
	fired := make(chan struct{})
	w.start(func() { close(fired) })
	defer w.close()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expected watchdog to report a stalled device")
	}
}

func TestStallWatchdog_QuietWhileTouched(t *testing.T) {
	w := newStallWatchdog(80 * time.Millisecond)
	var fired atomic.Bool
	w.start(func() { fired.Store(true) })

	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		w.touch()
		time.Sleep(10 * time.Millisecond)
	}
	w.close()

	if fired.Load() {
		t.Fatal("watchdog fired while frames were arriving")
	}
}

func TestStallWatchdog_CloseIsIdempotent(t *testing.T) {
	w := newStallWatchdog(time.Minute)
	w.start(func() {})
	w.close()
	w.close()
}
