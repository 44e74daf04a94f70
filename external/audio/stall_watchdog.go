package audio

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var errCaptureStalled = errors.New("capture device stopped delivering audio")

// stallWatchdog fires once when touch has not been called for longer than
// timeout. PortAudio callback streams keep no error state of their own, so an
// unplugged device shows up as callbacks that stop arriving.
type stallWatchdog struct {
	timeout  time.Duration
	interval time.Duration
	now      func() time.Time

	last     atomic.Int64
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newStallWatchdog(timeout time.Duration) *stallWatchdog {
	interval := timeout / 4
	if interval <= 0 {
		interval = timeout
	}
	return &stallWatchdog{
		timeout:  timeout,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *stallWatchdog) touch() {
	w.last.Store(w.now().UnixNano())
}

// start runs onStall on the watchdog goroutine at most once.
func (w *stallWatchdog) start(onStall func()) {
	w.touch()
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				idle := w.now().Sub(time.Unix(0, w.last.Load()))
				if idle > w.timeout {
					onStall()
					return
				}
			}
		}
	}()
}

func (w *stallWatchdog) close() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	<-w.done
}
