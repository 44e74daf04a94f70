package pipeline

import "sync"

// pairQueue hands pairs to handle on its own goroutine, in push order. push
// never blocks, so it is safe to call with the sequencer lock held.
type pairQueue struct {
	mu      sync.Mutex
	pending []FinalPair

	handle    func(FinalPair)
	wake      chan struct{}
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newPairQueue(handle func(FinalPair)) *pairQueue {
	q := &pairQueue{
		handle:  handle,
		wake:    make(chan struct{}, 1),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *pairQueue) push(pair FinalPair) {
	q.mu.Lock()
	q.pending = append(q.pending, pair)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// close waits until every pushed pair has been handled. Nothing may be pushed
// after close is called.
func (q *pairQueue) close() {
	q.closeOnce.Do(func() {
		close(q.closing)
	})
	<-q.done
}

func (q *pairQueue) loop() {
	defer close(q.done)
	for {
		select {
		case <-q.wake:
			q.drain()
		case <-q.closing:
			q.drain()
			return
		}
	}
}

func (q *pairQueue) drain() {
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, pair := range batch {
			q.handle(pair)
		}
	}
}
