package pipeline

import "sync"

type sequencedEntry struct {
	pair     FinalPair
	resolved bool
}

// sequencer releases finals in the order they were reserved, no matter in which
// order their translations complete. emit runs with the sequencer lock held and
// must not block.
type sequencer struct {
	mu       sync.Mutex
	next     int
	emitNext int
	entries  map[int]*sequencedEntry
	emit     func(FinalPair)
}

func newSequencer(emit func(FinalPair)) *sequencer {
	return &sequencer{
		entries: make(map[int]*sequencedEntry),
		emit:    emit,
	}
}

func (s *sequencer) reserve(pair FinalPair) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.next
	s.next++
	pair.Seq = seq
	s.entries[seq] = &sequencedEntry{pair: pair}
	return seq
}

// complete resolves a reserved entry. It returns false when the entry was
// already resolved, which happens to translations that finish after a drain timeout.
func (s *sequencer) complete(seq int, translated string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[seq]
	if !ok || e.resolved {
		return false
	}
	e.pair.Translated = translated
	e.pair.TranslationErr = err
	e.resolved = true
	s.flushLocked()
	return true
}

// failOutstanding resolves every unresolved entry with err and returns how many it touched.
func (s *sequencer) failOutstanding(err error) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for seq := s.emitNext; seq < s.next; seq++ {
		e, ok := s.entries[seq]
		if !ok || e.resolved {
			continue
		}
		e.pair.TranslationErr = err
		e.resolved = true
		n++
	}
	s.flushLocked()
	return n
}

func (s *sequencer) outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next - s.emitNext
}

func (s *sequencer) flushLocked() {
	for {
		e, ok := s.entries[s.emitNext]
		if !ok || !e.resolved {
			return
		}
		delete(s.entries, s.emitNext)
		s.emitNext++
		s.emit(e.pair)
	}
}
