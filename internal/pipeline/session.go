package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/recognition"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/foxseedlab/kikitori/internal/translation"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/semaphore"
)

type Session struct {
	id         string
	cfg        Config
	coord      *Coordinator
	device     audio.Device
	deviceName string
	recognizer recognition.Recognizer
	sink       Sink
	startedAt  time.Time

	frameMu      sync.RWMutex
	framesClosed bool
	frames       chan audio.Frame

	translateCtx       context.Context
	cancelTranslations context.CancelFunc
	translationSem     *semaphore.Weighted
	inflight           sync.WaitGroup

	seq        *sequencer
	deliveries *pairQueue
	archive    *pairQueue

	sinkMu sync.Mutex

	stateMu sync.Mutex
	partial string
	pairs   []FinalPair
	err     error

	acceptedFrames atomic.Int64
	droppedFrames  atomic.Int64

	recognitionDone chan struct{}
	stopOnce        sync.Once
	stopErr         error
	done            chan struct{}
}

func (s *Session) ID() string {
	return s.id
}

// Done is closed once the session has been torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the device failure that aborted the session, if any.
func (s *Session) Err() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.err
}

func (s *Session) DeviceName() string {
	return s.deviceName
}

func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

func (s *Session) Partial() string {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.partial
}

func (s *Session) Pairs() []FinalPair {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	out := make([]FinalPair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// OnFrame is called from the capture callback. It blocks while the frame queue
// is full so that no audio is lost; frames arriving after Stop are discarded.
func (s *Session) OnFrame(frame audio.Frame) {
	s.frameMu.RLock()
	defer s.frameMu.RUnlock()
	if s.framesClosed {
		if n := s.droppedFrames.Add(1); n == 1 {
			slog.Debug("discarding frame delivered after stop", "session_id", s.id)
		}
		return
	}
	s.frames <- frame
}

func (s *Session) OnError(err error) {
	var devErr *audio.DeviceError
	if !errors.As(err, &devErr) {
		devErr = &audio.DeviceError{Op: "capture", Err: err}
	}
	s.stateMu.Lock()
	if s.err == nil {
		s.err = devErr
	}
	s.stateMu.Unlock()
	slog.Error("capture device failed; aborting session", "error", devErr, "session_id", s.id)
	s.sinkMu.Lock()
	s.sink.OnError(devErr)
	s.sinkMu.Unlock()
	// The capture callback goroutine must not wait for its own device to stop.
	go func() {
		_ = s.Stop(context.Background())
	}()
}

func (s *Session) run() {
	defer close(s.recognitionDone)
	for frame := range s.frames {
		s.acceptedFrames.Add(1)
		final, err := s.recognizer.AcceptWaveform(frame.Data)
		if err != nil {
			s.reportError(fmt.Errorf("recognizer rejected frame: %w", err))
			continue
		}
		if final {
			s.handleFinal(s.recognizer.Result())
			continue
		}
		s.handlePartial(s.recognizer.PartialResult())
	}
	s.handleFinal(s.recognizer.FinalResult())
}

func (s *Session) handlePartial(raw string) {
	ev, err := recognition.Parse(raw)
	if err != nil {
		s.reportError(&MalformedResultError{Err: err})
		return
	}
	if ev.Kind != recognition.EventPartial {
		return
	}
	s.stateMu.Lock()
	if ev.Text == s.partial {
		s.stateMu.Unlock()
		return
	}
	s.partial = ev.Text
	s.stateMu.Unlock()
	if utf8.RuneCountInString(ev.Text) < s.cfg.PartialMinLength {
		return
	}
	s.sinkMu.Lock()
	s.sink.OnPartial(ev.Text)
	s.sinkMu.Unlock()
}

func (s *Session) handleFinal(raw string) {
	ev, err := recognition.ParseFinal(raw)
	if err != nil {
		s.reportError(&MalformedResultError{Err: err})
		return
	}
	s.stateMu.Lock()
	s.partial = ""
	s.stateMu.Unlock()
	if ev.Kind != recognition.EventFinal {
		slog.Debug("final result without speech suppressed", "session_id", s.id)
		return
	}

	pair := FinalPair{Original: ev.Text, SpokenAt: s.coord.now()}
	seq := s.seq.reserve(pair)
	if s.cfg.Translation == nil {
		s.seq.complete(seq, "", nil)
		return
	}
	s.inflight.Add(1)
	go s.translate(seq, ev.Text)
}

func (s *Session) translate(seq int, text string) {
	defer s.inflight.Done()
	if err := s.translationSem.Acquire(s.translateCtx, 1); err != nil {
		s.seq.complete(seq, "", err)
		return
	}
	defer s.translationSem.Release(1)

	ctx, cancel := context.WithTimeout(s.translateCtx, s.cfg.TranslationTimeout)
	defer cancel()
	translated, err := s.coord.translator.Translate(ctx, translation.Request{
		Text:       text,
		SourceLang: s.cfg.Translation.Source,
		TargetLang: s.cfg.Translation.Target,
	})
	if err != nil {
		slog.Warn("translation failed; emitting original text", "error", err, "session_id", s.id, "seq", seq)
	}
	if !s.seq.complete(seq, translated, err) {
		slog.Debug("translation finished after drain timeout; result discarded", "session_id", s.id, "seq", seq)
	}
}

// deliverFinal runs on the delivery goroutine, in sequence order. Archive
// writes go to a separate queue so slow storage never holds back the sink.
func (s *Session) deliverFinal(pair FinalPair) {
	s.stateMu.Lock()
	s.pairs = append(s.pairs, pair)
	s.stateMu.Unlock()

	s.sinkMu.Lock()
	s.sink.OnFinal(pair)
	s.sinkMu.Unlock()

	s.archive.push(pair)
}

func (s *Session) archiveFinal(pair FinalPair) {
	s.coord.archiveSegment(s.id, pair)
}

func (s *Session) reportError(err error) {
	slog.Warn("recoverable pipeline error", "error", err, "session_id", s.id)
	s.sinkMu.Lock()
	s.sink.OnError(err)
	s.sinkMu.Unlock()
}

// Stop ends capture, flushes the recognizer and waits up to the drain timeout
// for outstanding translations. Every recognized final has been emitted when it
// returns. Safe to call more than once and from any goroutine.
func (s *Session) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		s.stopErr = s.shutdown(ctx)
		close(s.done)
	})
	return s.stopErr
}

func (s *Session) shutdown(ctx context.Context) error {
	var result *multierror.Error
	if err := s.device.Stop(); err != nil {
		result = multierror.Append(result, fmt.Errorf("stop capture device: %w", err))
	}

	s.frameMu.Lock()
	s.framesClosed = true
	close(s.frames)
	s.frameMu.Unlock()

	<-s.recognitionDone
	s.drainTranslations(ctx)
	s.deliveries.close()
	s.archive.close()

	if err := s.recognizer.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close recognizer: %w", err))
	}
	if err := s.device.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close capture device: %w", err))
	}

	status := repository.SessionStatusCompleted
	if s.Err() != nil {
		status = repository.SessionStatusFailed
	}
	s.coord.finalizeSession(s, s.coord.now(), status)

	slog.Info("pipeline session stopped",
		"session_id", s.id,
		"accepted_frames", s.acceptedFrames.Load(),
		"dropped_frames", s.droppedFrames.Load(),
		"finals", len(s.Pairs()))
	return result.ErrorOrNil()
}

func (s *Session) drainTranslations(ctx context.Context) {
	defer s.cancelTranslations()
	finished := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(finished)
	}()

	timer := time.NewTimer(s.cfg.DrainTimeout)
	defer timer.Stop()
	var cause error
	select {
	case <-finished:
		return
	case <-timer.C:
		cause = ErrDrainTimeout
	case <-ctx.Done():
		cause = ctx.Err()
	}
	// Resolve before cancelling so cancelled requests cannot claim their entries.
	if n := s.seq.failOutstanding(cause); n > 0 {
		slog.Warn("outstanding translations marked failed", "error", cause, "session_id", s.id, "count", n)
	}
	s.cancelTranslations()

	grace := time.NewTimer(translationCancelGrace)
	defer grace.Stop()
	select {
	case <-finished:
	case <-grace.C:
		slog.Error("translation tasks ignored cancellation", "session_id", s.id, "grace", translationCancelGrace)
	}
}
