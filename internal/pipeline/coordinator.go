package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/recognition"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/foxseedlab/kikitori/internal/translation"
	"github.com/foxseedlab/kikitori/internal/webhook"
	"golang.org/x/sync/semaphore"
)

const archiveTimeout = 5 * time.Second

type Coordinator struct {
	engine     recognition.Engine
	opener     audio.Opener
	translator translation.Translator
	repo       repository.Repository
	webhook    webhook.Sender
	timezone   string
	loc        *time.Location
	now        func() time.Time
}

func NewCoordinator(engine recognition.Engine, opener audio.Opener, translator translation.Translator, repo repository.Repository, wh webhook.Sender, timezone string) *Coordinator {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
		timezone = "UTC"
	}
	return &Coordinator{
		engine:     engine,
		opener:     opener,
		translator: translator,
		repo:       repo,
		webhook:    wh,
		timezone:   timezone,
		loc:        loc,
		now:        time.Now,
	}
}

// Start opens the recognizer and the capture device and begins streaming. The
// returned session runs until Stop is called or the device fails.
func (c *Coordinator) Start(ctx context.Context, cfg Config, sink Sink) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := c.validate(cfg); err != nil {
		return nil, err
	}

	rec, err := c.engine.NewRecognizer()
	if err != nil {
		return nil, &ConfigurationError{Reason: "create recognizer", Err: err}
	}
	device, err := c.opener.OpenCaptureDevice(cfg.Device)
	if err != nil {
		_ = rec.Close()
		return nil, &ConfigurationError{Reason: "open capture device", Err: err}
	}
	info := device.Info()

	startedAt := c.now()
	sessionID := c.createArchiveSession(ctx, cfg, info, startedAt)
	translateCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:                 sessionID,
		cfg:                cfg,
		coord:              c,
		device:             device,
		deviceName:         info.Name,
		recognizer:         rec,
		sink:               sink,
		startedAt:          startedAt,
		frames:             make(chan audio.Frame, cfg.FrameQueueSize),
		translateCtx:       translateCtx,
		cancelTranslations: cancel,
		translationSem:     semaphore.NewWeighted(int64(cfg.MaxConcurrentTranslations)),
		recognitionDone:    make(chan struct{}),
		done:               make(chan struct{}),
	}
	s.archive = newPairQueue(s.archiveFinal)
	s.deliveries = newPairQueue(s.deliverFinal)
	s.seq = newSequencer(s.deliveries.push)

	go s.run()
	if err := device.Start(s); err != nil {
		var devErr *audio.DeviceError
		if !errors.As(err, &devErr) {
			devErr = &audio.DeviceError{Op: "start", Err: err}
		}
		s.stateMu.Lock()
		s.err = devErr
		s.stateMu.Unlock()
		_ = s.Stop(ctx)
		return nil, &ConfigurationError{Reason: "start capture device", Err: err}
	}

	slog.Info("pipeline session started",
		"session_id", s.id,
		"engine", c.engine.Name(),
		"device", info.Name,
		"format", cfg.Device.Format.String(),
		"translation", cfg.Translation != nil)
	return s, nil
}

func (c *Coordinator) validate(cfg Config) error {
	required := c.engine.Format()
	if cfg.Device.Format != required {
		return &ConfigurationError{
			Reason: fmt.Sprintf("%s engine requires %s audio, got %s", c.engine.Name(), required, cfg.Device.Format),
		}
	}
	if cfg.Translation == nil {
		return nil
	}
	if c.translator == nil {
		return &ConfigurationError{Reason: "translation requested but no translator is configured"}
	}
	if err := config.ValidateLanguageCode(cfg.Translation.Source); err != nil {
		return &ConfigurationError{Reason: "source language", Err: err}
	}
	if err := config.ValidateLanguageCode(cfg.Translation.Target); err != nil {
		return &ConfigurationError{Reason: "target language", Err: err}
	}
	return nil
}

func (c *Coordinator) createArchiveSession(ctx context.Context, cfg Config, info audio.DeviceInfo, startedAt time.Time) string {
	input := repository.CreateSessionInput{
		DeviceName: info.Name,
		StartedAt:  startedAt,
	}
	if cfg.Translation != nil {
		input.SourceLang = cfg.Translation.Source
		input.TargetLang = cfg.Translation.Target
	}
	if c.repo == nil {
		return fmt.Sprintf("local-%d", startedAt.UnixNano())
	}
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()
	created, err := c.repo.CreateSession(ctx, input)
	if err != nil || created == nil {
		id := fmt.Sprintf("local-%d", startedAt.UnixNano())
		slog.Warn("failed to create archive session; continuing without archive id", "error", err, "session_id", id)
		return id
	}
	return created.ID
}

func (c *Coordinator) archiveSegment(sessionID string, pair FinalPair) {
	if c.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := c.repo.InsertSegment(ctx, repository.InsertSegmentInput{
		SessionID:         sessionID,
		SegmentIndex:      pair.Seq,
		Original:          pair.Original,
		Translated:        pair.Translated,
		TranslationFailed: pair.TranslationFailed(),
		SpokenAt:          pair.SpokenAt,
	}); err != nil {
		slog.Error("failed to insert segment", "error", err, "session_id", sessionID, "seq", pair.Seq)
	}
}

func (c *Coordinator) finalizeSession(s *Session, endedAt time.Time, status repository.SessionStatus) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if c.repo != nil {
		if err := c.repo.UpdateSessionCompleted(ctx, repository.CompleteSessionInput{
			SessionID: s.id,
			EndedAt:   endedAt,
			Status:    status,
		}); err != nil {
			slog.Error("failed to complete session", "error", err, "session_id", s.id)
		}
	}

	pairs := s.Pairs()
	if len(pairs) == 0 || c.webhook == nil {
		return
	}
	payload := buildTranscriptWebhookPayload(s.id, s.deviceName, s.cfg.Translation, s.startedAt, endedAt, c.timezone, c.loc, pairs)
	if err := c.webhook.SendTranscript(ctx, payload); err != nil {
		slog.Error("failed to send webhook transcript", "error", err, "session_id", s.id)
	}
}
