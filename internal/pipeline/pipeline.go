package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/foxseedlab/kikitori/internal/audio"
)

const (
	defaultDrainTimeout              = 5 * time.Second
	defaultTranslationTimeout        = 10 * time.Second
	defaultFrameQueueSize            = 64
	defaultMaxConcurrentTranslations = 4

	// translationCancelGrace bounds how long Stop waits for cancelled
	// translations to return after the drain timeout.
	translationCancelGrace = time.Second
)

// TranslationFailedMarker stands in for the translated text when translation failed.
const TranslationFailedMarker = "[translation failed]"

var ErrDrainTimeout = errors.New("translation did not finish before the drain timeout")

type LanguagePair struct {
	Source string
	Target string
}

type Config struct {
	Device audio.DeviceConfig
	// Translation is nil when translation is disabled.
	Translation               *LanguagePair
	TranslationTimeout        time.Duration
	MaxConcurrentTranslations int
	DrainTimeout              time.Duration
	FrameQueueSize            int
	// PartialMinLength hides partials shorter than this many runes.
	PartialMinLength int
}

func (c Config) withDefaults() Config {
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = defaultDrainTimeout
	}
	if c.TranslationTimeout <= 0 {
		c.TranslationTimeout = defaultTranslationTimeout
	}
	if c.FrameQueueSize <= 0 {
		c.FrameQueueSize = defaultFrameQueueSize
	}
	if c.MaxConcurrentTranslations <= 0 {
		c.MaxConcurrentTranslations = defaultMaxConcurrentTranslations
	}
	return c
}

type FinalPair struct {
	Seq            int
	Original       string
	Translated     string
	TranslationErr error
	SpokenAt       time.Time
}

func (p FinalPair) TranslationFailed() bool {
	return p.TranslationErr != nil
}

// TranslatedText is the text to show next to Original: the translation, the
// failure marker, or "" when translation was not requested.
func (p FinalPair) TranslatedText() string {
	if p.TranslationErr != nil {
		return TranslationFailedMarker
	}
	return p.Translated
}

// Sink receives session output. Calls are serialized by the session.
type Sink interface {
	OnPartial(text string)
	OnFinal(pair FinalPair)
	OnError(err error)
}

type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid pipeline configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid pipeline configuration: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type MalformedResultError struct {
	Err error
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("recognition result skipped: %v", e.Err)
}

func (e *MalformedResultError) Unwrap() error {
	return e.Err
}
