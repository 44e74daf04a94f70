package config

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

type Config struct {
	Env                       string
	ModelPath                 string
	AudioDeviceIndex          int
	AudioSampleRate           int
	AudioBitDepth             int
	AudioChannels             int
	AudioFramesPerBuffer      int
	FrameQueueSize            int
	SourceLanguage            string
	TargetLanguage            string
	TranslationEnabled        bool
	LibreTranslateURL         string
	LibreTranslateAPIKey      string
	TranslationTimeout        time.Duration
	MaxConcurrentTranslations int
	DrainTimeout              time.Duration
	PartialMinLength          int
	DatabaseURL               string
	TranscriptWebhookURL      string
	TranscriptTimezone        string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	for _, req := range c.positiveFieldChecks() {
		if req.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", req.name, req.value)
		}
	}
	if c.PartialMinLength < 0 {
		return fmt.Errorf("PARTIAL_MIN_LENGTH must not be negative, got %d", c.PartialMinLength)
	}
	if c.TranslationTimeout <= 0 {
		return fmt.Errorf("TRANSLATION_TIMEOUT must be positive, got %s", c.TranslationTimeout)
	}
	if c.DrainTimeout <= 0 {
		return fmt.Errorf("DRAIN_TIMEOUT must be positive, got %s", c.DrainTimeout)
	}
	if err := ValidateLanguageCode(c.SourceLanguage); err != nil {
		return fmt.Errorf("SOURCE_LANGUAGE is invalid: %w", err)
	}
	if err := ValidateLanguageCode(c.TargetLanguage); err != nil {
		return fmt.Errorf("TARGET_LANGUAGE is invalid: %w", err)
	}
	if _, err := time.LoadLocation(c.TranscriptTimezone); err != nil {
		return fmt.Errorf("TRANSCRIPT_TIMEZONE is invalid: %w", err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "MODEL_PATH", value: c.ModelPath},
		{name: "SOURCE_LANGUAGE", value: c.SourceLanguage},
		{name: "TARGET_LANGUAGE", value: c.TargetLanguage},
		{name: "LIBRETRANSLATE_URL", value: c.LibreTranslateURL},
		{name: "TRANSCRIPT_TIMEZONE", value: c.TranscriptTimezone},
	}
}

type positiveEnvField struct {
	name  string
	value int
}

func (c *Config) positiveFieldChecks() []positiveEnvField {
	return []positiveEnvField{
		{name: "AUDIO_SAMPLE_RATE", value: c.AudioSampleRate},
		{name: "AUDIO_BIT_DEPTH", value: c.AudioBitDepth},
		{name: "AUDIO_CHANNELS", value: c.AudioChannels},
		{name: "AUDIO_FRAMES_PER_BUFFER", value: c.AudioFramesPerBuffer},
		{name: "FRAME_QUEUE_SIZE", value: c.FrameQueueSize},
		{name: "MAX_CONCURRENT_TRANSLATIONS", value: c.MaxConcurrentTranslations},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TranscriptTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ValidateLanguageCode accepts BCP 47 tags such as "en", "pt-BR" or "zh-Hans".
func ValidateLanguageCode(code string) error {
	if code == "" {
		return fmt.Errorf("language code is empty")
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("%q is not a valid language tag: %w", code, err)
	}
	return nil
}
