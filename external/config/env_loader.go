package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/kikitori/internal/config"
)

type envConfig struct {
	Env                       string        `env:"ENV" envDefault:"production"`
	ModelPath                 string        `env:"MODEL_PATH" envDefault:"model"`
	AudioDeviceIndex          int           `env:"AUDIO_DEVICE_INDEX" envDefault:"-1"`
	AudioSampleRate           int           `env:"AUDIO_SAMPLE_RATE" envDefault:"16000"`
	AudioBitDepth             int           `env:"AUDIO_BIT_DEPTH" envDefault:"16"`
	AudioChannels             int           `env:"AUDIO_CHANNELS" envDefault:"1"`
	AudioFramesPerBuffer      int           `env:"AUDIO_FRAMES_PER_BUFFER" envDefault:"4096"`
	FrameQueueSize            int           `env:"FRAME_QUEUE_SIZE" envDefault:"64"`
	SourceLanguage            string        `env:"SOURCE_LANGUAGE" envDefault:"pt-BR"`
	TargetLanguage            string        `env:"TARGET_LANGUAGE" envDefault:"en"`
	TranslationEnabled        bool          `env:"TRANSLATION_ENABLED" envDefault:"false"`
	LibreTranslateURL         string        `env:"LIBRETRANSLATE_URL" envDefault:"http://localhost:5000"`
	LibreTranslateAPIKey      string        `env:"LIBRETRANSLATE_API_KEY"`
	TranslationTimeout        time.Duration `env:"TRANSLATION_TIMEOUT" envDefault:"10s"`
	MaxConcurrentTranslations int           `env:"MAX_CONCURRENT_TRANSLATIONS" envDefault:"4"`
	DrainTimeout              time.Duration `env:"DRAIN_TIMEOUT" envDefault:"5s"`
	PartialMinLength          int           `env:"PARTIAL_MIN_LENGTH" envDefault:"0"`
	DatabaseURL               string        `env:"DATABASE_URL"`
	TranscriptWebhookURL      string        `env:"TRANSCRIPT_WEBHOOK_URL"`
	TranscriptTimezone        string        `env:"TRANSCRIPT_TIMEZONE" envDefault:"UTC"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                       raw.Env,
		ModelPath:                 raw.ModelPath,
		AudioDeviceIndex:          raw.AudioDeviceIndex,
		AudioSampleRate:           raw.AudioSampleRate,
		AudioBitDepth:             raw.AudioBitDepth,
		AudioChannels:             raw.AudioChannels,
		AudioFramesPerBuffer:      raw.AudioFramesPerBuffer,
		FrameQueueSize:            raw.FrameQueueSize,
		SourceLanguage:            raw.SourceLanguage,
		TargetLanguage:            raw.TargetLanguage,
		TranslationEnabled:        raw.TranslationEnabled,
		LibreTranslateURL:         raw.LibreTranslateURL,
		LibreTranslateAPIKey:      raw.LibreTranslateAPIKey,
		TranslationTimeout:        raw.TranslationTimeout,
		MaxConcurrentTranslations: raw.MaxConcurrentTranslations,
		DrainTimeout:              raw.DrainTimeout,
		PartialMinLength:          raw.PartialMinLength,
		DatabaseURL:               raw.DatabaseURL,
		TranscriptWebhookURL:      raw.TranscriptWebhookURL,
		TranscriptTimezone:        raw.TranscriptTimezone,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
