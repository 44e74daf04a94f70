package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:                       "development",
		ModelPath:                 "model",
		AudioDeviceIndex:          -1,
		AudioSampleRate:           16000,
		AudioBitDepth:             16,
		AudioChannels:             1,
		AudioFramesPerBuffer:      4096,
		FrameQueueSize:            64,
		SourceLanguage:            "pt-BR",
		TargetLanguage:            "en",
		LibreTranslateURL:         "http://localhost:5000",
		TranslationTimeout:        10 * time.Second,
		MaxConcurrentTranslations: 4,
		DrainTimeout:              5 * time.Second,
		TranscriptTimezone:        "UTC",
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when required fields are missing")
	}
}

func TestValidate_NonPositiveQueue(t *testing.T) {
	cfg := validConfig()
	cfg.FrameQueueSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive frame queue size")
	}
}

func TestValidate_NegativePartialLength(t *testing.T) {
	cfg := validConfig()
	cfg.PartialMinLength = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative partial min length")
	}
}

func TestValidate_NonPositiveDrainTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.DrainTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero drain timeout")
	}
}

func TestValidate_InvalidLanguage(t *testing.T) {
	cfg := validConfig()
	cfg.TargetLanguage = "not a language"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid target language")
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.TranscriptTimezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestValidateLanguageCode(t *testing.T) {
	for _, code := range []string{"en", "pt-BR", "es", "zh-Hans"} {
		if err := ValidateLanguageCode(code); err != nil {
			t.Fatalf("expected %s to be valid, got %v", code, err)
		}
	}
	for _, code := range []string{"", "english please", "en!"} {
		if err := ValidateLanguageCode(code); err == nil {
			t.Fatalf("expected %q to be rejected", code)
		}
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Fatal("expected non-development mode")
	}
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{TranscriptTimezone: "Mars/Olympus"}
	if cfg.Location() != time.UTC {
		t.Fatal("expected UTC fallback")
	}
}
