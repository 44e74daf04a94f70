package pipeline

import (
	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/recognition"
	"github.com/foxseedlab/kikitori/internal/repository"
	"github.com/foxseedlab/kikitori/internal/translation"
	"github.com/foxseedlab/kikitori/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Coordinator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		engine := do.MustInvoke[recognition.Engine](i)
		opener := do.MustInvoke[audio.Opener](i)
		tr := do.MustInvoke[translation.Translator](i)
		repo := do.MustInvoke[repository.Repository](i)
		wh := do.MustInvoke[webhook.Sender](i)
		return NewCoordinator(engine, opener, tr, repo, wh, cfg.TranscriptTimezone), nil
	})
}

// ConfigFromAppConfig builds a session config from the loaded application
// settings. Translation is enabled only when translate is true.
func ConfigFromAppConfig(cfg *config.Config, translate bool) Config {
	out := Config{
		Device: audio.DeviceConfig{
			DeviceIndex: cfg.AudioDeviceIndex,
			Format: audio.Format{
				SampleRate: cfg.AudioSampleRate,
				BitDepth:   cfg.AudioBitDepth,
				Channels:   cfg.AudioChannels,
			},
			FramesPerBuffer: cfg.AudioFramesPerBuffer,
		},
		TranslationTimeout:        cfg.TranslationTimeout,
		MaxConcurrentTranslations: cfg.MaxConcurrentTranslations,
		DrainTimeout:              cfg.DrainTimeout,
		FrameQueueSize:            cfg.FrameQueueSize,
		PartialMinLength:          cfg.PartialMinLength,
	}
	if translate {
		out.Translation = &LanguagePair{Source: cfg.SourceLanguage, Target: cfg.TargetLanguage}
	}
	return out
}
