package recognition

import (
	"fmt"

	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/recognition"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (recognition.ModelResolver, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewDirModelResolver(cfg.ModelPath), nil
	})
	do.Provide(injector, func(i do.Injector) (recognition.Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		resolver := do.MustInvoke[recognition.ModelResolver](i)
		path, err := resolver.ResolveModelPath()
		if err != nil {
			return nil, err
		}
		engine, err := NewVoskEngine(path, cfg.AudioSampleRate)
		if err != nil {
			return nil, fmt.Errorf("failed to start recognition engine: %w", err)
		}
		return engine, nil
	})
}
