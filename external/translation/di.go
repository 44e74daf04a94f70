package translation

import (
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/translation"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (translation.Translator, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewLibreTranslateClient(c.LibreTranslateURL, c.LibreTranslateAPIKey), nil
	})
}
