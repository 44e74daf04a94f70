//go:build !vosk

package recognition

import (
	"errors"

	"github.com/foxseedlab/kikitori/internal/recognition"
)

var errVoskUnavailable = errors.New("speech recognition requires building with -tags vosk and libvosk installed")

func NewVoskEngine(_ string, _ int) (recognition.Engine, error) {
	return nil, errVoskUnavailable
}
