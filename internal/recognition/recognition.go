package recognition

import (
	"fmt"
	"strings"

	"github.com/foxseedlab/kikitori/internal/audio"
)

// Recognizer holds per-stream decoder state. It is not safe for concurrent use;
// one goroutine feeds it for the lifetime of a session.
type Recognizer interface {
	// AcceptWaveform reports true when a final result is ready to be read with Result.
	AcceptWaveform(pcm []byte) (bool, error)
	Result() string
	PartialResult() string
	// FinalResult flushes buffered audio into a last result.
	FinalResult() string
	Close() error
}

type Engine interface {
	Name() string
	// Format is the only PCM layout the engine accepts; it does not resample.
	Format() audio.Format
	NewRecognizer() (Recognizer, error)
	Close() error
}

type ModelResolver interface {
	ResolveModelPath() (string, error)
}

type NotFoundError struct {
	Name       string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("model %q not found (checked: %s)", e.Name, strings.Join(e.Candidates, ", "))
}
