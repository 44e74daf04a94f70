//go:build vosk

package recognition

import (
	"errors"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/foxseedlab/kikitori/internal/recognition"
)

type VoskEngine struct {
	mu         sync.Mutex
	model      *vosk.VoskModel
	sampleRate int
}

func NewVoskEngine(modelPath string, sampleRate int) (recognition.Engine, error) {
	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load vosk model %s: %w", modelPath, err)
	}
	return &VoskEngine{model: model, sampleRate: sampleRate}, nil
}

func (e *VoskEngine) Name() string {
	return "vosk"
}

func (e *VoskEngine) Format() audio.Format {
	return audio.Format{SampleRate: e.sampleRate, BitDepth: 16, Channels: 1}
}

func (e *VoskEngine) NewRecognizer() (recognition.Recognizer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil, errors.New("vosk model is closed")
	}
	rec, err := vosk.NewRecognizer(e.model, float64(e.sampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create vosk recognizer: %w", err)
	}
	rec.SetMaxAlternatives(0)
	rec.SetWords(1)
	return &voskRecognizer{rec: rec}, nil
}

func (e *VoskEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		e.model.Free()
		e.model = nil
	}
	return nil
}

type voskRecognizer struct {
	rec *vosk.VoskRecognizer
}

func (r *voskRecognizer) AcceptWaveform(pcm []byte) (bool, error) {
	rc := r.rec.AcceptWaveform(pcm)
	if rc < 0 {
		return false, fmt.Errorf("vosk rejected %d bytes of audio", len(pcm))
	}
	return rc != 0, nil
}

func (r *voskRecognizer) Result() string {
	return r.rec.Result()
}

func (r *voskRecognizer) PartialResult() string {
	return r.rec.PartialResult()
}

func (r *voskRecognizer) FinalResult() string {
	return r.rec.FinalResult()
}

func (r *voskRecognizer) Close() error {
	if r.rec != nil {
		r.rec.Free()
		r.rec = nil
	}
	return nil
}
