//go:build !portaudio

package audio

import (
	"errors"

	"github.com/foxseedlab/kikitori/internal/audio"
)

var errCaptureUnavailable = errors.New("microphone capture requires building with -tags portaudio and libportaudio installed")

type unavailableOpener struct{}

func NewPortAudioOpener() audio.Opener {
	return &unavailableOpener{}
}

func (o *unavailableOpener) OpenCaptureDevice(_ audio.DeviceConfig) (audio.Device, error) {
	return nil, &audio.DeviceError{Op: "open", Err: errCaptureUnavailable}
}

func (o *unavailableOpener) ListInputDevices() ([]audio.DeviceInfo, error) {
	return nil, &audio.DeviceError{Op: "list", Err: errCaptureUnavailable}
}
