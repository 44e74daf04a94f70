//go:build !portaudio

package audio

import (
	"errors"
	"testing"

	"github.com/foxseedlab/kikitori/internal/audio"
)

func TestUnavailableOpener_ReturnsDeviceError(t *testing.T) {
	opener := NewPortAudioOpener()

	_, err := opener.OpenCaptureDevice(audio.DeviceConfig{DeviceIndex: -1})
	var devErr *audio.DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if !errors.Is(err, errCaptureUnavailable) {
		t.Fatalf("expected wrapped unavailable error, got %v", err)
	}
	if _, err := opener.ListInputDevices(); !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError from ListInputDevices, got %v", err)
	}
}
