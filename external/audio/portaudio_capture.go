//go:build portaudio

package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/kikitori/internal/audio"
	"github.com/gordonklaus/portaudio"
)

// captureStallTimeout is how long a started stream may go without a callback
// before the device is reported as failed.
const captureStallTimeout = 3 * time.Second

type PortAudioOpener struct{}

func NewPortAudioOpener() audio.Opener {
	return &PortAudioOpener{}
}

func (o *PortAudioOpener) ListInputDevices() ([]audio.DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &audio.DeviceError{Op: "initialize", Err: err}
	}
	defer func() {
		_ = portaudio.Terminate()
	}()

	all, err := portaudio.Devices()
	if err != nil {
		return nil, &audio.DeviceError{Op: "list", Err: err}
	}
	defaultName := ""
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}
	var list []audio.DeviceInfo
	for i, d := range all {
		if d.MaxInputChannels <= 0 {
			continue
		}
		list = append(list, toDeviceInfo(i, d, d.Name == defaultName))
	}
	return list, nil
}

func (o *PortAudioOpener) OpenCaptureDevice(cfg audio.DeviceConfig) (audio.Device, error) {
	if cfg.Format.BitDepth != 16 {
		return nil, &audio.DeviceError{Op: "open", Err: fmt.Errorf("unsupported bit depth %d", cfg.Format.BitDepth)}
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, &audio.DeviceError{Op: "initialize", Err: err}
	}
	dev, index, err := selectInputDevice(cfg.DeviceIndex)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, &audio.DeviceError{Op: "open", Err: err}
	}
	if dev.MaxInputChannels < cfg.Format.Channels {
		_ = portaudio.Terminate()
		return nil, &audio.DeviceError{Op: "open", Err: fmt.Errorf("%s supports %d input channels, need %d", dev.Name, dev.MaxInputChannels, cfg.Format.Channels)}
	}
	return &portAudioDevice{
		cfg:  cfg,
		dev:  dev,
		info: toDeviceInfo(index, dev, cfg.DeviceIndex < 0),
	}, nil
}

func selectInputDevice(index int) (*portaudio.DeviceInfo, int, error) {
	all, err := portaudio.Devices()
	if err != nil {
		return nil, 0, err
	}
	if index >= 0 {
		if index >= len(all) {
			return nil, 0, fmt.Errorf("device index %d out of range (%d devices)", index, len(all))
		}
		return all[index], index, nil
	}
	def, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, 0, err
	}
	for i, d := range all {
		if d.Name == def.Name {
			return def, i, nil
		}
	}
	return def, -1, nil
}

func toDeviceInfo(index int, d *portaudio.DeviceInfo, isDefault bool) audio.DeviceInfo {
	return audio.DeviceInfo{
		Index:             index,
		Name:              d.Name,
		MaxInputChannels:  d.MaxInputChannels,
		DefaultSampleRate: d.DefaultSampleRate,
		IsDefault:         isDefault,
	}
}

type portAudioDevice struct {
	mu      sync.Mutex
	cfg     audio.DeviceConfig
	dev     *portaudio.DeviceInfo
	info    audio.DeviceInfo
	stream  *portaudio.Stream
	watch   *stallWatchdog
	started bool
	closed  bool
}

func (d *portAudioDevice) Info() audio.DeviceInfo {
	return d.info
}

func (d *portAudioDevice) Start(sink audio.FrameSink) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return &audio.DeviceError{Op: "start", Err: errors.New("device is closed")}
	}
	if d.started {
		return nil
	}

	params := portaudio.LowLatencyParameters(d.dev, nil)
	params.Input.Channels = d.cfg.Format.Channels
	params.SampleRate = float64(d.cfg.Format.SampleRate)
	params.FramesPerBuffer = d.cfg.FramesPerBuffer
	format := d.cfg.Format
	watch := newStallWatchdog(captureStallTimeout)

	stream, err := portaudio.OpenStream(params, func(in []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		watch.touch()
		if flags&portaudio.InputOverflow != 0 {
			slog.Warn("capture input overflowed; samples were lost", "device", d.info.Name)
		}
		// in is reused by PortAudio after the callback returns.
		buf := make([]byte, len(in)*2)
		for i, v := range in {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
		}
		sink.OnFrame(audio.NewFrame(buf, format))
	})
	if err != nil {
		return &audio.DeviceError{Op: "open stream", Err: err}
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return &audio.DeviceError{Op: "start", Err: err}
	}
	watch.start(func() {
		sink.OnError(&audio.DeviceError{Op: "capture", Err: errCaptureStalled})
	})
	d.stream = stream
	d.watch = watch
	d.started = true
	return nil
}

func (d *portAudioDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started || d.stream == nil {
		return nil
	}
	d.started = false
	if d.watch != nil {
		d.watch.close()
		d.watch = nil
	}
	if err := d.stream.Stop(); err != nil {
		return &audio.DeviceError{Op: "stop", Err: err}
	}
	return nil
}

func (d *portAudioDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.watch != nil {
		d.watch.close()
		d.watch = nil
	}
	var closeErr error
	if d.stream != nil {
		if err := d.stream.Close(); err != nil {
			closeErr = &audio.DeviceError{Op: "close", Err: err}
		}
		d.stream = nil
	}
	if err := portaudio.Terminate(); err != nil && closeErr == nil {
		closeErr = &audio.DeviceError{Op: "terminate", Err: err}
	}
	return closeErr
}
