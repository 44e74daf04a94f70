package audio

import "fmt"

type Format struct {
	SampleRate int
	BitDepth   int
	Channels   int
}

func (f Format) BytesPerFrame() int {
	return f.BitDepth / 8 * f.Channels
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dbit/%dch", f.SampleRate, f.BitDepth, f.Channels)
}

// Frame is one capture callback worth of interleaved little-endian PCM.
// The coordinator consumes it once and does not keep a reference.
type Frame struct {
	Data       []byte
	Format     Format
	FrameCount int
}

func NewFrame(data []byte, format Format) Frame {
	frameCount := 0
	if bpf := format.BytesPerFrame(); bpf > 0 {
		frameCount = len(data) / bpf
	}
	return Frame{Data: data, Format: format, FrameCount: frameCount}
}

type DeviceConfig struct {
	// DeviceIndex selects an input device; a negative value means the host default.
	DeviceIndex     int
	Format          Format
	FramesPerBuffer int
}

type DeviceInfo struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

type FrameSink interface {
	OnFrame(frame Frame)
	OnError(err error)
}

type Device interface {
	Start(sink FrameSink) error
	Stop() error
	Close() error
	Info() DeviceInfo
}

type Opener interface {
	OpenCaptureDevice(cfg DeviceConfig) (Device, error)
	ListInputDevices() ([]DeviceInfo, error)
}

type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("capture device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
