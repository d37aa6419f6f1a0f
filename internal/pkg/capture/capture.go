package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
)

// ErrPermission is returned by a device when the platform refuses access
var ErrPermission = errors.New("permission denied")

// Payload is the finalized encoded audio of one recording session
type Payload struct {
	Data      []byte
	MediaType string
}

// Constraints describe how a device should be opened
type Constraints struct {
	MediaType        string
	SampleRate       int
	Channels         int
	EchoCancellation bool
	NoiseSuppression bool
	AutoGain         bool
	ChunkInterval    time.Duration
}

// Stream is one open device acquisition
type Stream interface {
	// Chunks delivers ordered encoded chunks until the stream is closed
	Chunks() <-chan []byte
	// Close stops capture and releases the device
	Close() error
}

// Device abstracts a capture source
type Device interface {
	Supports(mediaType string) bool
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}

// MediaTypes is the descending encoding preference list,
// the first one the device supports wins
func MediaTypes() []string {
	return []string{"audio/webm;codecs=opus", "audio/webm", "audio/ogg;codecs=opus", "audio/wav"}
}

const (
	targetSampleRate = 16000
	chunkInterval    = 250 * time.Millisecond
)

// Recorder buffers encoded chunks from at most one open acquisition
type Recorder struct {
	device Device

	mu        sync.Mutex
	stream    Stream
	mediaType string
	chunks    [][]byte
	collected chan struct{}
}

// NewRecorder creates a recorder over a device
func NewRecorder(device Device) (*Recorder, error) {
	if device == nil {
		return nil, fmt.Errorf("no device")
	}
	return &Recorder{device: device}, nil
}

// Start acquires the device and begins buffering chunks.
// A second Start while a stream is open is rejected
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream != nil {
		return fmt.Errorf("already recording")
	}
	mt, err := r.probe()
	if err != nil {
		return err
	}
	stream, err := r.device.Acquire(ctx, Constraints{MediaType: mt, SampleRate: targetSampleRate,
		Channels: 1, EchoCancellation: true, NoiseSuppression: true, AutoGain: true,
		ChunkInterval: chunkInterval})
	if err != nil {
		if errors.Is(err, ErrPermission) {
			return utils.NewErrPipeline(utils.PermissionDenied, err)
		}
		return utils.NewErrPipeline(utils.DeviceUnavailable, err)
	}
	goapp.Log.Info().Str("mediaType", mt).Msg("recording started")
	r.stream, r.mediaType, r.chunks = stream, mt, nil
	r.collected = make(chan struct{})
	go r.collect(stream.Chunks(), r.collected)
	return nil
}

func (r *Recorder) probe() (string, error) {
	for _, mt := range MediaTypes() {
		if r.device.Supports(mt) {
			return mt, nil
		}
	}
	return "", utils.NewErrPipeline(utils.DeviceUnavailable, fmt.Errorf("no supported media type"))
}

func (r *Recorder) collect(ch <-chan []byte, done chan struct{}) {
	defer close(done)
	for b := range ch {
		r.mu.Lock()
		r.chunks = append(r.chunks, b)
		r.mu.Unlock()
	}
}

// Stop finalizes buffered chunks into one payload and releases the device.
// The device is released on the error path too
func (r *Recorder) Stop() (*Payload, error) {
	r.mu.Lock()
	stream, collected := r.stream, r.collected
	r.mu.Unlock()
	if stream == nil {
		return nil, fmt.Errorf("not recording")
	}
	errClose := stream.Close()
	<-collected

	r.mu.Lock()
	defer r.mu.Unlock()
	chunks, mt := r.chunks, r.mediaType
	r.stream, r.chunks, r.collected = nil, nil, nil
	if errClose != nil {
		return nil, utils.NewErrPipeline(utils.DeviceUnavailable, errClose)
	}
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	if size == 0 {
		return nil, utils.NewErrPipeline(utils.EmptyRecording, fmt.Errorf("no audio captured"))
	}
	data := make([]byte, 0, size)
	for _, c := range chunks {
		data = append(data, c...)
	}
	goapp.Log.Info().Int("bytes", size).Int("chunks", len(chunks)).Msg("recording finalized")
	return &Payload{Data: data, MediaType: mt}, nil
}

// Recording reports whether an acquisition is open
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}
