//go:build portaudio
// +build portaudio

package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice captures PCM from the default input and emits
// streaming WAV chunks
type PortAudioDevice struct{}

// NewPortAudioDevice creates the device
func NewPortAudioDevice() *PortAudioDevice {
	return &PortAudioDevice{}
}

// Supports reports encodable media types, portaudio path produces WAV only
func (d *PortAudioDevice) Supports(mediaType string) bool {
	return mediaType == "audio/wav"
}

// Acquire opens the default input stream, one acquisition at a time is
// enforced by the recorder
func (d *PortAudioDevice) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("can't init portaudio: %w", err)
	}
	framesPerBuffer := c.SampleRate * int(c.ChunkInterval/time.Millisecond) / 1000
	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(c.Channels, 0, float64(c.SampleRate), framesPerBuffer, buffer)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("can't open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("can't start stream: %w", err)
	}
	res := &paStream{stream: stream, buffer: buffer, ch: make(chan []byte, 4), stop: make(chan struct{})}
	res.ch <- wavHeader(c.SampleRate, c.Channels)
	res.done.Add(1)
	go res.run()
	return res, nil
}

type paStream struct {
	stream *portaudio.Stream
	buffer []int16
	ch     chan []byte

	stopOnce sync.Once
	stop     chan struct{}
	done     sync.WaitGroup
}

func (s *paStream) run() {
	defer s.done.Done()
	defer close(s.ch)
	for {
		select {
		case <-s.stop:
			return
		default:
		}
		if err := s.stream.Read(); err != nil {
			goapp.Log.Error().Err(err).Msg("stream read error")
			return
		}
		select {
		case s.ch <- pcmChunk(s.buffer):
		case <-s.stop:
			return
		}
	}
}

func (s *paStream) Chunks() <-chan []byte {
	return s.ch
}

func (s *paStream) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.done.Wait()
	err := s.stream.Stop()
	if errC := s.stream.Close(); err == nil {
		err = errC
	}
	if errT := portaudio.Terminate(); err == nil {
		err = errT
	}
	return err
}
