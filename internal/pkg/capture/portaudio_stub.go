//go:build !portaudio
// +build !portaudio

package capture

import (
	"context"
	"fmt"
)

// PortAudioDevice stub for builds without the portaudio tag
type PortAudioDevice struct{}

// NewPortAudioDevice creates the stub device
func NewPortAudioDevice() *PortAudioDevice {
	return &PortAudioDevice{}
}

// Supports reports no media types for the stub
func (d *PortAudioDevice) Supports(mediaType string) bool {
	return false
}

// Acquire always fails, the binary was built without audio support
func (d *PortAudioDevice) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	return nil, fmt.Errorf("built without portaudio support")
}
