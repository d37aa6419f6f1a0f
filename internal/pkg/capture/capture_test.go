package capture

import (
	"context"
	"fmt"
	"testing"

	"github.com/pitchforge/pitchforge/internal/pkg/test"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	ch     chan []byte
	closed bool
}

func (s *fakeStream) Chunks() <-chan []byte { return s.ch }
func (s *fakeStream) Close() error {
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

type fakeDevice struct {
	types      map[string]bool
	acquireErr error
	stream     *fakeStream
	acquired   int
	gotC       Constraints
}

func (d *fakeDevice) Supports(mediaType string) bool { return d.types[mediaType] }

func (d *fakeDevice) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	d.gotC = c
	if d.acquireErr != nil {
		return nil, d.acquireErr
	}
	d.acquired++
	d.stream = &fakeStream{ch: make(chan []byte, 10)}
	return d.stream, nil
}

func newTestRecorder(t *testing.T, d *fakeDevice) *Recorder {
	t.Helper()
	r, err := NewRecorder(d)
	require.Nil(t, err)
	return r
}

func TestNewRecorder_Fails(t *testing.T) {
	_, err := NewRecorder(nil)
	assert.NotNil(t, err)
}

func TestStart_ProbesPreference(t *testing.T) {
	d := &fakeDevice{types: map[string]bool{"audio/webm": true, "audio/wav": true}}
	r := newTestRecorder(t, d)
	require.Nil(t, r.Start(test.Ctx(t)))
	assert.Equal(t, "audio/webm", d.gotC.MediaType)
	assert.Equal(t, 16000, d.gotC.SampleRate)
	assert.Equal(t, 1, d.gotC.Channels)
	assert.True(t, d.gotC.EchoCancellation)
}

func TestStart_NoSupportedType(t *testing.T) {
	r := newTestRecorder(t, &fakeDevice{types: map[string]bool{}})
	err := r.Start(test.Ctx(t))
	require.NotNil(t, err)
	assert.Equal(t, utils.DeviceUnavailable, utils.KindOf(err))
}

func TestStart_PermissionDenied(t *testing.T) {
	d := &fakeDevice{types: map[string]bool{"audio/wav": true},
		acquireErr: fmt.Errorf("mic: %w", ErrPermission)}
	r := newTestRecorder(t, d)
	err := r.Start(test.Ctx(t))
	require.NotNil(t, err)
	assert.Equal(t, utils.PermissionDenied, utils.KindOf(err))
}

func TestStart_SecondIsRejected(t *testing.T) {
	d := &fakeDevice{types: map[string]bool{"audio/wav": true}}
	r := newTestRecorder(t, d)
	require.Nil(t, r.Start(test.Ctx(t)))
	assert.NotNil(t, r.Start(test.Ctx(t)))
	assert.Equal(t, 1, d.acquired)
}

func TestStop_Finalizes(t *testing.T) {
	d := &fakeDevice{types: map[string]bool{"audio/wav": true}}
	r := newTestRecorder(t, d)
	require.Nil(t, r.Start(test.Ctx(t)))
	d.stream.ch <- []byte("ol")
	d.stream.ch <- []byte("ia")
	res, err := r.Stop()
	require.Nil(t, err)
	assert.Equal(t, []byte("olia"), res.Data)
	assert.Equal(t, "audio/wav", res.MediaType)
	assert.True(t, d.stream.closed)
	assert.False(t, r.Recording())
}

func TestStop_Empty(t *testing.T) {
	d := &fakeDevice{types: map[string]bool{"audio/wav": true}}
	r := newTestRecorder(t, d)
	require.Nil(t, r.Start(test.Ctx(t)))
	_, err := r.Stop()
	require.NotNil(t, err)
	assert.Equal(t, utils.EmptyRecording, utils.KindOf(err))
	assert.True(t, d.stream.closed, "device released on error path")
}

func TestStop_NotRecording(t *testing.T) {
	r := newTestRecorder(t, &fakeDevice{types: map[string]bool{"audio/wav": true}})
	_, err := r.Stop()
	assert.NotNil(t, err)
}

func TestStartAgainAfterStop(t *testing.T) {
	d := &fakeDevice{types: map[string]bool{"audio/wav": true}}
	r := newTestRecorder(t, d)
	require.Nil(t, r.Start(test.Ctx(t)))
	d.stream.ch <- []byte("olia")
	_, err := r.Stop()
	require.Nil(t, err)
	require.Nil(t, r.Start(test.Ctx(t)))
	assert.Equal(t, 2, d.acquired)
}
