package transcriber

import (
	"context"
	"testing"
	"time"

	"github.com/pitchforge/pitchforge/internal/pkg/capture"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct{}

func (d *fakeDevice) Supports(mediaType string) bool { return mediaType == "audio/wav" }

func (d *fakeDevice) Acquire(ctx context.Context, c capture.Constraints) (capture.Stream, error) {
	return nil, capture.ErrPermission
}

func TestNewWhisperRecognizer(t *testing.T) {
	c := viper.New()
	c.Set("openai.key", "olia")
	c.Set("openai.fallbackWindow", "2s")
	res, err := NewWhisperRecognizer(c, &fakeDevice{})
	require.Nil(t, err)
	assert.Equal(t, 2*time.Second, res.window)
}

func TestNewWhisperRecognizer_DefaultWindow(t *testing.T) {
	c := viper.New()
	c.Set("openai.key", "olia")
	res, err := NewWhisperRecognizer(c, &fakeDevice{})
	require.Nil(t, err)
	assert.Equal(t, 15*time.Second, res.window)
}

func TestNewWhisperRecognizer_Fails(t *testing.T) {
	_, err := NewWhisperRecognizer(viper.New(), &fakeDevice{})
	assert.NotNil(t, err, "no api key")
	c := viper.New()
	c.Set("openai.key", "olia")
	_, err = NewWhisperRecognizer(c, nil)
	assert.NotNil(t, err, "no device")
}
