package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pitchforge/pitchforge/internal/pkg/capture"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/viper"
)

// Recognizer runs one non-continuous live recognition pass against the
// microphone. It is a second independent capture, not a reuse of the
// recorded payload
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// WhisperRecognizer captures a bounded live window and sends it to the
// whisper transcription model
type WhisperRecognizer struct {
	client   *openai.Client
	recorder *capture.Recorder
	window   time.Duration
}

// NewWhisperRecognizer creates a recognizer over a capture device
func NewWhisperRecognizer(c *viper.Viper, device capture.Device) (*WhisperRecognizer, error) {
	key := c.GetString("openai.key")
	if key == "" {
		return nil, fmt.Errorf("no api key")
	}
	window := c.GetDuration("openai.fallbackWindow")
	if window <= 0 {
		window = 15 * time.Second
	}
	rec, err := capture.NewRecorder(device)
	if err != nil {
		return nil, fmt.Errorf("can't init recorder: %w", err)
	}
	return &WhisperRecognizer{client: openai.NewClient(key), recorder: rec,
		window: window}, nil
}

// Recognize records one bounded window and returns its single result
func (r *WhisperRecognizer) Recognize(ctx context.Context) (string, error) {
	goapp.Log.Info().Dur("window", r.window).Msg("fallback recognition pass")
	if err := r.recorder.Start(ctx); err != nil {
		return "", fmt.Errorf("can't start fallback capture: %w", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(r.window):
	}
	payload, err := r.recorder.Stop()
	if err != nil {
		return "", fmt.Errorf("can't finalize fallback capture: %w", err)
	}
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "fallback.wav",
		Reader:   bytes.NewReader(payload.Data),
	})
	if err != nil {
		return "", fmt.Errorf("can't transcribe: %w", err)
	}
	return resp.Text, nil
}
