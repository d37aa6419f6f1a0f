package mocks

import (
	"context"

	"github.com/pitchforge/pitchforge/internal/pkg/gemini"
	"github.com/pitchforge/pitchforge/internal/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// Recognizer is gemini audio transcription mock
type Recognizer struct{ mock.Mock }

func (m *Recognizer) TranscribeAudio(ctx context.Context, prompt, mimeType string, audio []byte,
	cfg gemini.GenerationConfig) (string, error) {
	args := m.Called(ctx, prompt, mimeType, audio, cfg)
	return args.String(0), args.Error(1)
}

// Generator is gemini text generation mock
type Generator struct{ mock.Mock }

func (m *Generator) Generate(ctx context.Context, prompt string, cfg gemini.GenerationConfig) (string, error) {
	args := m.Called(ctx, prompt, cfg)
	return args.String(0), args.Error(1)
}

// DB is postgres DB mock
type DB struct{ mock.Mock }

func (m *DB) InsertPitch(ctx context.Context, rec *persistence.PitchRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *DB) ListPitches(ctx context.Context, userID string) ([]*persistence.PitchRecord, error) {
	args := m.Called(ctx, userID)
	return To[[]*persistence.PitchRecord](args.Get(0)), args.Error(1)
}

func (m *DB) LoadPitch(ctx context.Context, id, userID string) (*persistence.PitchRecord, error) {
	args := m.Called(ctx, id, userID)
	return To[*persistence.PitchRecord](args.Get(0)), args.Error(1)
}

func (m *DB) DeletePitch(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *DB) Live(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// To casts mock arg, nil aware
func To[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
