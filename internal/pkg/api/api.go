package api

import "github.com/pitchforge/pitchforge/internal/pkg/pitch"

const (
	// HdrAuthorization carries the bearer token
	HdrAuthorization = "authorization"
	// HdrClientInfo is sent by dashboard clients
	HdrClientInfo = "x-client-info"
	// HdrAPIKey is sent by dashboard clients
	HdrAPIKey = "apikey"
)

type (
	// TranscribeRequest is the transcription endpoint input.
	// MimeType is optional, audio/webm is assumed when empty
	TranscribeRequest struct {
		Audio    string `json:"audio"`
		MimeType string `json:"mimeType,omitempty"`
	}

	// TranscribeResponse is the transcription endpoint output
	TranscribeResponse struct {
		Text string `json:"text"`
	}

	// GenerateRequest is the generation endpoint input
	GenerateRequest struct {
		Transcript string `json:"transcript"`
	}

	// ErrorResponse is the error payload of both edge services.
	// Message content drives client-side classification
	ErrorResponse struct {
		Error string `json:"error"`
	}

	// SaveRequest is the library save input
	SaveRequest struct {
		OneLiner   string          `json:"oneLiner"`
		Structure  pitch.Structure `json:"structure"`
		Transcript string          `json:"transcript"`
	}

	// PitchData is one saved pitch as served by the library
	PitchData struct {
		ID        string          `json:"id"`
		Title     string          `json:"title"`
		OneLiner  string          `json:"oneLiner"`
		Structure pitch.Structure `json:"structure"`
		Transcript string         `json:"transcript"`
		Status    string          `json:"status"`
		CreatedAt string          `json:"createdAt"`
	}
)
