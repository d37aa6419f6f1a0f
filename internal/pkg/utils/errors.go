package utils

import "errors"

// Kind classifies a pipeline step failure
type Kind int

const (
	// PermissionDenied - platform refused microphone access
	PermissionDenied Kind = iota + 1
	// DeviceUnavailable - no capture device present or device busy
	DeviceUnavailable
	// EmptyRecording - stop called with zero captured bytes
	EmptyRecording
	// EncodingFailed - payload transport encoding failed
	EncodingFailed
	// QuotaExceeded - remote service signals quota/rate exhaustion
	QuotaExceeded
	// TranscriptionFailed - remote transcription failed
	TranscriptionFailed
	// FallbackUnavailable - no fallback recognition capability exists
	FallbackUnavailable
	// EmptyTranscript - generation invoked with a blank transcript
	EmptyTranscript
	// GenerationFailed - remote generation failed
	GenerationFailed
	// MalformedResponse - no parseable JSON object in generation response
	MalformedResponse
	// IncompleteStructure - generation response has no structure object
	IncompleteStructure
	// PersistenceFailed - save/list/delete request failed
	PersistenceFailed
)

var kindName = map[Kind]string{
	PermissionDenied:    "PermissionDenied",
	DeviceUnavailable:   "DeviceUnavailable",
	EmptyRecording:      "EmptyRecording",
	EncodingFailed:      "EncodingFailed",
	QuotaExceeded:       "QuotaExceeded",
	TranscriptionFailed: "TranscriptionFailed",
	FallbackUnavailable: "FallbackUnavailable",
	EmptyTranscript:     "EmptyTranscript",
	GenerationFailed:    "GenerationFailed",
	MalformedResponse:   "MalformedResponse",
	IncompleteStructure: "IncompleteStructure",
	PersistenceFailed:   "PersistenceFailed",
}

func (k Kind) String() string {
	return kindName[k]
}

// ErrPipeline tags an underlying error with the step failure kind.
// A step failure never crosses the step boundary untagged
type ErrPipeline struct {
	kind Kind
	err  error
}

// NewErrPipeline creates new tagged error
func NewErrPipeline(kind Kind, err error) error {
	return &ErrPipeline{kind: kind, err: err}
}

func (e *ErrPipeline) Error() string {
	if e.err == nil {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.err.Error()
}

func (e *ErrPipeline) Unwrap() error {
	return e.err
}

// Kind returns the failure classification
func (e *ErrPipeline) Kind() Kind {
	return e.kind
}

// KindOf extracts the failure kind from an error chain, 0 if untagged
func KindOf(err error) Kind {
	var pe *ErrPipeline
	if errors.As(err, &pe) {
		return pe.kind
	}
	return 0
}
