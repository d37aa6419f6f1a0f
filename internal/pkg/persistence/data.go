package persistence

import (
	"time"

	"github.com/pitchforge/pitchforge/internal/pkg/pitch"
)

type (

	// PitchRecord table
	PitchRecord struct {
		ID         string
		UserID     string
		Title      string
		OneLiner   string
		Structure  pitch.Structure
		Transcript string
		Status     string
		Created    time.Time
	}
)
