package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from  State
		event Event
		want  State
	}{
		{from: StateIdle, event: EventRecord, want: StateRecording},
		{from: StateRecording, event: EventStop, want: StateTranscribing},
		{from: StateRecording, event: EventFail, want: StateErrored},
		{from: StateTranscribing, event: EventTranscribed, want: StateTranscriptReady},
		{from: StateTranscribing, event: EventFail, want: StateErrored},
		{from: StateTranscriptReady, event: EventGenerate, want: StateGenerating},
		{from: StateTranscriptReady, event: EventRerecord, want: StateIdle},
		{from: StateGenerating, event: EventGenerated, want: StatePitchReady},
		{from: StateGenerating, event: EventFail, want: StateErrored},
		{from: StatePitchReady, event: EventSave, want: StateSaving},
		{from: StatePitchReady, event: EventDelete, want: StateIdle},
		{from: StateSaving, event: EventSaved, want: StateIdle},
		{from: StateSaving, event: EventFail, want: StatePitchReady},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.event), func(t *testing.T) {
			got, err := Transition(tt.from, tt.event)
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransition_Rejected(t *testing.T) {
	tests := []struct {
		from  State
		event Event
	}{
		{from: StateIdle, event: EventStop},
		{from: StateRecording, event: EventRecord},
		{from: StateTranscribing, event: EventRecord},
		{from: StateTranscribing, event: EventStop},
		{from: StateGenerating, event: EventGenerate},
		{from: StateSaving, event: EventSave},
		{from: StateErrored, event: EventRecord},
		{from: StateIdle, event: EventRerecord},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.event), func(t *testing.T) {
			got, err := Transition(tt.from, tt.event)
			assert.NotNil(t, err)
			assert.Equal(t, tt.from, got, "state unchanged on rejection")
		})
	}
}

func TestTransition_UnknownState(t *testing.T) {
	_, err := Transition(State("olia"), EventRecord)
	assert.NotNil(t, err)
}
