package session

import "fmt"

// State is one creation flow view
type State string

// Event moves the flow between views
type Event string

const (
	StateIdle            State = "idle"
	StateRecording       State = "recording"
	StateTranscribing    State = "transcribing"
	StateTranscriptReady State = "transcript-ready"
	StateGenerating      State = "generating"
	StatePitchReady      State = "pitch-ready"
	StateSaving          State = "saving"
	StateErrored         State = "errored"
)

const (
	EventRecord      Event = "record"
	EventStop        Event = "stop"
	EventTranscribed Event = "transcribed"
	EventGenerate    Event = "generate"
	EventGenerated   Event = "generated"
	EventRerecord    Event = "rerecord"
	EventSave        Event = "save"
	EventSaved       Event = "saved"
	EventDelete      Event = "delete"
	EventFail        Event = "fail"
)

// Transition returns the next state for an event. A rejected event keeps
// the current state, pipeline steps never overlap this way
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventRecord:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventStop:
			return StateTranscribing, nil
		case EventFail:
			return StateErrored, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscribing:
		switch event {
		case EventTranscribed:
			return StateTranscriptReady, nil
		case EventFail:
			return StateErrored, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscriptReady:
		switch event {
		case EventGenerate:
			return StateGenerating, nil
		case EventRerecord:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateGenerating:
		switch event {
		case EventGenerated:
			return StatePitchReady, nil
		case EventFail:
			return StateErrored, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StatePitchReady:
		switch event {
		case EventSave:
			return StateSaving, nil
		case EventDelete:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSaving:
		switch event {
		case EventSaved:
			return StateIdle, nil
		case EventFail:
			// save failure retains the pitch for a retry
			return StatePitchReady, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateErrored:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
