package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pitchforge/pitchforge/internal/pkg/api"
	"github.com/pitchforge/pitchforge/internal/pkg/capture"
	"github.com/pitchforge/pitchforge/internal/pkg/pitch"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
	"github.com/pkg/errors"
)

// Capturer records audio from a device
type Capturer interface {
	Start(ctx context.Context) error
	Stop() (*capture.Payload, error)
}

// Transcriber turns a recorded payload into text
type Transcriber interface {
	Transcribe(ctx context.Context, payload *capture.Payload) (string, error)
}

// Generator turns a transcript into a structured pitch
type Generator interface {
	Generate(ctx context.Context, transcript string) (*pitch.Generated, error)
}

// Saver persists a completed pitch
type Saver interface {
	Save(ctx context.Context, data *api.SaveRequest) (*api.PitchData, error)
}

// Snapshot is a read-only view of the session for the UI
type Snapshot struct {
	View       State
	Transcript string
	Pitch      *pitch.Generated
	Err        error
	ErrKind    utils.Kind
	QuotaFlag  bool
}

// Controller drives one creation session through the capture, transcription,
// generation and save steps. All exported methods are safe for concurrent
// use, the transition guard makes overlapping step entry a rejected no-op
type Controller struct {
	capturer    Capturer
	transcriber Transcriber
	generator   Generator
	saver       Saver

	lock       sync.Mutex
	view       State
	resume     State
	payload    *capture.Payload
	transcript string
	pitch      *pitch.Generated
	lastErr    error
	quotaFlag  bool
}

// NewController creates a session controller
func NewController(c Capturer, t Transcriber, g Generator, s Saver) (*Controller, error) {
	if c == nil {
		return nil, errors.New("no capturer")
	}
	if t == nil {
		return nil, errors.New("no transcriber")
	}
	if g == nil {
		return nil, errors.New("no generator")
	}
	if s == nil {
		return nil, errors.New("no saver")
	}
	return &Controller{capturer: c, transcriber: t, generator: g, saver: s,
		view: StateIdle}, nil
}

// Snapshot returns the current session view
func (c *Controller) Snapshot() Snapshot {
	c.lock.Lock()
	defer c.lock.Unlock()
	return Snapshot{View: c.view, Transcript: c.transcript, Pitch: c.pitch,
		Err: c.lastErr, ErrKind: utils.KindOf(c.lastErr), QuotaFlag: c.quotaFlag}
}

// Record starts audio capture
func (c *Controller) Record(ctx context.Context) error {
	if err := c.step(EventRecord); err != nil {
		return err
	}
	if err := c.capturer.Start(ctx); err != nil {
		return c.fail(err, StateIdle)
	}
	goapp.Log.Info().Msg("recording")
	return nil
}

// Stop finalizes capture and runs transcription to completion
func (c *Controller) Stop(ctx context.Context) error {
	if err := c.step(EventStop); err != nil {
		return err
	}
	payload, err := c.capturer.Stop()
	if err != nil {
		return c.fail(err, StateIdle)
	}
	c.lock.Lock()
	c.payload = payload
	c.lock.Unlock()
	return c.transcribe(ctx)
}

// Generate runs pitch generation on the confirmed transcript
func (c *Controller) Generate(ctx context.Context) error {
	if err := c.step(EventGenerate); err != nil {
		return err
	}
	return c.generate(ctx)
}

// Rerecord drops all session progress and returns to idle
func (c *Controller) Rerecord() error {
	if err := c.step(EventRerecord); err != nil {
		return err
	}
	c.reset()
	return nil
}

// Save persists the generated pitch. On failure the pitch is retained
// and the save may be retried
func (c *Controller) Save(ctx context.Context) (*api.PitchData, error) {
	if err := c.step(EventSave); err != nil {
		return nil, err
	}
	c.lock.Lock()
	req := &api.SaveRequest{OneLiner: c.pitch.OneLiner, Structure: c.pitch.Structure,
		Transcript: c.transcript}
	c.lock.Unlock()
	res, err := c.saver.Save(ctx, req)
	if err != nil {
		return nil, c.fail(err, StatePitchReady)
	}
	goapp.Log.Info().Str("ID", res.ID).Msg("pitch saved")
	if err := c.step(EventSaved); err != nil {
		return nil, err
	}
	c.reset()
	return res, nil
}

// Delete discards the generated pitch without persisting
func (c *Controller) Delete() error {
	if err := c.step(EventDelete); err != nil {
		return err
	}
	c.reset()
	return nil
}

// Retry re-runs the step that failed
func (c *Controller) Retry(ctx context.Context) error {
	c.lock.Lock()
	if c.view != StateErrored {
		c.lock.Unlock()
		return fmt.Errorf("nothing to retry in state %s", c.view)
	}
	resume := c.resume
	c.lastErr = nil
	c.view = resume
	c.lock.Unlock()
	switch resume {
	case StateTranscribing:
		return c.transcribe(ctx)
	case StateGenerating:
		return c.generate(ctx)
	default:
		// capture failures resume at idle, the user records again
		return nil
	}
}

// Dismiss clears the error without re-running the failed step. After a
// generation failure the transcript is kept and the view returns to
// transcript-ready. Any other failure returns to idle and the recording
// is abandoned, Retry re-runs the failed step instead
func (c *Controller) Dismiss() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.view != StateErrored {
		return fmt.Errorf("nothing to dismiss in state %s", c.view)
	}
	c.lastErr = nil
	switch c.resume {
	case StateGenerating:
		c.view = StateTranscriptReady
	default:
		c.view = StateIdle
		c.payload = nil
	}
	c.resume = ""
	return nil
}

func (c *Controller) transcribe(ctx context.Context) error {
	c.lock.Lock()
	payload := c.payload
	c.lock.Unlock()
	text, err := c.transcriber.Transcribe(ctx, payload)
	if err != nil {
		return c.fail(err, StateTranscribing)
	}
	c.lock.Lock()
	c.transcript = text
	c.lock.Unlock()
	return c.step(EventTranscribed)
}

func (c *Controller) generate(ctx context.Context) error {
	c.lock.Lock()
	transcript := c.transcript
	c.lock.Unlock()
	res, err := c.generator.Generate(ctx, transcript)
	if err != nil {
		return c.fail(err, StateGenerating)
	}
	c.lock.Lock()
	c.pitch = res
	c.lock.Unlock()
	return c.step(EventGenerated)
}

func (c *Controller) step(event Event) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	next, err := Transition(c.view, event)
	if err != nil {
		return err
	}
	c.view = next
	return nil
}

// fail records the error and moves to the failure view. resume names the
// step to re-enter on Retry
func (c *Controller) fail(err error, resume State) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	goapp.Log.Error().Err(err).Str("state", string(c.view)).Msg("step failed")
	c.lastErr = err
	if utils.KindOf(err) == utils.QuotaExceeded {
		c.quotaFlag = true
	}
	next, terr := Transition(c.view, EventFail)
	if terr != nil {
		next = StateErrored
	}
	c.view = next
	c.resume = resume
	return err
}

func (c *Controller) reset() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.payload = nil
	c.transcript = ""
	c.pitch = nil
	c.lastErr = nil
	c.quotaFlag = false
	c.resume = ""
}
