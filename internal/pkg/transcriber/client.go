package transcriber

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pitchforge/pitchforge/internal/pkg/api"
	"github.com/pitchforge/pitchforge/internal/pkg/capture"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
)

// Client communicates with the transcription service and optionally
// falls back to a live recognition pass
type Client struct {
	httpclient    *http.Client
	transcribeURL string
	timeout       time.Duration
	recognizer    Recognizer
}

// NewRemote creates a remote-only transcription client
func NewRemote(transcribeURL string) (*Client, error) {
	return newClient(transcribeURL, nil)
}

// NewWithFallback creates a client that tries the given recognizer when
// the remote path yields no usable transcript
func NewWithFallback(transcribeURL string, recognizer Recognizer) (*Client, error) {
	if recognizer == nil {
		return nil, fmt.Errorf("no recognizer")
	}
	return newClient(transcribeURL, recognizer)
}

func newClient(transcribeURL string, recognizer Recognizer) (*Client, error) {
	res := Client{}
	if transcribeURL == "" {
		return nil, fmt.Errorf("no transcribeURL")
	}
	res.transcribeURL = transcribeURL
	// one timed attempt, no automatic retry against the same endpoint
	res.timeout = time.Second * 45
	res.httpclient = &http.Client{Transport: newTransport()}
	res.recognizer = recognizer
	return &res, nil
}

// encodeChunkSize bounds peak memory during transport encoding
const encodeChunkSize = 32768

// EncodeAudio produces the transport-safe text representation of the
// payload, encoding incrementally in fixed-size chunks
func EncodeAudio(payload *capture.Payload) (string, error) {
	if payload == nil || len(payload.Data) == 0 {
		return "", utils.NewErrPipeline(utils.EncodingFailed, fmt.Errorf("empty payload"))
	}
	var b strings.Builder
	b.Grow(base64.StdEncoding.EncodedLen(len(payload.Data)))
	enc := base64.NewEncoder(base64.StdEncoding, &b)
	for off := 0; off < len(payload.Data); off += encodeChunkSize {
		end := off + encodeChunkSize
		if end > len(payload.Data) {
			end = len(payload.Data)
		}
		if _, err := enc.Write(payload.Data[off:end]); err != nil {
			return "", utils.NewErrPipeline(utils.EncodingFailed, fmt.Errorf("can't encode chunk at %d: %w", off, err))
		}
	}
	if err := enc.Close(); err != nil {
		return "", utils.NewErrPipeline(utils.EncodingFailed, fmt.Errorf("can't finalize encoding: %w", err))
	}
	return b.String(), nil
}

// Transcribe converts one finalized payload to text. Exactly one of
// remote success, fallback success or a classified terminal failure is
// reported per invocation
func (c *Client) Transcribe(ctx context.Context, payload *capture.Payload) (string, error) {
	enc, err := EncodeAudio(payload)
	if err != nil {
		return "", err
	}
	text, remoteErr := c.callRemote(ctx, enc, payload.MediaType)
	if remoteErr == nil && text != "" {
		return text, nil
	}
	kind := classify(remoteErr, c.recognizer != nil)
	if c.recognizer == nil {
		return "", utils.NewErrPipeline(kind, remoteErr)
	}
	goapp.Log.Warn().AnErr("remoteErr", remoteErr).Msg("remote transcription unusable, trying fallback")
	fbText, fbErr := c.recognizer.Recognize(ctx)
	if fbErr == nil && fbText != "" {
		return fbText, nil
	}
	if fbErr == nil {
		fbErr = fmt.Errorf("empty fallback result")
	}
	if kind == utils.QuotaExceeded {
		return "", utils.NewErrPipeline(utils.QuotaExceeded, fmt.Errorf("fallback failed too: %w", fbErr))
	}
	return "", utils.NewErrPipeline(utils.TranscriptionFailed, fmt.Errorf("fallback failed too: %w", fbErr))
}

// classify maps a remote outcome to the failure kind surfaced when no
// fallback rescues the call. Message content drives classification,
// quota/rate exhaustion is distinct from generic failure
func classify(remoteErr error, hasFallback bool) utils.Kind {
	if remoteErr == nil {
		// 2xx with empty text
		if hasFallback {
			return utils.TranscriptionFailed
		}
		return utils.FallbackUnavailable
	}
	if strings.Contains(strings.ToLower(remoteErr.Error()), "quota") {
		return utils.QuotaExceeded
	}
	return utils.TranscriptionFailed
}

func (c *Client) callRemote(ctx context.Context, encodedAudio, mediaType string) (string, error) {
	body, err := json.Marshal(api.TranscribeRequest{Audio: encodedAudio, MimeType: mediaType})
	if err != nil {
		return "", fmt.Errorf("can't marshal request: %w", err)
	}
	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.transcribeURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	goapp.Log.Info().Str("url", req.URL.String()).Int("len", len(body)).Msg("call transcribe")
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return "", fmt.Errorf("can't call: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	br, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("can't read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errData api.ErrorResponse
		if err := json.Unmarshal(br, &errData); err == nil && errData.Error != "" {
			return "", fmt.Errorf("%s", errData.Error)
		}
		return "", fmt.Errorf("can't invoke '%s': code %d", req.URL.String(), resp.StatusCode)
	}
	var respData api.TranscribeResponse
	if err := json.Unmarshal(br, &respData); err != nil {
		return "", fmt.Errorf("can't decode response: %w", err)
	}
	return strings.TrimSpace(respData.Text), nil
}

func newTransport() http.RoundTripper {
	// default roundripper is not well suited for our case
	// it has just 2 idle connections per host, so try to tune a bit
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 100
	res.MaxIdleConns = 50
	res.MaxIdleConnsPerHost = 50
	res.IdleConnTimeout = 90 * time.Second
	return res
}
