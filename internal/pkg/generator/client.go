package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/pitchforge/pitchforge/internal/pkg/api"
	"github.com/pitchforge/pitchforge/internal/pkg/pitch"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
)

// Client communicates with the generation service
type Client struct {
	httpclient  *http.Client
	generateURL string
	timeout     time.Duration
}

// NewClient creates a generation client
func NewClient(generateURL string) (*Client, error) {
	res := Client{}
	if generateURL == "" {
		return nil, fmt.Errorf("no generateURL")
	}
	res.generateURL = generateURL
	// one timed attempt per call, no automatic retry
	res.timeout = time.Second * 45
	res.httpclient = &http.Client{Transport: newTransport()}
	return &res, nil
}

// Generate turns a finalized transcript into a structured pitch.
// A blank transcript fails before any network call is made
func (c *Client) Generate(ctx context.Context, transcript string) (*pitch.Generated, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, utils.NewErrPipeline(utils.EmptyTranscript, fmt.Errorf("blank transcript"))
	}
	body, err := json.Marshal(api.GenerateRequest{Transcript: transcript})
	if err != nil {
		return nil, utils.NewErrPipeline(utils.GenerationFailed, fmt.Errorf("can't marshal request: %w", err))
	}
	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL, bytes.NewReader(body))
	if err != nil {
		return nil, utils.NewErrPipeline(utils.GenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	goapp.Log.Info().Str("url", req.URL.String()).Int("transcriptLen", len(transcript)).Msg("call generate")
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, utils.NewErrPipeline(utils.GenerationFailed, fmt.Errorf("can't call: %w", err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	br, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewErrPipeline(utils.GenerationFailed, fmt.Errorf("can't read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errData api.ErrorResponse
		if err := json.Unmarshal(br, &errData); err == nil && errData.Error != "" {
			return nil, utils.NewErrPipeline(utils.GenerationFailed, fmt.Errorf("%s", errData.Error))
		}
		return nil, utils.NewErrPipeline(utils.GenerationFailed,
			fmt.Errorf("can't invoke '%s': code %d", req.URL.String(), resp.StatusCode))
	}
	var res pitch.Generated
	if err := json.Unmarshal(br, &res); err != nil {
		return nil, utils.NewErrPipeline(utils.MalformedResponse, fmt.Errorf("can't decode response: %w", err))
	}
	if strings.TrimSpace(res.OneLiner) == "" {
		return nil, utils.NewErrPipeline(utils.MalformedResponse, fmt.Errorf("no oneLiner in response"))
	}
	return &res, nil
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 100
	res.MaxIdleConns = 50
	res.MaxIdleConnsPerHost = 50
	res.IdleConnTimeout = 90 * time.Second
	return res
}
