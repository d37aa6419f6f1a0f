package gemini

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
)

// Client communicates with the generative-language API
type Client struct {
	httpclient *http.Client
	url        string
	key        string
	model      string
	timeout    time.Duration
}

// GenerationConfig keeps sampling parameters for one call
type GenerationConfig struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// NewClient creates a gemini client
func NewClient(url, key, model string) (*Client, error) {
	res := Client{}
	if url == "" {
		return nil, fmt.Errorf("no url")
	}
	if key == "" {
		return nil, fmt.Errorf("no api key")
	}
	if model == "" {
		model = "gemini-1.5-flash-latest"
	}
	res.url = strings.TrimSuffix(url, "/")
	res.key = key
	res.model = model
	// one timed attempt per call, the user retries the step manually
	res.timeout = time.Second * 45
	res.httpclient = &http.Client{Transport: newTransport()}
	return &res, nil
}

type (
	inlineData struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}
	part struct {
		Text       string      `json:"text,omitempty"`
		InlineData *inlineData `json:"inline_data,omitempty"`
	}
	content struct {
		Parts []part `json:"parts"`
	}
	generationConfig struct {
		Temperature     float64 `json:"temperature"`
		TopK            int     `json:"topK"`
		TopP            float64 `json:"topP"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	}
	request struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}
	response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
)

// Generate submits a text prompt and returns the first candidate text
func (c *Client) Generate(ctx context.Context, prompt string, cfg GenerationConfig) (string, error) {
	return c.invoke(ctx, &request{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: toConfig(cfg),
	})
}

// TranscribeAudio submits audio bytes inline and returns the first candidate text
func (c *Client) TranscribeAudio(ctx context.Context, prompt, mimeType string, audio []byte, cfg GenerationConfig) (string, error) {
	return c.invoke(ctx, &request{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(audio)}},
		}}},
		GenerationConfig: toConfig(cfg),
	})
}

func toConfig(cfg GenerationConfig) generationConfig {
	return generationConfig{Temperature: cfg.Temperature, TopK: cfg.TopK, TopP: cfg.TopP,
		MaxOutputTokens: cfg.MaxOutputTokens}
}

func (c *Client) invoke(ctx context.Context, data *request) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("can't marshal request: %w", err)
	}
	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()
	urlStr := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.url, c.model, c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	goapp.Log.Info().Str("model", c.model).Int("len", len(body)).Msg("call gemini")
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return "", fmt.Errorf("can't call: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", classifyFailure(resp)
	}
	var respData response
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return "", fmt.Errorf("can't unmarshal: %w", err)
	}
	if len(respData.Candidates) == 0 || len(respData.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return respData.Candidates[0].Content.Parts[0].Text, nil
}

// classifyFailure maps well-known upstream codes to user-facing messages,
// clients string-match "quota" on the relayed message
func classifyFailure(resp *http.Response) error {
	br, _ := io.ReadAll(io.LimitReader(resp.Body, 10000))
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("gemini API quota exceeded, try again later")
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("gemini API key is invalid")
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("audio is too large, record a shorter clip")
	}
	return fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, string(br))
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 100
	res.MaxIdleConns = 50
	res.MaxIdleConnsPerHost = 50
	res.IdleConnTimeout = 90 * time.Second
	return res
}
