package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/cenkalti/backoff/v4"
	"github.com/pitchforge/pitchforge/internal/pkg/api"
	"github.com/pitchforge/pitchforge/internal/pkg/utils"
)

// Client communicates with the library service
type Client struct {
	httpclient *http.Client
	url        string
	timeout    time.Duration
	backoff    func() backoff.BackOff
}

// NewClient creates a library client
func NewClient(url string) (*Client, error) {
	res := Client{}
	if url == "" {
		return nil, fmt.Errorf("no url")
	}
	res.url = url
	res.timeout = time.Second * 30
	res.httpclient = &http.Client{Transport: newTransport()}
	res.backoff = newSimpleBackoff
	return &res, nil
}

// WaitReady polls the live endpoint until the service answers or retries
// are exhausted
func (c *Client) WaitReady(ctx context.Context) error {
	_, err := goapp.InvokeWithBackoff(ctx, func() (interface{}, bool, error) {
		ctx, cancelF := context.WithTimeout(ctx, c.timeout)
		defer cancelF()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/live", nil)
		if err != nil {
			return nil, false, err
		}
		goapp.Log.Info().Str("url", req.URL.String()).Msg("check live")
		resp, err := c.httpclient.Do(req)
		if err != nil {
			return nil, goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
			_ = resp.Body.Close()
		}()
		if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
			err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
			return nil, true, err
		}
		return nil, false, nil
	}, c.backoff())
	return err
}

// Save stores a completed pitch. One attempt only, a retried save could
// duplicate the record
func (c *Client) Save(ctx context.Context, token string, data *api.SaveRequest) (*api.PitchData, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, utils.NewErrPipeline(utils.PersistenceFailed, fmt.Errorf("can't marshal request: %w", err))
	}
	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/pitches", bytes.NewReader(body))
	if err != nil {
		return nil, utils.NewErrPipeline(utils.PersistenceFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	goapp.Log.Info().Str("url", req.URL.String()).Msg("save pitch")
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, utils.NewErrPipeline(utils.PersistenceFailed, fmt.Errorf("can't call: %w", err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	br, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, utils.NewErrPipeline(utils.PersistenceFailed, fmt.Errorf("can't read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errData api.ErrorResponse
		if err := json.Unmarshal(br, &errData); err == nil && errData.Error != "" {
			return nil, utils.NewErrPipeline(utils.PersistenceFailed, fmt.Errorf("%s", errData.Error))
		}
		return nil, utils.NewErrPipeline(utils.PersistenceFailed,
			fmt.Errorf("can't invoke '%s': code %d", req.URL.String(), resp.StatusCode))
	}
	var res api.PitchData
	if err := json.Unmarshal(br, &res); err != nil {
		return nil, utils.NewErrPipeline(utils.PersistenceFailed, fmt.Errorf("can't decode response: %w", err))
	}
	return &res, nil
}

// List loads all user's pitches
func (c *Client) List(ctx context.Context, token string) ([]*api.PitchData, error) {
	ctx, cancelF := context.WithTimeout(ctx, c.timeout)
	defer cancelF()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/pitches", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("can't call: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
		_ = resp.Body.Close()
	}()
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		return nil, fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
	}
	var res []*api.PitchData
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("can't decode response: %w", err)
	}
	return res, nil
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 100
	res.MaxIdleConns = 50
	res.MaxIdleConnsPerHost = 50
	res.IdleConnTimeout = 90 * time.Second
	return res
}

func newSimpleBackoff() backoff.BackOff {
	res := backoff.NewExponentialBackOff()
	return backoff.WithMaxRetries(res, 3)
}
