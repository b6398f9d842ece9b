package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/common/metrics"
	"pv-query-router/internal/common/validation"
)

// Backend issues one GET against a domain API and returns its envelope. A
// transport failure, non-2xx status or undecodable body is returned as a
// REMOTE_CALL_FAILED error; business-code failures are left to the caller.
type Backend interface {
	Get(ctx context.Context, path string, params url.Values) (*Envelope, error)
}

// RemoteBackend talks to the real service under baseURL.
type RemoteBackend struct {
	baseURL string
	headers map[string]string
	client  *http.Client
	log     logger.Logger
}

// NewRemoteBackend creates a backend. headers are sent on every request;
// values are never logged.
func NewRemoteBackend(baseURL string, timeout time.Duration, headers map[string]string, log logger.Logger) *RemoteBackend {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		if v != "" {
			h[k] = v
		}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &RemoteBackend{
		baseURL: baseURL,
		headers: h,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (b *RemoteBackend) Get(ctx context.Context, path string, params url.Values) (*Envelope, error) {
	start := time.Now()
	env, err := b.get(ctx, path, params)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else if !env.Success() {
		outcome = "business_error"
	}
	metrics.RemoteCallDuration.WithLabelValues(path, outcome).Observe(time.Since(start).Seconds())

	b.log.Debug("remote call finished", map[string]interface{}{
		"path":     path,
		"params":   params.Encode(),
		"outcome":  outcome,
		"duration": time.Since(start).String(),
	})
	return env, err
}

func (b *RemoteBackend) get(ctx context.Context, path string, params url.Values) (*Envelope, error) {
	endpoint := b.baseURL + strings.TrimPrefix(path, "/")
	fullURL := endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, requestFailed(endpoint, err)
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, requestFailed(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestFailed(endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, requestFailed(endpoint, fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), fullURL))
	}

	return decodeEnvelope(endpoint, body)
}

func decodeEnvelope(endpoint string, body []byte) (*Envelope, error) {
	result, err := validation.ValidateBytes(validation.EnvelopeSchema, body)
	if err != nil {
		return nil, requestFailed(endpoint, fmt.Errorf("invalid JSON response: %w", err))
	}
	if !result.Valid {
		return nil, requestFailed(endpoint, fmt.Errorf("unexpected response shape: %s", strings.Join(result.GetErrorMessages(), "; ")))
	}

	env := &Envelope{}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, requestFailed(endpoint, fmt.Errorf("invalid JSON response: %w", err))
	}
	return env, nil
}

func requestFailed(endpoint string, err error) error {
	return apperrors.NewRemoteCallFailedError(endpoint, fmt.Sprintf("API请求失败: %v", err))
}

// MockFunc produces the payload a mock endpoint would return.
type MockFunc func(path string, params url.Values) (interface{}, error)

// MockBackend serves canned payloads through the same envelope decoding as the
// remote backend. It records every call for inspection in tests.
type MockBackend struct {
	fn MockFunc

	mu    sync.Mutex
	calls []MockCall
}

type MockCall struct {
	Path   string
	Params url.Values
}

func NewMockBackend(fn MockFunc) *MockBackend {
	return &MockBackend{fn: fn}
}

func (m *MockBackend) Get(ctx context.Context, path string, params url.Values) (*Envelope, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Path: path, Params: params})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, requestFailed(path, err)
	}

	payload, err := m.fn(path, params)
	if err != nil {
		return nil, requestFailed(path, err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, requestFailed(path, err)
	}
	return decodeEnvelope(path, body)
}

// Calls returns a copy of the recorded calls.
func (m *MockBackend) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
