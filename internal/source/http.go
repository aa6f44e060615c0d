package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bgiacomelli/meli-compliance-monitoring/internal/models"
)

// transient statuses retried at the transport level.
var transientStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// HTTPOptions configures the resilience policy of an HTTPSource.
type HTTPOptions struct {
	Timeout       time.Duration // per-attempt request timeout
	MaxRetries    int           // extra attempts after the first
	BackoffFactor time.Duration // delay base: factor * 2^attempt
}

// DefaultHTTPOptions mirrors the standard extraction settings.
func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		Timeout:       10 * time.Second,
		MaxRetries:    3,
		BackoffFactor: 500 * time.Millisecond,
	}
}

// HTTPSource fetches alerts from a real upstream over HTTP. It holds
// only configuration and transport state, never alert data.
type HTTPSource struct {
	baseURL string
	opts    HTTPOptions
	client  *http.Client
}

// NewHTTPSource builds a source for the given base URL.
func NewHTTPSource(baseURL string, opts HTTPOptions) *HTTPSource {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultHTTPOptions().Timeout
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
	}
}

// ListIDs fetches one page of alert IDs. A 429 or 5xx response that
// survives the transport retries is a fatal *UpstreamError; any other
// status passes its body through as-is (an empty page is a valid
// answer).
func (s *HTTPSource) ListIDs(ctx context.Context, status string, limit, offset int) ([]string, error) {
	query := url.Values{}
	query.Set("status", status)
	query.Set("limit", fmt.Sprint(limit))
	query.Set("offset", fmt.Sprint(offset))

	code, payload, err := s.get(ctx, "/compliance_alerts", query)
	if err != nil {
		return nil, err
	}
	if code == http.StatusTooManyRequests || code >= 500 {
		return nil, &UpstreamError{Status: code, Body: errorBody(payload)}
	}

	data, _ := payload["data"].([]any)
	ids := make([]string, 0, len(data))
	for _, v := range data {
		ids = append(ids, fmt.Sprint(v))
	}
	return ids, nil
}

// Detail fetches one alert payload with up to MaxRetries+1 attempts.
// 200 returns the payload, 404 returns an empty RawAlert immediately,
// anything else backs off and retries. Exhausted attempts escalate to
// a *FetchError carrying the last observed failure.
func (s *HTTPSource) Detail(ctx context.Context, id string) (models.RawAlert, error) {
	backoff := NewBackoff(s.opts.BackoffFactor)
	var lastErr error

	for attempt := 0; attempt < s.opts.MaxRetries+1; attempt++ {
		if attempt > 0 {
			sleep(ctx, backoff.Next())
			if ctx.Err() != nil {
				return nil, &FetchError{ID: id, Err: ctx.Err()}
			}
		}

		code, payload, err := s.get(ctx, "/compliance_alerts/"+url.PathEscape(id), nil)
		switch {
		case err != nil:
			lastErr = err
		case code == http.StatusOK:
			return payload, nil
		case code == http.StatusNotFound:
			return models.RawAlert{}, nil
		default:
			lastErr = fmt.Errorf("HTTP %d: %s", code, errorBody(payload))
		}
	}

	return nil, &FetchError{ID: id, Err: lastErr}
}

// get performs one logical GET with transport-level retries on network
// errors and transient statuses. A body that fails to parse as JSON is
// not a failure: it degrades to a payload carrying the raw text, so
// upstream error pages stay inspectable.
func (s *HTTPSource) get(ctx context.Context, path string, query url.Values) (int, models.RawAlert, error) {
	fullURL := s.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	backoff := NewBackoff(s.opts.BackoffFactor)
	var lastErr error
	lastCode := 0
	var lastPayload models.RawAlert

	for attempt := 0; attempt < s.opts.MaxRetries+1; attempt++ {
		if attempt > 0 {
			sleep(ctx, backoff.Next())
			if err := ctx.Err(); err != nil {
				return 0, nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		lastCode = resp.StatusCode
		lastPayload = parseBody(body)
		lastErr = nil

		if transientStatus[resp.StatusCode] {
			continue
		}
		return resp.StatusCode, lastPayload, nil
	}

	if lastErr != nil {
		return 0, nil, lastErr
	}
	// Transient status on every attempt: hand the last response to the
	// caller for classification.
	return lastCode, lastPayload, nil
}

// errorBody renders a failed response's payload for error messages,
// truncated to keep logs readable.
func errorBody(payload models.RawAlert) string {
	s := payload.String("_raw_text")
	if s == "" && len(payload) > 0 {
		s = fmt.Sprint(map[string]any(payload))
	}
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}

// parseBody decodes a response body into a RawAlert. Empty bodies map
// to an empty payload; non-JSON bodies are kept as raw text.
func parseBody(body []byte) models.RawAlert {
	if len(body) == 0 {
		return models.RawAlert{}
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return models.RawAlert{"_raw_text": string(body)}
	}
	return payload
}
