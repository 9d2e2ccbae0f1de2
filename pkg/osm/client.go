package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultUserAgent identifies this client to Nominatim and the OSM API,
	// both of which require a descriptive User-Agent.
	DefaultUserAgent = "BikeParking-MCP/1.0"

	// DefaultTimeout bounds each upstream request.
	DefaultTimeout = 30 * time.Second
)

// Transport is the HTTP plumbing shared by every upstream client: one
// pooled http.Client, the User-Agent header and per-service throttling.
type Transport struct {
	httpClient *http.Client
	userAgent  string
	limiter    *RateLimiter
	logger     *slog.Logger
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithHTTPClient replaces the pooled client, e.g. with an httptest client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) { t.httpClient = c }
}

// WithUserAgent sets the User-Agent sent on every request.
func WithUserAgent(ua string) TransportOption {
	return func(t *Transport) { t.userAgent = ua }
}

// WithRateLimiter sets the per-service limiter.
func WithRateLimiter(rl *RateLimiter) TransportOption {
	return func(t *Transport) { t.limiter = rl }
}

// WithTransportLogger sets the logger.
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(t *Transport) { t.logger = logger }
}

// NewTransport returns a Transport with connection pooling, the default
// User-Agent and the default service limits.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		httpClient: NewHTTPClient(DefaultTimeout),
		userAgent:  DefaultUserAgent,
		limiter:    NewRateLimiter(DefaultLimits()),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewHTTPClient returns an HTTP client configured for upstream API requests
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewRequestWithUserAgent creates a new GET request with the User-Agent set.
func (t *Transport) NewRequestWithUserAgent(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// DoRequest performs an HTTP request after waiting for the service's rate limit.
func (t *Transport) DoRequest(ctx context.Context, service string, req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.userAgent)

	if err := t.limiter.Wait(ctx, service); err != nil {
		return nil, err
	}

	return t.httpClient.Do(req)
}

// GetJSON issues a GET to url and decodes a 200 response into out.
// Transport failures and non-200 statuses become *APIError values of kind
// ErrCollaboratorUnavailable; decode failures are ErrMalformedResponse.
// guidance maps a status code to a recovery hint and may be nil.
func (t *Transport) GetJSON(ctx context.Context, service, displayName, url string, guidance func(int) string, out any) error {
	req, err := t.NewRequestWithUserAgent(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := t.DoRequest(ctx, service, req)
	if err != nil {
		t.logger.Error("failed to execute request", "service", service, "error", err)
		return NewTransportError(displayName, err)
	}
	defer resp.Body.Close()

	t.logger.Debug("upstream response",
		"service", service,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.logger.Error("upstream service returned error", "service", service, "status", resp.StatusCode)
		hint := ""
		if guidance != nil {
			hint = guidance(resp.StatusCode)
		}
		msg := http.StatusText(resp.StatusCode)
		if len(body) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, body)
		}
		return NewAPIError(displayName, resp.StatusCode, msg, hint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.logger.Error("failed to decode response", "service", service, "error", err)
		return NewDecodeError(displayName, err)
	}

	return nil
}
