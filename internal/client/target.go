// Package client provides the outbound HTTP transport used to reach relay targets.
package client

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"api-relay/internal/config"
	"api-relay/internal/metrics"
	"api-relay/internal/model"
)

// ErrTooManyRedirects is returned when a target exceeds the configured redirect cap.
var ErrTooManyRedirects = errors.New("maximum number of redirects exceeded")

// TargetClient sends caller-described requests to arbitrary targets.
// Every HTTP status is a successful outcome; only transport failures are errors.
type TargetClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewTargetClient creates a TargetClient with connection pooling and timeouts.
// The metrics parameter is optional; pass nil to disable target metrics recording.
func NewTargetClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *TargetClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Relay.IdleConnections,
		MaxIdleConnsPerHost: cfg.Relay.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2: true,
	}
	if cfg.Relay.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for testing self-signed targets
	}

	var timeout time.Duration
	if cfg.Relay.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Relay.TimeoutSeconds) * time.Second
	}

	return &TargetClient{
		httpClient: &http.Client{
			Transport:     transport,
			Timeout:       timeout,
			CheckRedirect: redirectPolicy(cfg.Relay.MaxRedirects),
		},
		logger:  logger.With("component", "target_client"),
		metrics: m,
	}
}

// redirectPolicy follows up to max redirects. A negative max returns the
// redirect response itself.
func redirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if maxRedirects < 0 {
			return http.ErrUseLastResponse
		}
		if len(via) > maxRedirects {
			return ErrTooManyRedirects
		}
		return nil
	}
}

// Do executes req against its target and returns the raw response.
// The caller is responsible for closing the response body.
func (c *TargetClient) Do(req *http.Request) (*model.TargetResponse, error) {
	c.logger.Debug("target request",
		"method", req.Method,
		"host", req.URL.Host,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller via TargetResponse
	duration := time.Since(start).Seconds()

	method := metrics.NormalizeMethod(req.Method)
	if c.metrics != nil {
		c.metrics.TargetDuration.WithLabelValues(method).Observe(duration)
	}

	if err != nil {
		return nil, fmt.Errorf("target request: %w", err)
	}

	if c.metrics != nil {
		c.metrics.TargetResponses.WithLabelValues(method, metrics.StatusClass(resp.StatusCode)).Inc()
	}

	return &model.TargetResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}
