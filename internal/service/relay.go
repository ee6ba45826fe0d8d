// Package service implements the relay operation.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"api-relay/internal/client"
	"api-relay/internal/config"
	"api-relay/internal/metrics"
	"api-relay/internal/model"
)

const (
	defaultAccept    = "application/json, text/plain, */*"
	contentTypeJSON  = "application/json"
	contentTypeForm  = "application/x-www-form-urlencoded"
	headerSetCookie  = "set-cookie"
	headerValueDelim = ", "
)

// Transport performs a single outbound HTTP exchange.
type Transport interface {
	Do(req *http.Request) (*model.TargetResponse, error)
}

var _ Transport = (*client.TargetClient)(nil)

// RelayService forwards caller-described requests to their targets.
type RelayService struct {
	transport Transport
	userAgent string
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewRelayService creates a RelayService backed by the target client.
// The metrics parameter is optional.
func NewRelayService(c *client.TargetClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *RelayService {
	return NewRelayServiceWithTransport(c, cfg.Relay.UserAgent, logger, m)
}

// NewRelayServiceWithTransport creates a RelayService over an arbitrary Transport.
func NewRelayServiceWithTransport(t Transport, userAgent string, logger *slog.Logger, m *metrics.Metrics) *RelayService {
	return &RelayService{
		transport: t,
		userAgent: userAgent,
		logger:    logger.With("component", "relay_service"),
		metrics:   m,
	}
}

// Relay sends req to its target and wraps the outcome in an envelope.
// Any status the target returns, including 4xx and 5xx, is a SUCCESS; only
// failures to complete the exchange produce a FAIL envelope. Relay never
// returns an error and never retries.
func (s *RelayService) Relay(ctx context.Context, req *model.RelayRequest) model.Envelope[model.RelayResult] {
	start := time.Now()

	result, err := s.relay(ctx, req, start)
	if err != nil {
		host, path := targetLocation(req.URL)
		s.logger.Warn("relay failed",
			"method", req.Method,
			"host", host,
			"path", path,
			"err", err,
		)
		s.recordOutcome(model.CodeFail)
		return model.Fail[model.RelayResult](err.Error())
	}

	host, path := targetLocation(req.URL)
	s.logger.Debug("relay completed",
		"method", req.Method,
		"host", host,
		"path", path,
		"status", result.Status,
		"time_taken_ms", result.TimeTaken,
	)
	s.recordOutcome(model.CodeSuccess)
	return model.Success(*result)
}

func (s *RelayService) relay(ctx context.Context, req *model.RelayRequest, start time.Time) (*model.RelayResult, error) {
	out, err := s.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := s.transport.Do(out)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read target response: %w", err)
	}
	elapsed := time.Since(start).Milliseconds()

	return &model.RelayResult{
		Status:     resp.StatusCode,
		StatusText: statusText(resp.StatusCode, resp.Status),
		Headers:    flattenHeaders(resp.Header),
		Data:       responseData(body),
		TimeTaken:  max(elapsed, 0),
	}, nil
}

// buildRequest turns a RelayRequest into an outbound *http.Request.
// The URL is validated only by http.NewRequestWithContext.
func (s *RelayService) buildRequest(ctx context.Context, req *model.RelayRequest) (*http.Request, error) {
	method, err := model.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	body, contentType, err := requestBody(req)
	if err != nil {
		return nil, err
	}

	out, err := http.NewRequestWithContext(ctx, string(method), req.URL, body)
	if err != nil {
		return nil, err
	}

	// Keys are canonicalized: net/http only recognizes Host and User-Agent
	// in canonical form and would otherwise send its own alongside.
	header := make(http.Header, len(req.Headers)+3)
	for k, v := range req.Headers {
		header.Add(k, v)
	}
	if host := header.Get("Host"); host != "" {
		out.Host = host
		header.Del("Host")
	}
	if contentType != "" && !hasHeader(header, "Content-Type") {
		header.Set("Content-Type", contentType)
	}
	if !hasHeader(header, "Accept") {
		header.Set("Accept", defaultAccept)
	}
	if !hasHeader(header, "User-Agent") && s.userAgent != "" {
		header.Set("User-Agent", s.userAgent)
	}
	out.Header = header

	return out, nil
}

func (s *RelayService) recordOutcome(code model.Code) {
	if s.metrics != nil {
		s.metrics.RelayOutcomes.WithLabelValues(code.String()).Inc()
	}
}

// requestBody encodes the caller's body. A JSON string is sent as its
// decoded text with a form content type; any other JSON value is sent as-is
// with a JSON content type.
func requestBody(req *model.RelayRequest) (io.Reader, string, error) {
	if !req.HasBody() {
		return nil, "", nil
	}

	raw := bytes.TrimSpace(req.Body)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, "", fmt.Errorf("decode string body: %w", err)
		}
		return strings.NewReader(s), contentTypeForm, nil
	}
	return bytes.NewReader(raw), contentTypeJSON, nil
}

// responseData returns body as raw JSON when it parses, otherwise as text.
// JSON nested deeper than encoding/json accepts is returned as text too,
// since it could not be written back into the envelope.
func responseData(body []byte) any {
	if len(bytes.TrimSpace(body)) > 0 && gjson.ValidBytes(body) && json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// flattenHeaders lower-cases names and joins repeated values; set-cookie
// stays a list since cookie values may contain commas.
func flattenHeaders(h http.Header) map[string]any {
	out := make(map[string]any, len(h))
	for k, vals := range h {
		name := strings.ToLower(k)
		if name == headerSetCookie {
			out[name] = append([]string(nil), vals...)
			continue
		}
		out[name] = strings.Join(vals, headerValueDelim)
	}
	return out
}

// statusText strips the numeric code from a status line such as "404 Not Found".
func statusText(code int, status string) string {
	return strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
}

// targetLocation returns the host and path of rawURL for logging; the query
// is left out since it often carries credentials.
func targetLocation(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Path
}

func hasHeader(h http.Header, name string) bool {
	return len(h.Values(name)) > 0
}
