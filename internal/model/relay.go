// Package model defines shared types for the relay.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Method is an HTTP method the relay is willing to forward.
type Method string

// Supported relay methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
	MethodPatch  Method = http.MethodPatch
)

// ParseMethod upper-cases m and checks it against the supported set.
// An empty method means GET.
func ParseMethod(m string) (Method, error) {
	switch Method(strings.ToUpper(strings.TrimSpace(m))) {
	case "", MethodGet:
		return MethodGet, nil
	case MethodPost:
		return MethodPost, nil
	case MethodPut:
		return MethodPut, nil
	case MethodDelete:
		return MethodDelete, nil
	case MethodPatch:
		return MethodPatch, nil
	}
	return "", fmt.Errorf("unsupported method %q", m)
}

// RelayRequest describes a request the caller wants sent to a target.
// Header keys are kept as given and canonicalized only when sent. Body holds the raw JSON value
// supplied by the caller; nil or "null" means no body.
type RelayRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// HasBody reports whether the caller supplied a non-null body.
func (r *RelayRequest) HasBody() bool {
	b := strings.TrimSpace(string(r.Body))
	return b != "" && b != "null"
}

// RelayResult is the target's response as seen by the relay.
// Data is either raw JSON (json.RawMessage) or a string.
type RelayResult struct {
	Status     int            `json:"status"`
	StatusText string         `json:"statusText"`
	Headers    map[string]any `json:"headers"`
	Data       any            `json:"data"`
	TimeTaken  int64          `json:"timeTaken"`
}

// TargetResponse is the raw response returned by the transport.
type TargetResponse struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       io.ReadCloser
}
