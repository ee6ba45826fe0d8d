package model

import "net/http"

// Code signals the relay's own outcome, independent of the target's status.
type Code int

// Envelope codes.
const (
	CodeSuccess      Code = 200
	CodeFail         Code = 500
	CodeUnauthorized Code = 401
	CodeForbidden    Code = 403
	CodeNotFound     Code = 404
)

// DefaultFailMsg is used when a failure carries no description.
const DefaultFailMsg = "Proxy Request Failed"

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "SUCCESS"
	case CodeFail:
		return "FAIL"
	case CodeUnauthorized:
		return "UNAUTHORIZED"
	case CodeForbidden:
		return "FORBIDDEN"
	case CodeNotFound:
		return "NOT_FOUND"
	}
	return "UNKNOWN"
}

// Envelope wraps every API response. Data is set only for CodeSuccess,
// Msg only otherwise.
type Envelope[T any] struct {
	Code Code   `json:"code"`
	Data *T     `json:"data,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

// Success wraps data in a SUCCESS envelope.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{Code: CodeSuccess, Data: &data}
}

// Fail returns a FAIL envelope carrying msg, or DefaultFailMsg if msg is empty.
func Fail[T any](msg string) Envelope[T] {
	if msg == "" {
		msg = DefaultFailMsg
	}
	return Envelope[T]{Code: CodeFail, Msg: msg}
}

// OK reports whether the envelope carries CodeSuccess.
func (e Envelope[T]) OK() bool {
	return e.Code == CodeSuccess
}

// NotFoundBody is returned for unmatched API paths.
type NotFoundBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CodeFromStatus maps an HTTP status produced by the server itself to the
// closest envelope code.
func CodeFromStatus(status int) Code {
	switch status {
	case http.StatusOK:
		return CodeSuccess
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	}
	return CodeFail
}
