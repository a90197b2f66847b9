package issueclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenericMessage is used when neither the server nor the transport says anything useful.
const GenericMessage = "An error occurred"

// TransportError is the single error shape for every failed request: network
// failures, timeouts and non-2xx responses alike. Message is what the user sees.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int // 0 when no response arrived
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the server answered 404.
func (e *TransportError) NotFound() bool {
	return e.StatusCode == 404
}

// detailBody is the error envelope the store uses: {"detail": "..."} or, for
// request validation failures, {"detail": [{"msg": "...", "loc": [...]}, ...]}.
type detailBody struct {
	Detail json.RawMessage `json:"detail"`
}

type detailItem struct {
	Msg string `json:"msg"`
}

// serverDetail extracts a human-readable detail from an error response body.
func serverDetail(body []byte) string {
	var env detailBody
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var items []detailItem
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if m := strings.TrimSpace(it.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// newStatusError prefers the server detail, then the HTTP status text.
func newStatusError(method, path string, status int, statusText string, body []byte) *TransportError {
	msg := serverDetail(body)
	if msg == "" {
		msg = fmt.Sprintf("%s %s: %s", method, path, statusText)
	}
	return &TransportError{Method: method, Path: path, StatusCode: status, Message: msg}
}

func newNetworkError(method, path string, err error) *TransportError {
	msg := GenericMessage
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		msg = err.Error()
	}
	return &TransportError{Method: method, Path: path, Message: msg, Err: err}
}
