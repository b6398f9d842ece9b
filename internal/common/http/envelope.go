package http

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "pv-query-router/internal/common/errors"
)

// Envelope is the {code, message, res|data} body returned by the remote domain
// APIs. Key presence is tracked separately from value so that a missing field
// can be told apart from a zero value.
type Envelope struct {
	fields map[string]json.RawMessage
}

func (e *Envelope) UnmarshalJSON(b []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	e.fields = fields
	return nil
}

func (e *Envelope) MarshalJSON() ([]byte, error) {
	if e.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.fields)
}

// Field returns the raw value of key. Missing keys and JSON null both report false.
func (e *Envelope) Field(key string) (json.RawMessage, bool) {
	if e == nil || e.fields == nil {
		return nil, false
	}
	raw, ok := e.fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, false
	}
	return raw, true
}

// Has reports whether key is present, even with a null value.
func (e *Envelope) Has(key string) bool {
	if e == nil || e.fields == nil {
		return false
	}
	_, ok := e.fields[key]
	return ok
}

// Decode unmarshals the value of key into out. It reports false when the key is
// absent, null or not decodable into out.
func (e *Envelope) Decode(key string, out interface{}) bool {
	raw, ok := e.Field(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// Code returns the business code when it is numeric.
func (e *Envelope) Code() (int64, bool) {
	raw, ok := e.Field("code")
	if !ok {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

// Success reports whether the business code is 0 or 200.
func (e *Envelope) Success() bool {
	code, ok := e.Code()
	return ok && (code == 0 || code == 200)
}

// Message returns the message field, or fallback when it is absent or empty.
func (e *Envelope) Message(fallback string) string {
	var msg string
	if !e.Decode("message", &msg) || msg == "" {
		return fallback
	}
	return msg
}

// Err converts a non-success envelope into a remote-call failure.
func (e *Envelope) Err(endpoint string) error {
	if e.Success() {
		return nil
	}
	return apperrors.NewRemoteCallFailedError(endpoint, e.Message("未知错误"))
}

// NewEnvelope builds an envelope from any JSON-encodable payload.
func NewEnvelope(payload interface{}) (*Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	env := &Envelope{}
	if err := json.Unmarshal(b, env); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return env, nil
}
