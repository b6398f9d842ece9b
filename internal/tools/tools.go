// Package tools defines the uniform contract shared by every domain tool and
// the registry the router dispatches through.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pv-query-router/internal/common/config"
	apperrors "pv-query-router/internal/common/errors"
	httpc "pv-query-router/internal/common/http"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/models"
)

// Config selects the backend strategy for every adapter. It is fixed at
// construction; adapters never re-read the environment.
type Config struct {
	UseMock            bool
	BaseURL            string
	Timeout            time.Duration
	AuthorizationToken string
	APIToken           string
}

func ConfigFrom(c config.ToolsConfig) Config {
	return Config{
		UseMock:            c.UseMock,
		BaseURL:            c.BaseURL,
		Timeout:            config.GetDuration(c.Timeout),
		AuthorizationToken: c.AuthorizationToken,
		APIToken:           c.APIToken,
	}
}

// Tool is one domain adapter. Run never fails: extraction, remote and format
// errors come back as "<FailurePrefix>：<reason>".
type Tool interface {
	Name() models.ToolName
	Description() string
	FailurePrefix() string
	Query(ctx context.Context, query string) *models.ToolResult
	Run(ctx context.Context, query string) string
}

// NewBackend picks the mock or the remote backend once.
func NewBackend(cfg Config, headers map[string]string, mock httpc.MockFunc, log logger.Logger) httpc.Backend {
	if cfg.UseMock {
		return httpc.NewMockBackend(mock)
	}
	return httpc.NewRemoteBackend(cfg.BaseURL, cfg.Timeout, headers, log)
}

// Succeeded builds the result of a formatted response.
func Succeeded(name models.ToolName, message string, env *httpc.Envelope) *models.ToolResult {
	return &models.ToolResult{
		Tool:        name,
		Success:     true,
		Message:     message,
		RawResponse: rawResponse(env),
	}
}

// Failed renders err under prefix and logs it through h.
func Failed(name models.ToolName, prefix string, err error, env *httpc.Envelope, h *apperrors.ErrorHandler) *models.ToolResult {
	return &models.ToolResult{
		Tool:        name,
		Success:     false,
		Message:     h.ToolFailure(string(name), prefix, err),
		RawResponse: rawResponse(env),
		ErrorCode:   string(apperrors.AsStandardError(err).Code),
	}
}

func rawResponse(env *httpc.Envelope) interface{} {
	if env == nil {
		return nil
	}
	return env
}

// IsFailure reports whether a rendered tool message is a failure string.
func IsFailure(message, prefix string) bool {
	return strings.HasPrefix(message, prefix)
}

// Text renders a JSON scalar the way it reads in the body: strings unquoted,
// numbers and booleans verbatim.
func Text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// Object decodes a JSON object into its raw fields. Null fields are dropped so
// that a lookup treats them as missing.
func Object(raw json.RawMessage) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return DropNulls(fields), nil
}

// DropNulls returns fields without its null values.
func DropNulls(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(string(v)) != "null" {
			out[k] = v
		}
	}
	return out
}

// StringField returns the text of key in fields, or fallback when absent.
func StringField(fields map[string]json.RawMessage, key, fallback string) string {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	return Text(raw)
}
