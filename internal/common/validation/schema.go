package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// EnvelopeSchema describes the {code, message, res|data} body returned by the
// remote domain APIs.
const EnvelopeSchema = `{
  "type": "object",
  "properties": {
    "code": {"type": ["integer", "number", "string"]},
    "message": {"type": ["string", "null"]}
  }
}`

// QueryRequestSchema describes the body accepted by the per-tool and agent endpoints.
const QueryRequestSchema = `{
  "type": "object",
  "properties": {
    "query": {"type": "string", "minLength": 1},
    "session_id": {"type": ["string", "null"]}
  },
  "required": ["query"]
}`

// ToolInputSchema is the default input schema advertised for every tool.
const ToolInputSchema = `{
  "type": "object",
  "properties": {
    "query": {"type": "string", "description": "用户的自然语言查询"}
  },
  "required": ["query"]
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var schemaCache = map[string]*gojsonschema.Schema{}

func compile(schemaJSON string) (*gojsonschema.Schema, error) {
	if s, ok := schemaCache[schemaJSON]; ok {
		return s, nil
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return s, nil
}

// Precompiled schemas shared by the HTTP backend and transport layer.
func init() {
	for _, s := range []string{EnvelopeSchema, QueryRequestSchema, ToolInputSchema} {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
		if err != nil {
			panic(fmt.Sprintf("validation: built-in schema does not compile: %v", err))
		}
		schemaCache[s] = compiled
	}
}

// ValidateDocument validates a Go value (decoded JSON) against schemaJSON.
func ValidateDocument(schemaJSON string, document interface{}) (*ValidationResult, error) {
	schema, err := compile(schemaJSON)
	if err != nil {
		return nil, err
	}
	return collect(schema.Validate(gojsonschema.NewGoLoader(document)))
}

// ValidateBytes validates raw JSON against schemaJSON.
func ValidateBytes(schemaJSON string, raw []byte) (*ValidationResult, error) {
	schema, err := compile(schemaJSON)
	if err != nil {
		return nil, err
	}
	return collect(schema.Validate(gojsonschema.NewBytesLoader(raw)))
}

// CheckSchema reports whether schemaJSON is itself a valid JSON schema.
func CheckSchema(schemaJSON string) error {
	_, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	return err
}

func collect(result *gojsonschema.Result, err error) (*ValidationResult, error) {
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	vr := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		vr.Errors = append(vr.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return vr, nil
}

var toolNamePattern = regexp.MustCompile(`^[a-z]+(_[a-z]+)+$`)

// ValidateToolName validates that a tool name is snake_case with at least two words.
func ValidateToolName(name string) error {
	if !toolNamePattern.MatchString(name) {
		return fmt.Errorf("tool name must be snake_case (e.g., query_policies), got %q", name)
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
