// pkg/registry/schema.go
package registry

// ToolCatalog is the published list of tools the router can call.
type ToolCatalog struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Tools       []ToolEntry `json:"tools"`
}

type ToolEntry struct {
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	FailurePrefix string                 `json:"failurePrefix"`
	Endpoint      string                 `json:"endpoint"`
	Status        string                 `json:"status"`
	InputSchema   map[string]interface{} `json:"inputSchema,omitempty"`
	Tags          []string               `json:"tags,omitempty"`
}

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// CatalogSchema is the JSON schema a catalog file must satisfy.
const CatalogSchema = `{
  "type": "object",
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "tools": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string", "minLength": 1},
          "failurePrefix": {"type": "string", "minLength": 1},
          "endpoint": {"type": "string", "pattern": "^/"},
          "status": {"enum": ["active", "disabled"]},
          "inputSchema": {"type": "object"},
          "tags": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["name", "description", "failurePrefix", "endpoint", "status"]
      }
    }
  },
  "required": ["version", "tools"]
}`
