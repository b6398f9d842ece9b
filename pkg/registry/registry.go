// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pv-query-router/internal/common/validation"
)

func LoadCatalog(path string) (*ToolCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var catalog ToolCatalog
	err = json.Unmarshal(data, &catalog)
	return &catalog, err
}

// Validate checks raw catalog JSON against CatalogSchema, then checks tool
// names and uniqueness of names and endpoints.
func Validate(data []byte) error {
	result, err := validation.ValidateBytes(CatalogSchema, data)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("catalog does not match schema: %s", strings.Join(result.GetErrorMessages(), "; "))
	}

	var catalog ToolCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return err
	}

	names := make(map[string]bool)
	endpoints := make(map[string]bool)
	for _, t := range catalog.Tools {
		if err := validation.ValidateToolName(t.Name); err != nil {
			return err
		}
		if names[t.Name] {
			return fmt.Errorf("duplicate tool name: %s", t.Name)
		}
		names[t.Name] = true
		if endpoints[t.Endpoint] {
			return fmt.Errorf("duplicate endpoint: %s", t.Endpoint)
		}
		endpoints[t.Endpoint] = true
	}
	return nil
}

func SaveCatalog(catalog *ToolCatalog, path string) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// Find returns the entry named name.
func (c *ToolCatalog) Find(name string) (*ToolEntry, bool) {
	for i := range c.Tools {
		if c.Tools[i].Name == name {
			return &c.Tools[i], true
		}
	}
	return nil, false
}
