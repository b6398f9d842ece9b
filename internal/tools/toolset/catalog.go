package toolset

import (
	"encoding/json"
	"time"

	"pv-query-router/internal/common/validation"
	"pv-query-router/internal/models"
	"pv-query-router/internal/tools"
	"pv-query-router/pkg/registry"
)

// Endpoints maps each tool to its REST path. The knowledge tool keeps the
// shorter path it was first published under.
var Endpoints = map[models.ToolName]string{
	models.ToolElectricityPrice:   "/query_electricity_price",
	models.ToolGenerationDuration: "/query_power_generation_duration",
	models.ToolPVCapacity:         "/query_photovoltaic_capacity",
	models.ToolPolicySearch:       "/query_policies",
	models.ToolBusinessKnowledge:  "/query_business_knowledge",
}

// Catalog describes the registered tools in registration order.
func Catalog(r *tools.Registry, version string) *registry.ToolCatalog {
	var input map[string]interface{}
	_ = json.Unmarshal([]byte(validation.ToolInputSchema), &input)

	catalog := &registry.ToolCatalog{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
	for _, t := range r.List() {
		endpoint, ok := Endpoints[t.Name()]
		if !ok {
			endpoint = "/" + string(t.Name())
		}
		catalog.Tools = append(catalog.Tools, registry.ToolEntry{
			Name:          string(t.Name()),
			Description:   t.Description(),
			FailurePrefix: t.FailurePrefix(),
			Endpoint:      endpoint,
			Status:        registry.StatusActive,
			InputSchema:   input,
		})
	}
	return catalog
}
