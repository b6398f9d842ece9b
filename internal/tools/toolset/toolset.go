// Package toolset assembles the domain tools from application configuration.
package toolset

import (
	"pv-query-router/internal/common/config"
	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/common/observability"
	"pv-query-router/internal/tools"
	businessknowledge "pv-query-router/internal/tools/business-knowledge"
	electricityprice "pv-query-router/internal/tools/electricity-price"
	generationduration "pv-query-router/internal/tools/generation-duration"
	policysearch "pv-query-router/internal/tools/policy-search"
	pvcapacity "pv-query-router/internal/tools/pv-capacity"
	"pv-query-router/pkg/registry"
)

// Build creates the five tools in routing-priority order. searcher is only
// consulted when the knowledge corpus lives in Elasticsearch.
func Build(cfg *config.Config, searcher businessknowledge.Searcher, log logger.Logger) ([]tools.Tool, error) {
	base := tools.ConfigFrom(cfg.Tools)

	electricity, err := electricityprice.NewHandler(electricityprice.LoadConfig(base), log)
	if err != nil {
		return nil, err
	}

	knowledgeCfg := businessknowledge.LoadConfig(base, cfg.Tools.Knowledge)
	var knowledge *businessknowledge.Handler
	if knowledgeCfg.Source == config.KnowledgeSourceES && !base.UseMock {
		if searcher == nil {
			return nil, apperrors.NewConfigurationMissingError("database.elasticsearch")
		}
		source := businessknowledge.NewElasticsearchSource(searcher, knowledgeCfg.Index, knowledgeCfg.PageSize)
		knowledge = businessknowledge.NewHandlerWithSource(knowledgeCfg, source, log)
	} else {
		knowledge = businessknowledge.NewHandler(knowledgeCfg, log)
	}

	built := []tools.Tool{
		electricity,
		generationduration.NewHandler(generationduration.LoadConfig(base), log),
		pvcapacity.NewHandler(pvcapacity.LoadConfig(base), log),
		policysearch.NewHandler(policysearch.LoadConfig(base), log),
		knowledge,
	}

	if cfg.Tools.CatalogPath == "" {
		return built, nil
	}
	catalog, err := registry.LoadCatalog(cfg.Tools.CatalogPath)
	if err != nil {
		return nil, err
	}
	return Enabled(built, catalog, log), nil
}

// Enabled drops the tools the catalog marks disabled. Tools the catalog does
// not mention stay registered.
func Enabled(built []tools.Tool, catalog *registry.ToolCatalog, log logger.Logger) []tools.Tool {
	kept := make([]tools.Tool, 0, len(built))
	for _, t := range built {
		if entry, ok := catalog.Find(string(t.Name())); ok && entry.Status == registry.StatusDisabled {
			log.Warn("tool disabled by catalog", map[string]interface{}{"tool": string(t.Name())})
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// NewRegistry builds the tools and registers them.
func NewRegistry(cfg *config.Config, searcher businessknowledge.Searcher, obs *observability.Observability, log logger.Logger) (*tools.Registry, error) {
	built, err := Build(cfg, searcher, log)
	if err != nil {
		return nil, err
	}
	return tools.NewRegistry(log, obs, built...), nil
}
