// internal/tools/business-knowledge/config.go
package businessknowledge

import (
	"time"

	"pv-query-router/internal/common/config"
	"pv-query-router/internal/tools"
)

const (
	KnowledgePath    = "hub/knowledge_bin/"
	DefaultThreshold = 0.3
	DefaultMaxPages  = 3
	DefaultPageSize  = 20
)

type Config struct {
	tools.Config
	KnowledgePath    string
	MaxPages         int
	PageSize         int
	KnowledgeTimeout time.Duration
	Threshold        float64
	Source           string
	Index            string
}

func LoadConfig(base tools.Config, k config.KnowledgeConfig) *Config {
	cfg := &Config{
		Config:           base,
		KnowledgePath:    KnowledgePath,
		MaxPages:         k.MaxPages,
		PageSize:         k.PageSize,
		KnowledgeTimeout: config.GetDuration(k.Timeout),
		Threshold:        DefaultThreshold,
		Source:           k.Source,
		Index:            k.Index,
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.KnowledgeTimeout <= 0 {
		cfg.KnowledgeTimeout = 10 * time.Second
	}
	if cfg.Source == "" {
		cfg.Source = config.KnowledgeSourceAPI
	}
	if cfg.Index == "" {
		cfg.Index = config.DefaultKnowledgeIdx
	}
	return cfg
}
