// internal/tools/policy-search/config.go
package policysearch

import "pv-query-router/internal/tools"

const (
	SearchPath = "hub/policy/search/"
	PageSize   = 10
)

type Config struct {
	tools.Config
	SearchPath string
	PageSize   int
}

func LoadConfig(base tools.Config) *Config {
	return &Config{
		Config:     base,
		SearchPath: SearchPath,
		PageSize:   PageSize,
	}
}
