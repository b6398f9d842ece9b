// internal/tools/pv-capacity/config.go
package pvcapacity

import "pv-query-router/internal/tools"

const (
	CapacityPath = "hub/pv_capacity/"
	PageSize     = 10
)

type Config struct {
	tools.Config
	CapacityPath string
	PageSize     int
}

func LoadConfig(base tools.Config) *Config {
	return &Config{
		Config:       base,
		CapacityPath: CapacityPath,
		PageSize:     PageSize,
	}
}
