// internal/tools/generation-duration/config.go
package generationduration

import "pv-query-router/internal/tools"

const DurationPath = "hub/power_generation_duration/"

type Config struct {
	tools.Config
	DurationPath string
}

func LoadConfig(base tools.Config) *Config {
	return &Config{
		Config:       base,
		DurationPath: DurationPath,
	}
}
