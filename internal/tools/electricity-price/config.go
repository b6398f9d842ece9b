// internal/tools/electricity-price/config.go
package electricityprice

import "pv-query-router/internal/tools"

const (
	PricePath           = "hub/elec_price/"
	IndustrialPricePath = "hub/industrial_commercial_elec_price/"
)

type Config struct {
	tools.Config
	PricePath           string
	IndustrialPricePath string
}

func LoadConfig(base tools.Config) *Config {
	return &Config{
		Config:              base,
		PricePath:           PricePath,
		IndustrialPricePath: IndustrialPricePath,
	}
}
