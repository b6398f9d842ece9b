// internal/dbagent/config.go
package dbagent

import "pv-query-router/internal/common/config"

type Config struct {
	Tables  []string
	MaxRows int
}

func LoadConfig(c config.DBAgentConfig) *Config {
	maxRows := c.MaxRows
	if maxRows <= 0 {
		maxRows = 50
	}
	return &Config{
		Tables:  c.Tables,
		MaxRows: maxRows,
	}
}
