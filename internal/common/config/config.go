// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	DBAgent  DBAgentConfig  `mapstructure:"dbagent"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// ToolsConfig is shared by every tool adapter. UseMock selects the mock backend
// once at construction.
type ToolsConfig struct {
	UseMock            bool            `mapstructure:"use_mock"`
	BaseURL            string          `mapstructure:"base_url"`
	Timeout            int             `mapstructure:"timeout"` // milliseconds
	AuthorizationToken string          `mapstructure:"authorization_token"`
	APIToken           string          `mapstructure:"api_token"`
	CatalogPath        string          `mapstructure:"catalog_path"` // optional; disabled entries are not registered
	Knowledge          KnowledgeConfig `mapstructure:"knowledge"`
}

// KnowledgeConfig holds settings for the business FAQ corpus.
type KnowledgeConfig struct {
	MaxPages int    `mapstructure:"max_pages"`
	PageSize int    `mapstructure:"page_size"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
	Source   string `mapstructure:"source"`  // "api" or "elasticsearch"
	Index    string `mapstructure:"index"`
}

// LLMConfig holds settings for the reasoning model. An empty APIKey selects
// keyword routing.
type LLMConfig struct {
	Provider         string  `mapstructure:"provider"`
	BaseURL          string  `mapstructure:"base_url"`
	APIKey           string  `mapstructure:"api_key"`
	Model            string  `mapstructure:"model"`
	Temperature      float64 `mapstructure:"temperature"`
	Timeout          int     `mapstructure:"timeout"` // milliseconds
	MaxIterations    int     `mapstructure:"max_iterations"`
	MaxExecutionTime int     `mapstructure:"max_execution_time"` // milliseconds
}

type SessionConfig struct {
	Backend      string `mapstructure:"backend"` // "memory" or "redis"
	TTL          int    `mapstructure:"ttl"`     // milliseconds, redis only
	MaxTurns     int    `mapstructure:"max_turns"`
	ContextTurns int    `mapstructure:"context_turns"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	URL            string `mapstructure:"url"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string. A configured URL wins.
func (p PostgresConfig) GetDSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Configured reports whether enough is set to attempt a connection.
func (p PostgresConfig) Configured() bool {
	return p.URL != "" || (p.Host != "" && p.Database != "")
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DBAgentConfig holds settings for the text-to-SQL agent.
type DBAgentConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Tables  []string `mapstructure:"tables"`
	MaxRows int      `mapstructure:"max_rows"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
