// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL       = "https://test.daxiazhaoguang.com/server/"
	DefaultLLMBaseURL    = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultLLMModel      = "gemini-2.5-flash"
	DefaultKnowledgeIdx  = "business_knowledge"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	KnowledgeSourceAPI   = "api"
	KnowledgeSourceES    = "elasticsearch"
)

var defaultDBAgentTables = []string{"h1_carry_over_performance", "h1_collections_performance"}

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values from the environment variable names used by
// the existing deployment.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Tools.BaseURL == "" {
		if val := os.Getenv("BASE_URL"); val != "" {
			cfg.Tools.BaseURL = val
		}
	}
	if val := os.Getenv("USE_MOCK_DATA"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tools.UseMock = b
		}
	}
	if cfg.Tools.AuthorizationToken == "" {
		if val := os.Getenv("AUTHORIZATION_TOKEN"); val != "" {
			cfg.Tools.AuthorizationToken = val
		}
	}
	if cfg.Tools.APIToken == "" {
		if val := os.Getenv("DAXIA_API_TOKEN"); val != "" {
			cfg.Tools.APIToken = val
		}
	}
	if cfg.Tools.CatalogPath == "" {
		if val := os.Getenv("TOOL_CATALOG_PATH"); val != "" {
			cfg.Tools.CatalogPath = val
		}
	}

	if cfg.LLM.APIKey == "" {
		for _, name := range []string{"LLM_API_KEY", "GOOGLE_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.LLM.APIKey = val
				break
			}
		}
	}
	if cfg.LLM.BaseURL == "" {
		if val := os.Getenv("LLM_BASE_URL"); val != "" {
			cfg.LLM.BaseURL = val
		}
	}

	if cfg.Database.Postgres.URL == "" {
		if val := os.Getenv("SUPABASE_DATABASE_URL"); val != "" {
			cfg.Database.Postgres.URL = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "pv-query-router"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 120000
	}

	if cfg.Tools.BaseURL == "" {
		cfg.Tools.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.Tools.BaseURL, "/") {
		cfg.Tools.BaseURL += "/"
	}
	if cfg.Tools.Timeout == 0 {
		cfg.Tools.Timeout = 30000
	}
	if cfg.Tools.Knowledge.MaxPages == 0 {
		cfg.Tools.Knowledge.MaxPages = 3
	}
	if cfg.Tools.Knowledge.PageSize == 0 {
		cfg.Tools.Knowledge.PageSize = 20
	}
	if cfg.Tools.Knowledge.Timeout == 0 {
		cfg.Tools.Knowledge.Timeout = 10000
	}
	if cfg.Tools.Knowledge.Source == "" {
		cfg.Tools.Knowledge.Source = KnowledgeSourceAPI
	}
	if cfg.Tools.Knowledge.Index == "" {
		cfg.Tools.Knowledge.Index = DefaultKnowledgeIdx
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultLLMModel
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60000
	}
	if cfg.LLM.MaxIterations == 0 {
		cfg.LLM.MaxIterations = 15
	}
	if cfg.LLM.MaxExecutionTime == 0 {
		cfg.LLM.MaxExecutionTime = 60000
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = SessionBackendMemory
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 1800000
	}
	if cfg.Session.MaxTurns == 0 {
		cfg.Session.MaxTurns = 10
	}
	if cfg.Session.ContextTurns == 0 {
		cfg.Session.ContextTurns = 3
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if len(cfg.DBAgent.Tables) == 0 {
		cfg.DBAgent.Tables = append([]string(nil), defaultDBAgentTables...)
	}
	if cfg.DBAgent.MaxRows == 0 {
		cfg.DBAgent.MaxRows = 50
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if !cfg.Tools.UseMock && cfg.Tools.AuthorizationToken == "" {
		return fmt.Errorf("tools.authorization_token is required when tools.use_mock is false")
	}

	switch cfg.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis session backend")
		}
	default:
		return fmt.Errorf("session.backend must be %q or %q", SessionBackendMemory, SessionBackendRedis)
	}

	switch cfg.Tools.Knowledge.Source {
	case KnowledgeSourceAPI:
	case KnowledgeSourceES:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for the elasticsearch knowledge source")
		}
	default:
		return fmt.Errorf("tools.knowledge.source must be %q or %q", KnowledgeSourceAPI, KnowledgeSourceES)
	}

	if cfg.DBAgent.Enabled && !cfg.Database.Postgres.Configured() {
		return fmt.Errorf("database.postgres url or host/database is required when dbagent is enabled")
	}

	if cfg.Session.ContextTurns > cfg.Session.MaxTurns {
		return fmt.Errorf("session.context_turns must not exceed session.max_turns")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
