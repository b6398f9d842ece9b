package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearToolEnv(t *testing.T) {
	for _, name := range []string{"BASE_URL", "USE_MOCK_DATA", "AUTHORIZATION_TOKEN", "DAXIA_API_TOKEN", "LLM_API_KEY", "GOOGLE_API_KEY", "LLM_BASE_URL", "SUPABASE_DATABASE_URL", "TOOL_CATALOG_PATH"} {
		t.Setenv(name, "")
	}
}

func TestLoadFromFile_Defaults(t *testing.T) {
	clearToolEnv(t)
	path := writeConfig(t, `
tools:
  use_mock: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Tools.UseMock)
	assert.Equal(t, DefaultBaseURL, cfg.Tools.BaseURL)
	assert.Equal(t, 30*time.Second, GetDuration(cfg.Tools.Timeout))
	assert.Equal(t, 3, cfg.Tools.Knowledge.MaxPages)
	assert.Equal(t, 20, cfg.Tools.Knowledge.PageSize)
	assert.Equal(t, 10*time.Second, GetDuration(cfg.Tools.Knowledge.Timeout))
	assert.Equal(t, KnowledgeSourceAPI, cfg.Tools.Knowledge.Source)
	assert.Equal(t, 15, cfg.LLM.MaxIterations)
	assert.Equal(t, 60*time.Second, GetDuration(cfg.LLM.MaxExecutionTime))
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, 10, cfg.Session.MaxTurns)
	assert.Equal(t, 3, cfg.Session.ContextTurns)
	assert.Equal(t, defaultDBAgentTables, cfg.DBAgent.Tables)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	clearToolEnv(t)
	t.Setenv("BASE_URL", "http://remote.test/server")
	t.Setenv("USE_MOCK_DATA", "false")
	t.Setenv("AUTHORIZATION_TOKEN", "auth-token")
	t.Setenv("DAXIA_API_TOKEN", "api-token")
	t.Setenv("GOOGLE_API_KEY", "llm-key")
	t.Setenv("SUPABASE_DATABASE_URL", "postgres://u:p@db.test:5432/oct")
	t.Setenv("TOOL_CATALOG_PATH", "configs/tool-catalog.json")

	path := writeConfig(t, `
tools:
  use_mock: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.False(t, cfg.Tools.UseMock)
	assert.Equal(t, "http://remote.test/server/", cfg.Tools.BaseURL)
	assert.Equal(t, "auth-token", cfg.Tools.AuthorizationToken)
	assert.Equal(t, "api-token", cfg.Tools.APIToken)
	assert.Equal(t, "llm-key", cfg.LLM.APIKey)
	assert.Equal(t, "postgres://u:p@db.test:5432/oct", cfg.Database.Postgres.GetDSN())
	assert.Equal(t, "configs/tool-catalog.json", cfg.Tools.CatalogPath)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	clearToolEnv(t)
	t.Setenv("TEST_KNOWLEDGE_INDEX", "faq_v2")

	path := writeConfig(t, `
tools:
  use_mock: true
  knowledge:
    index: ${TEST_KNOWLEDGE_INDEX}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "faq_v2", cfg.Tools.Knowledge.Index)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "real backend without token",
			body: `
tools:
  use_mock: false
`,
			wantErr: "tools.authorization_token",
		},
		{
			name: "redis sessions without address",
			body: `
tools:
  use_mock: true
session:
  backend: redis
`,
			wantErr: "database.redis.address",
		},
		{
			name: "unknown knowledge source",
			body: `
tools:
  use_mock: true
  knowledge:
    source: sqlite
`,
			wantErr: "tools.knowledge.source",
		},
		{
			name: "elasticsearch source without address",
			body: `
tools:
  use_mock: true
  knowledge:
    source: elasticsearch
`,
			wantErr: "database.elasticsearch",
		},
		{
			name: "dbagent without postgres",
			body: `
tools:
  use_mock: true
dbagent:
  enabled: true
`,
			wantErr: "database.postgres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearToolEnv(t)
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "localhost", Port: 5432, User: "oct", Password: "secret", Database: "oct", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=oct password=secret dbname=oct sslmode=disable", p.GetDSN())
	assert.True(t, p.Configured())
	assert.False(t, PostgresConfig{}.Configured())
}
