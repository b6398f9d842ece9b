// internal/dbagent/handler_test.go
package dbagent

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-query-router/internal/common/config"
	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/llm"
)

// ==========================
// Test Helper Functions
// ==========================

const revenueSQL = "SELECT project_name, revenue FROM h1_carry_over_performance WHERE period = '上半年实际'"

func createTestConfig() *Config {
	return LoadConfig(config.DBAgentConfig{
		Enabled: true,
		Tables:  []string{"h1_carry_over_performance", "h1_collections_performance"},
	})
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func createTestHandler(t *testing.T, client llm.Client) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	handler, err := NewHandler(createTestConfig(), sqlx.NewDb(db, "postgres"), client, createTestLogger(t))
	require.NoError(t, err)
	return handler, mock
}

func revenueRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"project_name", "revenue"}).
		AddRow("欢乐谷", []byte("1200.50")).
		AddRow("东部华侨城", []byte("860.00"))
}

// ==========================
// Construction Tests
// ==========================

func TestLoadConfig_DefaultMaxRows(t *testing.T) {
	assert.Equal(t, 50, createTestConfig().MaxRows)
	assert.Equal(t, 5, LoadConfig(config.DBAgentConfig{MaxRows: 5}).MaxRows)
}

func TestNewHandler_MissingDependencies(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewHandler(createTestConfig(), nil, llm.NewScriptedClient(), createTestLogger(t))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigurationMissing))

	_, err = NewHandler(createTestConfig(), sqlx.NewDb(db, "postgres"), nil, createTestLogger(t))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigurationMissing))
}

// ==========================
// SQL Guard Tests
// ==========================

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"sql fence", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"bare closing fence", "SELECT 1;\n```  ", "SELECT 1;"},
		{"surrounding space", "  \n SELECT 1 \n", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{"select", "SELECT * FROM h1_collections_performance", false},
		{"lower case with trailing semicolon", "select sum(revenue) from h1_carry_over_performance;", false},
		{"cte", "WITH t AS (SELECT 1) SELECT * FROM t", false},
		{"empty", "", true},
		{"delete", "DELETE FROM h1_collections_performance", true},
		{"stacked statements", "SELECT 1; DROP TABLE h1_collections_performance", true},
		{"select prefix of another word", "SELECTED", true},
		{"semicolon inside literal", "SELECT * FROM h1_collections_performance WHERE project_name = 'a;b'", false},
		{"escaped quote before semicolon", "SELECT 'it''s;fine' AS note", false},
		{"semicolon inside quoted identifier", `SELECT 1 AS "x;y"`, false},
		{"separator after literal", "SELECT 'a;b'; DELETE FROM h1_collections_performance", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReadOnly(tt.sql)
			if tt.wantErr {
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSQLGenerationFailed))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ==========================
// Ask Tests
// ==========================

func TestAsk_Success(t *testing.T) {
	client := llm.NewScriptedClient("```sql\n"+revenueSQL+"\n```", "欢乐谷上半年收入1200.50万元。")
	handler, mock := createTestHandler(t, client)

	mock.ExpectBegin()
	mock.ExpectQuery(revenueSQL).WillReturnRows(revenueRows())
	mock.ExpectRollback()

	answer := handler.Ask(context.Background(), &Input{Question: "各项目上半年收入是多少？"})

	assert.Equal(t, StatusSuccess, answer.Status)
	assert.Equal(t, revenueSQL, answer.SQLQuery)
	assert.Equal(t, "欢乐谷上半年收入1200.50万元。", answer.Answer)
	require.Len(t, answer.RawResults, 2)
	assert.Equal(t, "1200.50", answer.RawResults[0]["revenue"])
	assert.NoError(t, mock.ExpectationsWereMet())

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0][0].Content, "用户问题: 各项目上半年收入是多少？")
	assert.Contains(t, calls[1][0].Content, "执行的SQL查询: "+revenueSQL)
	assert.Contains(t, calls[1][0].Content, `"project_name":"欢乐谷"`)
}

func TestAsk_NoRows(t *testing.T) {
	handler, mock := createTestHandler(t, llm.NewScriptedClient(revenueSQL))

	mock.ExpectBegin()
	mock.ExpectQuery(revenueSQL).WillReturnRows(sqlmock.NewRows([]string{"project_name", "revenue"}))
	mock.ExpectRollback()

	answer := handler.Ask(context.Background(), &Input{Question: "不存在的项目"})

	assert.Equal(t, StatusSuccess, answer.Status)
	assert.Equal(t, "抱歉，没有找到相关数据。", answer.Answer)
	assert.Empty(t, answer.RawResults)
}

func TestAsk_FormattingFallback(t *testing.T) {
	t.Run("single row", func(t *testing.T) {
		client := llm.NewScriptedClient(revenueSQL).FailAt(1, fmt.Errorf("timeout"))
		handler, mock := createTestHandler(t, client)

		mock.ExpectBegin()
		mock.ExpectQuery(revenueSQL).WillReturnRows(
			sqlmock.NewRows([]string{"project_name", "revenue"}).AddRow("欢乐谷", []byte("1200.50")))
		mock.ExpectRollback()

		answer := handler.Ask(context.Background(), &Input{Question: "欢乐谷收入"})
		assert.Equal(t, `查询结果：{"project_name":"欢乐谷","revenue":"1200.50"}`, answer.Answer)
	})

	t.Run("several rows", func(t *testing.T) {
		client := llm.NewScriptedClient(revenueSQL).FailAt(1, fmt.Errorf("timeout"))
		handler, mock := createTestHandler(t, client)

		mock.ExpectBegin()
		mock.ExpectQuery(revenueSQL).WillReturnRows(revenueRows())
		mock.ExpectRollback()

		answer := handler.Ask(context.Background(), &Input{Question: "各项目收入"})
		assert.Equal(t, StatusSuccess, answer.Status)
		assert.Contains(t, answer.Answer, "查询到 2 条记录：[")
	})
}

func TestAsk_MaxRows(t *testing.T) {
	handler, mock := createTestHandler(t, llm.NewScriptedClient(revenueSQL, "ok"))
	handler.config.MaxRows = 1

	mock.ExpectBegin()
	mock.ExpectQuery(revenueSQL).WillReturnRows(revenueRows())
	mock.ExpectRollback()

	answer := handler.Ask(context.Background(), &Input{Question: "各项目收入"})
	assert.Len(t, answer.RawResults, 1)
}

func TestAsk_Failures(t *testing.T) {
	t.Run("model unavailable", func(t *testing.T) {
		client := llm.NewScriptedClient().FailAt(0, apperrors.NewLLMCallFailedError(fmt.Errorf("LLM API error [401]: bad key")))
		handler, _ := createTestHandler(t, client)

		answer := handler.Ask(context.Background(), &Input{Question: "收入"})
		assert.Equal(t, StatusError, answer.Status)
		assert.Equal(t, "抱歉，处理您的问题时出现错误：LLM API error [401]: bad key", answer.Answer)
		assert.Empty(t, answer.SQLQuery)
	})

	t.Run("write statement refused", func(t *testing.T) {
		handler, mock := createTestHandler(t, llm.NewScriptedClient("DROP TABLE h1_collections_performance"))

		answer := handler.Ask(context.Background(), &Input{Question: "删除数据"})
		assert.Equal(t, StatusError, answer.Status)
		assert.Equal(t, "抱歉，处理您的问题时出现错误：only SELECT statements are allowed", answer.Answer)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		handler, mock := createTestHandler(t, llm.NewScriptedClient(revenueSQL))

		mock.ExpectBegin()
		mock.ExpectQuery(revenueSQL).WillReturnError(fmt.Errorf(`column "revenue" does not exist`))
		mock.ExpectRollback()

		answer := handler.Ask(context.Background(), &Input{Question: "收入"})
		assert.Equal(t, StatusError, answer.Status)
		assert.Equal(t, `抱歉，处理您的问题时出现错误：column "revenue" does not exist`, answer.Answer)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// ==========================
// DatabaseInfo Tests
// ==========================

func TestDatabaseInfo(t *testing.T) {
	handler, mock := createTestHandler(t, llm.NewScriptedClient())

	mock.ExpectQuery(columnsQuery).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "column_name", "data_type"}).
			AddRow("h1_carry_over_performance", "project_name", "character varying").
			AddRow("h1_carry_over_performance", "revenue", "numeric").
			AddRow("h1_collections_performance", "h1_actual", "numeric"))

	info := handler.DatabaseInfo(context.Background())

	assert.Equal(t, StatusSuccess, info.Status)
	assert.Equal(t, map[string][]string{
		"h1_carry_over_performance":  {"project_name (character varying)", "revenue (numeric)"},
		"h1_collections_performance": {"h1_actual (numeric)"},
	}, info.Tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseInfo_Error(t *testing.T) {
	handler, mock := createTestHandler(t, llm.NewScriptedClient())

	mock.ExpectQuery(columnsQuery).WithArgs(sqlmock.AnyArg()).WillReturnError(fmt.Errorf("connection reset"))

	info := handler.DatabaseInfo(context.Background())
	assert.Equal(t, StatusError, info.Status)
	assert.Equal(t, "connection reset", info.Error)
	assert.Nil(t, info.Tables)
}
