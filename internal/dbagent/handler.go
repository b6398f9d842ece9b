// Package dbagent answers questions about the operating-performance tables by
// having a model write SQL, running it read-only and summarising the rows.
package dbagent

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/common/metrics"
	"pv-query-router/internal/llm"
)

const (
	Name = "dbagent"

	msgNoData    = "抱歉，没有找到相关数据。"
	msgErrorLead = "抱歉，处理您的问题时出现错误："
	columnsQuery = `SELECT table_name, column_name, data_type FROM information_schema.columns WHERE table_name = ANY($1) ORDER BY table_name, ordinal_position`
)

var (
	fenceOpen  = regexp.MustCompile("```sql\\s*")
	fenceClose = regexp.MustCompile("```\\s*$")
	readOnly   = regexp.MustCompile(`(?is)^\s*(select|with)\b`)
)

type Handler struct {
	config *Config
	db     *sqlx.DB
	llm    llm.Client
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sqlx.DB, client llm.Client, log logger.Logger) (*Handler, error) {
	if db == nil {
		return nil, apperrors.NewConfigurationMissingError("database.postgres")
	}
	if client == nil {
		return nil, apperrors.NewConfigurationMissingError("llm.api_key")
	}
	log = log.With(map[string]interface{}{"component": Name})
	return &Handler{
		config: config,
		db:     db,
		llm:    client,
		errors: apperrors.NewErrorHandler(log),
		logger: log,
	}, nil
}

// Ask never fails: errors are reported in the answer with status "error".
func (h *Handler) Ask(ctx context.Context, input *Input) *Answer {
	start := time.Now()

	sqlQuery, rows, err := h.execute(ctx, input.Question)
	if err != nil {
		stdErr := h.errors.Record(Name, err)
		metrics.DBAgentQueries.WithLabelValues(StatusError).Inc()
		desc := stdErr.Details
		if desc == "" {
			desc = stdErr.Message
		}
		return &Answer{
			Question: input.Question,
			Answer:   msgErrorLead + desc,
			Status:   StatusError,
		}
	}

	answer := h.formatAnswer(ctx, input.Question, sqlQuery, rows)
	metrics.DBAgentQueries.WithLabelValues(StatusSuccess).Inc()
	h.logger.Info("question answered", map[string]interface{}{
		"rows":     len(rows),
		"duration": time.Since(start).String(),
	})

	return &Answer{
		Question:   input.Question,
		SQLQuery:   sqlQuery,
		RawResults: rows,
		Answer:     answer,
		Status:     StatusSuccess,
	}
}

func (h *Handler) execute(ctx context.Context, question string) (string, []map[string]interface{}, error) {
	sqlQuery, err := h.generateSQL(ctx, question)
	if err != nil {
		return "", nil, err
	}
	h.logger.Info("generated sql", map[string]interface{}{"sql": sqlQuery})

	rows, err := h.query(ctx, sqlQuery)
	if err != nil {
		return sqlQuery, nil, err
	}
	return sqlQuery, rows, nil
}

func (h *Handler) generateSQL(ctx context.Context, question string) (string, error) {
	text, err := h.llm.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: sqlPrompt(question)}}, nil)
	if err != nil {
		return "", err
	}
	sqlQuery := StripFences(text)
	if err := CheckReadOnly(sqlQuery); err != nil {
		return "", err
	}
	return sqlQuery, nil
}

// StripFences removes a ```sql ... ``` wrapper around generated SQL.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	s = fenceOpen.ReplaceAllString(s, "")
	s = fenceClose.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// CheckReadOnly accepts a single SELECT or WITH statement. Semicolons inside
// quoted literals or identifiers do not count as separators.
func CheckReadOnly(sqlQuery string) error {
	s := strings.TrimSuffix(strings.TrimSpace(sqlQuery), ";")
	switch {
	case s == "":
		return apperrors.NewSQLGenerationFailedError("empty statement")
	case !readOnly.MatchString(s):
		return apperrors.NewSQLGenerationFailedError("only SELECT statements are allowed")
	case hasSeparator(s):
		return apperrors.NewSQLGenerationFailedError("multiple statements are not allowed")
	}
	return nil
}

// hasSeparator reports a semicolon outside '...' and "..." quoting. Doubled
// quotes ('') toggle twice and so stay inside the literal.
func hasSeparator(s string) bool {
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			return true
		}
	}
	return false
}

// query runs sqlQuery inside a read-only transaction and returns at most
// MaxRows rows as column maps.
func (h *Handler) query(ctx context.Context, sqlQuery string) ([]map[string]interface{}, error) {
	tx, err := h.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryxContext(ctx, sqlQuery)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(err)
	}
	defer rows.Close()

	results := []map[string]interface{}{}
	for rows.Next() {
		if len(results) >= h.config.MaxRows {
			break
		}
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError(err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(err)
	}
	return results, nil
}

func (h *Handler) formatAnswer(ctx context.Context, question, sqlQuery string, rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return msgNoData
	}

	text, err := h.llm.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: answerPrompt(question, sqlQuery, render(rows))}}, nil)
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	if err != nil {
		h.logger.Warn("answer formatting failed", map[string]interface{}{"error": err.Error()})
	}

	if len(rows) == 1 {
		return "查询结果：" + render(rows[0])
	}
	return fmt.Sprintf("查询到 %d 条记录：%s", len(rows), render(rows))
}

func render(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// DatabaseInfo lists the columns of the configured tables.
func (h *Handler) DatabaseInfo(ctx context.Context) *DatabaseInfo {
	var cols []struct {
		Table    string `db:"table_name"`
		Column   string `db:"column_name"`
		DataType string `db:"data_type"`
	}
	if err := h.db.SelectContext(ctx, &cols, columnsQuery, pq.Array(h.config.Tables)); err != nil {
		h.errors.Record(Name, apperrors.NewQueryExecutionFailedError(err))
		return &DatabaseInfo{Error: err.Error(), Status: StatusError}
	}

	tables := make(map[string][]string)
	for _, c := range cols {
		tables[c.Table] = append(tables[c.Table], fmt.Sprintf("%s (%s)", c.Column, c.DataType))
	}
	return &DatabaseInfo{Tables: tables, Status: StatusSuccess}
}
