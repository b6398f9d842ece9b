// internal/tools/generation-duration/handler_test.go
package generationduration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "pv-query-router/internal/common/errors"
	httpc "pv-query-router/internal/common/http"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/tools"
)

func createTestConfig() *Config {
	return LoadConfig(tools.Config{
		UseMock: true,
		BaseURL: "http://localhost:8080/server/",
		Timeout: 3 * time.Second,
	})
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func createRemoteHandler(t *testing.T, serverURL string) *Handler {
	config := createTestConfig()
	config.UseMock = false
	config.BaseURL = serverURL
	return NewHandler(config, createTestLogger(t))
}

func TestExtract(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"查询北京市的有效发电小时数", "北京市"},
		{"上海市杨浦区的发电小时数是多少", "上海市杨浦区"},
		{"安徽省-淮南市有效发电小时数", "安徽省-淮南市"},
		{"宁夏回族自治区有效发电小时数", "宁夏回族自治区"},
		{"有效发电小时数是多少", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.query).City)
		})
	}
}

func TestHandler_Run_MockRoundTrip(t *testing.T) {
	handler := NewHandler(createTestConfig(), createTestLogger(t))

	got := handler.Run(context.Background(), "查询北京市的有效发电小时数")
	assert.Equal(t, "查询成功：北京市的有效发电小时数为1065.08小时。", got)
	assert.Equal(t, got, handler.Run(context.Background(), "查询北京市的有效发电小时数"))
}

func TestHandler_Execute_RemoteRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hub/power_generation_duration/", r.URL.Path)
		assert.Equal(t, "上海市杨浦区", r.URL.Query().Get("city"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"code":200,"message":"","res":1123.5}`))
	}))
	defer server.Close()

	result := createRemoteHandler(t, server.URL).Execute(context.Background(), &Input{Query: "上海市杨浦区的发电小时数是多少"})
	assert.True(t, result.Success)
	assert.Equal(t, "查询成功：上海市杨浦区的有效发电小时数为1123.5小时。", result.Message)
}

func TestHandler_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr apperrors.ErrorCode
	}{
		{"missing res", `{"code":0,"message":""}`, "有效发电小时数查询失败：返回数据格式错误", apperrors.ErrCodeFormatFailed},
		{"null res", `{"code":0,"res":null}`, "有效发电小时数查询失败：未找到发电小时数据", apperrors.ErrCodeFormatFailed},
		{"business error", `{"code":500,"message":"城市未收录"}`, "有效发电小时数查询失败：城市未收录", apperrors.ErrCodeRemoteCallFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result := createRemoteHandler(t, server.URL).Execute(context.Background(), &Input{Query: "北京市发电小时数"})
			assert.False(t, result.Success)
			assert.Equal(t, tt.want, result.Message)
			assert.Equal(t, string(tt.wantErr), result.ErrorCode)
		})
	}
}

func TestHandler_Execute_NoCityNoCall(t *testing.T) {
	backend := httpc.NewMockBackend(mockResponse)
	handler := NewHandlerWithBackend(createTestConfig(), backend, createTestLogger(t))

	msg := handler.Run(context.Background(), "发电小时数是多少")
	assert.Equal(t, "有效发电小时数查询失败：无法从查询中识别出城市信息，请提供具体的城市名称。", msg)
	assert.Empty(t, backend.Calls())
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"code":0,"res":1}`))
	}))
	defer server.Close()

	config := createTestConfig()
	config.UseMock = false
	config.BaseURL = server.URL
	config.Timeout = 50 * time.Millisecond
	handler := NewHandler(config, createTestLogger(t))

	msg := handler.Run(context.Background(), "北京市发电小时数")
	assert.True(t, tools.IsFailure(msg, FailurePrefix))
	assert.Contains(t, msg, "API请求失败")
}
