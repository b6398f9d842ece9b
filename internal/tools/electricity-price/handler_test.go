// internal/tools/electricity-price/handler_test.go
package electricityprice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pv-query-router/internal/common/errors"
	httpc "pv-query-router/internal/common/http"
	"pv-query-router/internal/common/logger"
	"pv-query-router/internal/tools"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return LoadConfig(tools.Config{
		UseMock:            true,
		BaseURL:            "http://localhost:8080/server/",
		Timeout:            3 * time.Second,
		AuthorizationToken: "test-token",
	})
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewTestLogger(t)
}

func createMockHandler(t *testing.T) *Handler {
	handler, err := NewHandler(createTestConfig(), createTestLogger(t))
	require.NoError(t, err)
	return handler
}

func createRemoteHandler(t *testing.T, serverURL string) *Handler {
	config := createTestConfig()
	config.UseMock = false
	config.BaseURL = serverURL
	handler, err := NewHandler(config, createTestLogger(t))
	require.NoError(t, err)
	return handler
}

// ==========================
// Extraction Tests
// ==========================

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"city and district feed-in", "查询上海市杨浦区的上网电价", Params{City: "上海市杨浦区", PriceType: PriceTypeFeedIn}},
		{"hyphenated stays whole", "安徽省-淮南市的工商加权电价是多少", Params{City: "安徽省-淮南市", PriceType: PriceTypeIndustrialCommercial}},
		{"abbreviation expands", "安徽淮南的脱硫煤电价", Params{City: "安徽省-淮南市", PriceType: PriceTypeDesulfurizedCoal}},
		{"coal wins over feed-in", "北京市脱硫煤上网电价", Params{City: "北京市", PriceType: PriceTypeDesulfurizedCoal}},
		{"industrial keyword", "广州市工商业电价", Params{City: "广州市", PriceType: PriceTypeIndustrialCommercial}},
		{"no city", "开封的电价", Params{}},
		{"no type", "上海市的电价", Params{City: "上海市"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.query))
		})
	}
}

func TestFormatCity(t *testing.T) {
	assert.Equal(t, "上海市-杨浦区", FormatCity("上海市杨浦区"))
	assert.Equal(t, "安徽省-淮南市", FormatCity("安徽省-淮南市"))
	assert.Equal(t, "安徽省-淮南市", FormatCity("安徽省淮南市"))
	assert.Equal(t, "北京市", FormatCity("北京市"))
	assert.Equal(t, "", FormatCity(""))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Run_MockRoundTrip(t *testing.T) {
	handler := createMockHandler(t)
	ctx := context.Background()

	assert.Equal(t, "查询成功：上海市-杨浦区的上网电价为0.4155元/千瓦时。", handler.Run(ctx, "查询上海市杨浦区的上网电价"))
	assert.Equal(t, "查询成功：安徽省-淮南市的工商加权电价为0.5731元/千瓦时。", handler.Run(ctx, "安徽省-淮南市的工商加权电价是多少"))
	assert.Equal(t, "查询成功：北京市的脱硫煤电价为0.3500元/千瓦时。", handler.Run(ctx, "北京市的脱硫煤电价"))
}

func TestMockResponse_MatchesExtractedCity(t *testing.T) {
	tests := []struct {
		name  string
		city  string
		price string
	}{
		{"as extracted", "上海市杨浦区", "0.4155"},
		{"as formatted for the api", FormatCity("上海市杨浦区"), "0.4155"},
		{"other city", "北京市", "0.3500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := mockResponse(PricePath, url.Values{"city": {tt.city}, "type": {PriceTypeFeedIn.TypeParam()}})
			require.NoError(t, err)
			res := payload.(map[string]interface{})["res"].(map[string]interface{})
			assert.Equal(t, tt.price, res["elec_price"])
			assert.Equal(t, tt.city, res["city"])
		})
	}

	payload, err := mockResponse(PricePath, url.Values{"city": {"上海市-杨浦区"}, "type": {PriceTypeDesulfurizedCoal.TypeParam()}})
	require.NoError(t, err)
	assert.Equal(t, "0.3500", payload.(map[string]interface{})["res"].(map[string]interface{})["elec_price"])
}

func TestHandler_Run_Idempotent(t *testing.T) {
	handler := createMockHandler(t)
	ctx := context.Background()

	first := handler.Run(ctx, "查询上海市杨浦区的上网电价")
	second := handler.Run(ctx, "查询上海市杨浦区的上网电价")
	assert.Equal(t, first, second)
}

func TestHandler_Execute_RemoteRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/server/hub/elec_price/", r.URL.Path)
		assert.Equal(t, "上海市-杨浦区", r.URL.Query().Get("city"))
		assert.Equal(t, "2", r.URL.Query().Get("type"))
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":200,"message":"ok","res":{"city":"上海市-杨浦区","elec_price":0.4155}}`))
	}))
	defer server.Close()

	handler := createRemoteHandler(t, server.URL+"/server")
	result := handler.Execute(context.Background(), &Input{Query: "查询上海市杨浦区的上网电价"})

	assert.True(t, result.Success)
	assert.Equal(t, "查询成功：上海市-杨浦区的上网电价为0.4155元/千瓦时。", result.Message)
	assert.NotNil(t, result.RawResponse)
}

func TestHandler_Execute_IndustrialUsesRawCity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hub/industrial_commercial_elec_price/", r.URL.Path)
		assert.Equal(t, "上海市杨浦区", r.URL.Query().Get("city"))
		assert.Empty(t, r.URL.Query().Get("type"))
		w.Write([]byte(`{"code":0,"message":"查询成功","res":{"city":"上海市杨浦区","weighted_avg_price":"0.6100"}}`))
	}))
	defer server.Close()

	handler := createRemoteHandler(t, server.URL)
	assert.Equal(t, "查询成功：上海市杨浦区的工商加权电价为0.6100元/千瓦时。", handler.Run(context.Background(), "上海市杨浦区工商电价"))
}

// ==========================
// Failure Tests
// ==========================

func TestHandler_Execute_ExtractionFailuresSkipNetwork(t *testing.T) {
	backend := httpc.NewMockBackend(mockResponse)
	handler := NewHandlerWithBackend(createTestConfig(), backend, createTestLogger(t))
	ctx := context.Background()

	result := handler.Execute(ctx, &Input{Query: "今天电价多少"})
	assert.False(t, result.Success)
	assert.Equal(t, "电价查询失败：无法从查询中识别出城市信息，请提供具体的城市名称。", result.Message)
	assert.Equal(t, string(apperrors.ErrCodeExtractionFailed), result.ErrorCode)

	result = handler.Execute(ctx, &Input{Query: "上海市的电价"})
	assert.Equal(t, "电价查询失败：无法从查询中识别出电价类型，请指定查询脱硫煤电价、上网电价或工商加权电价。", result.Message)

	assert.Empty(t, backend.Calls())
}

func TestHandler_Execute_RemoteFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr apperrors.ErrorCode
	}{
		{
			name:    "business code carries message",
			status:  http.StatusOK,
			body:    `{"code":400,"message":"城市不存在"}`,
			want:    "电价查询失败：城市不存在",
			wantErr: apperrors.ErrCodeRemoteCallFailed,
		},
		{
			name:    "business code without message",
			status:  http.StatusOK,
			body:    `{"code":-1}`,
			want:    "电价查询失败：未知错误",
			wantErr: apperrors.ErrCodeRemoteCallFailed,
		},
		{
			name:    "success without res",
			status:  http.StatusOK,
			body:    `{"code":0,"message":"查询成功"}`,
			want:    "电价查询失败：返回数据格式错误",
			wantErr: apperrors.ErrCodeFormatFailed,
		},
		{
			name:    "success without price",
			status:  http.StatusOK,
			body:    `{"code":0,"res":{"city":"上海市-杨浦区"}}`,
			want:    "电价查询失败：未找到上网电价数据",
			wantErr: apperrors.ErrCodeFormatFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			handler := createRemoteHandler(t, server.URL)
			result := handler.Execute(context.Background(), &Input{Query: "查询上海市杨浦区的上网电价"})

			assert.False(t, result.Success)
			assert.Equal(t, tt.want, result.Message)
			assert.Equal(t, string(tt.wantErr), result.ErrorCode)
		})
	}
}

func TestHandler_Execute_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	handler := createRemoteHandler(t, server.URL)
	msg := handler.Run(context.Background(), "查询上海市杨浦区的上网电价")

	assert.True(t, tools.IsFailure(msg, FailurePrefix))
	assert.Contains(t, msg, "电价查询失败：API请求失败: 500 Internal Server Error")
}

func TestNewHandler_RequiresTokenWithoutMock(t *testing.T) {
	config := createTestConfig()
	config.UseMock = false
	config.AuthorizationToken = ""

	handler, err := NewHandler(config, createTestLogger(t))
	assert.Nil(t, handler)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigurationMissing))
}
