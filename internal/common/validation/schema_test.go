package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBytes_Envelope(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"success envelope", `{"code":0,"message":"ok","res":{"city":"上海市-杨浦区"}}`, true},
		{"null message", `{"code":200,"message":null,"data":{}}`, true},
		{"missing code is still an object", `{"message":"boom"}`, true},
		{"array body", `[1,2,3]`, false},
		{"code as object", `{"code":{"x":1}}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateBytes(EnvelopeSchema, []byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid, result.GetErrorMessages())
		})
	}
}

func TestValidateDocument_QueryRequest(t *testing.T) {
	result, err := ValidateDocument(QueryRequestSchema, map[string]interface{}{"query": "上海市杨浦区的上网电价"})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = ValidateDocument(QueryRequestSchema, map[string]interface{}{"session_id": "abc"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)

	result, err = ValidateDocument(QueryRequestSchema, map[string]interface{}{"query": ""})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidateDocument_InvalidSchema(t *testing.T) {
	_, err := ValidateDocument(`{"type": 12}`, map[string]interface{}{})
	assert.Error(t, err)
	assert.Error(t, CheckSchema(`{"type": 12}`))
	assert.NoError(t, CheckSchema(ToolInputSchema))
}

func TestValidateToolName(t *testing.T) {
	assert.NoError(t, ValidateToolName("query_electricity_price"))
	assert.NoError(t, ValidateToolName("query_business_knowledge_base"))
	assert.Error(t, ValidateToolName("QueryPolicies"))
	assert.Error(t, ValidateToolName("policies"))
}
