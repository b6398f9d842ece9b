// internal/models/query_types.go
package models

// ToolName identifies one domain tool.
type ToolName string

const (
	ToolElectricityPrice   ToolName = "query_electricity_price"
	ToolGenerationDuration ToolName = "query_power_generation_duration"
	ToolPVCapacity         ToolName = "query_photovoltaic_capacity"
	ToolPolicySearch       ToolName = "query_policies"
	ToolBusinessKnowledge  ToolName = "query_business_knowledge_base"
)

// AllTools lists the tools in routing-priority order.
var AllTools = []ToolName{
	ToolElectricityPrice,
	ToolGenerationDuration,
	ToolPVCapacity,
	ToolPolicySearch,
	ToolBusinessKnowledge,
}

// Query is one user question. SessionID is empty when the caller has none.
type Query struct {
	Text      string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// ToolResult is the outcome of one tool invocation. Message is the sentence
// shown to the user; RawResponse is the decoded remote body, if any.
// ErrorCode is set on failure only.
type ToolResult struct {
	Tool        ToolName    `json:"tool"`
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	RawResponse interface{} `json:"rawResponse,omitempty"`
	ErrorCode   string      `json:"errorCode,omitempty"`
}

// FAQEntry is one question/answer pair from the business knowledge corpus.
type FAQEntry struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	CreateTime string `json:"create_time,omitempty"`
	UpdateTime string `json:"update_time,omitempty"`
}
