// internal/dbagent/models.go
package dbagent

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Input struct {
	Question string `json:"question"`
}

// Answer is the outcome of one question. SQLQuery and RawResults are only set
// on success.
type Answer struct {
	Question   string                   `json:"question"`
	SQLQuery   string                   `json:"sql_query,omitempty"`
	RawResults []map[string]interface{} `json:"raw_results,omitempty"`
	Answer     string                   `json:"answer"`
	Status     string                   `json:"status"`
}

// DatabaseInfo lists "column (type)" entries per table.
type DatabaseInfo struct {
	Tables map[string][]string `json:"tables,omitempty"`
	Error  string              `json:"error,omitempty"`
	Status string              `json:"status"`
}
