// internal/tools/business-knowledge/models.go
package businessknowledge

import (
	"encoding/json"

	"pv-query-router/internal/models"
)

type Input struct {
	Query string `json:"query"`
}

// Params carries the free text matched against the corpus; this domain has no
// structured parameters.
type Params struct {
	Text string `json:"text"`
}

// Match is the selected FAQ entry and its score.
type Match struct {
	Entry models.FAQEntry `json:"entry"`
	Score float64         `json:"score"`
}

// knowledgePage is the "data" body of one corpus page.
type knowledgePage struct {
	Next    json.RawMessage   `json:"next"`
	Results []models.FAQEntry `json:"results"`
}

// hasNext treats a missing, null or false "next" as the last page. The
// service sends either a boolean or a URL.
func (p knowledgePage) hasNext() bool {
	var b bool
	if err := json.Unmarshal(p.Next, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(p.Next, &s); err == nil {
		return s != ""
	}
	return false
}
