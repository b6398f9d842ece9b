// internal/tools/business-knowledge/matcher.go
package businessknowledge

import (
	"pv-query-router/internal/common/textsim"
	"pv-query-router/internal/models"
)

// Matcher selects the FAQ entry whose question is most similar to a query.
type Matcher struct {
	Threshold float64
}

func NewMatcher(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold}
}

// BestMatch scores every entry with textsim.Similarity. An entry qualifies
// at or above the threshold; ties keep the earliest entry.
func (m *Matcher) BestMatch(query string, entries []models.FAQEntry) (*models.FAQEntry, float64, bool) {
	bestIdx := -1
	bestScore := 0.0
	for i := range entries {
		score := textsim.Similarity(query, entries[i].Question)
		if score >= m.Threshold && score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 {
		return nil, 0, false
	}
	entry := entries[bestIdx]
	return &entry, bestScore, true
}
