// internal/tools/generation-duration/extractor.go
package generationduration

import "pv-query-router/internal/common/region"

// Extract finds the most specific region named in query.
func Extract(query string) Params {
	return Params{City: region.ExtractCity(query, region.StandardPatterns)}
}
