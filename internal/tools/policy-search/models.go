// internal/tools/policy-search/models.go
package policysearch

type Input struct {
	Query string `json:"query"`
}

// Params are the search conditions found in a query. Region is left empty
// when the query asks for nationwide policies.
type Params struct {
	Region          string `json:"region,omitempty"`
	IsCountrywide   bool   `json:"isCountrywide"`
	Topic           string `json:"topic,omitempty"`
	ElecStationMode string `json:"elecStationMode,omitempty"`
	NetworkMode     string `json:"networkMode,omitempty"`
	Capacity        string `json:"capacity,omitempty"`
}

// Empty reports whether no search condition was found.
func (p Params) Empty() bool {
	return p.Region == "" && !p.IsCountrywide && p.Topic == "" &&
		p.ElecStationMode == "" && p.NetworkMode == "" && p.Capacity == ""
}
