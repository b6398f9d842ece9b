// internal/tools/pv-capacity/models.go
package pvcapacity

type Input struct {
	Query string `json:"query"`
}

// Params is the administrative location of a capacity query, coarsest first.
type Params struct {
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`
	County   string `json:"county,omitempty"`
}

// Empty reports whether no location level was found.
func (p Params) Empty() bool {
	return p.Province == "" && p.City == "" && p.District == "" && p.County == ""
}

// Levels returns the non-empty levels in order.
func (p Params) Levels() []string {
	var out []string
	for _, v := range []string{p.Province, p.City, p.District, p.County} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
