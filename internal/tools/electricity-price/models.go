// internal/tools/electricity-price/models.go
package electricityprice

type Input struct {
	Query string `json:"query"`
}

// PriceType is the kind of tariff asked for.
type PriceType string

const (
	PriceTypeDesulfurizedCoal     PriceType = "脱硫煤电价"
	PriceTypeFeedIn               PriceType = "上网电价"
	PriceTypeIndustrialCommercial PriceType = "工商加权电价"
)

// Params is what Extract finds in a query. Empty fields were not found.
type Params struct {
	City      string    `json:"city"`
	PriceType PriceType `json:"priceType"`
}

// TypeParam is the "type" query parameter of the price endpoint.
func (p PriceType) TypeParam() string {
	if p == PriceTypeDesulfurizedCoal {
		return "1"
	}
	return "2"
}
