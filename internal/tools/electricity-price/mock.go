// internal/tools/electricity-price/mock.go
package electricityprice

import (
	"fmt"
	"net/url"
	"strings"
)

// Mock fixtures are keyed on the unhyphenated city, so a lookup matches the
// extracted name whether or not FormatCity was applied to the parameter.
var (
	mockFeedInPrices = map[string]string{
		"上海市杨浦区": "0.4155",
	}
	mockIndustrial = map[string]map[string]interface{}{
		"淮南市": {
			"city":               "安徽省-淮南市",
			"start_year":         2024,
			"start_month":        "08",
			"end_year":           2025,
			"end_month":          "07",
			"select_year":        2025,
			"select_month":       7,
			"weighted_avg_price": "0.5731",
			"on_weighted_average_electricity_price_explain": "",
		},
	}
)

func rawCity(city string) string {
	return strings.ReplaceAll(city, "-", "")
}

func mockResponse(path string, params url.Values) (interface{}, error) {
	city := params.Get("city")
	key := rawCity(city)
	switch path {
	case PricePath:
		price := "0.3500"
		if params.Get("type") == PriceTypeFeedIn.TypeParam() {
			for name, p := range mockFeedInPrices {
				if strings.Contains(key, name) {
					price = p
				}
			}
		}
		return envelope(map[string]interface{}{
			"city":       city,
			"elec_price": price,
		}), nil
	case IndustrialPricePath:
		for name, res := range mockIndustrial {
			if strings.Contains(key, name) {
				return envelope(res), nil
			}
		}
		return envelope(map[string]interface{}{
			"city":               city,
			"weighted_avg_price": "0.5000",
		}), nil
	default:
		return nil, fmt.Errorf("no mock for %s", path)
	}
}

func envelope(res map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"code":    0,
		"message": "查询成功",
		"res":     res,
	}
}
