// internal/tools/electricity-price/extractor.go
package electricityprice

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"pv-query-router/internal/common/region"
)

// combinedCity matches province+city abbreviations written without suffixes.
var combinedCity = regexp.MustCompile(`(安徽淮南|河南开封|广东深圳|江苏苏州)`)

var cityPatterns = append(append([]*regexp.Regexp{}, region.StandardPatterns...), combinedCity)

// provinceExpansions maps a two-rune province prefix to its full name, in
// lookup order.
var provinceExpansions = []struct {
	prefix, province string
}{
	{"安徽", "安徽省"},
	{"河南", "河南省"},
	{"广东", "广东省"},
	{"江苏", "江苏省"},
}

// priceTypeKeywords is checked in order; the first hit wins.
var priceTypeKeywords = []struct {
	keywords  []string
	priceType PriceType
}{
	{[]string{"脱硫煤电价", "脱硫煤"}, PriceTypeDesulfurizedCoal},
	{[]string{"上网电价", "上网"}, PriceTypeFeedIn},
	{[]string{"工商", "工商业", "工商加权"}, PriceTypeIndustrialCommercial},
}

var (
	cityDistrict = regexp.MustCompile(`(市)([^-\s]+(?:区|县))`)
	nestedRegion = regexp.MustCompile(`(省|市)([^-\s]+(?:市|区|县))`)
)

// Extract parses the city and price type of query.
func Extract(query string) Params {
	return Params{
		City:      expandProvince(region.ExtractCity(query, cityPatterns)),
		PriceType: extractPriceType(query),
	}
}

// expandProvince turns "安徽淮南" into "安徽省-淮南市".
func expandProvince(city string) string {
	if utf8.RuneCountInString(city) < 4 || strings.Contains(city, "省") || strings.Contains(city, "市") {
		return city
	}
	for _, e := range provinceExpansions {
		if strings.HasPrefix(city, e.prefix) {
			return e.province + "-" + region.RuneSlice(city, 2, -1) + "市"
		}
	}
	return city
}

func extractPriceType(query string) PriceType {
	for _, entry := range priceTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(query, kw) {
				return entry.priceType
			}
		}
	}
	return ""
}

// FormatCity inserts hyphens between nested regions, e.g. 上海市杨浦区 becomes
// 上海市-杨浦区.
func FormatCity(city string) string {
	if city == "" {
		return city
	}
	formatted := cityDistrict.ReplaceAllString(city, "${1}-${2}")
	return nestedRegion.ReplaceAllString(formatted, "${1}-${2}")
}
