// internal/tools/policy-search/extractor.go
package policysearch

import (
	"regexp"
	"strings"

	"pv-query-router/internal/common/region"
)

// nationwideMarkers flag a nationwide query; such a query has no region.
var nationwideMarkers = []string{"全国", "国家", "中央"}

var regionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([^的在查询\s]+省)`),
	regexp.MustCompile(`([^的在查询\s]+市)`),
	regexp.MustCompile(`([^的在查询\s]+区)`),
	regexp.MustCompile(`([^的在查询\s]+县)`),
	regexp.MustCompile(`([^的在查询\s]+自治区)`),
	regexp.MustCompile(`([^的在查询\s]+特别行政区)`),
}

type keywordCategory struct {
	name     string
	keywords []string
}

// The category tables below are ordered; for topic and network mode the first
// hit wins.
var topics = []keywordCategory{
	{"并网接入", []string{"并网", "接入", "入网", "上网"}},
	{"补贴政策", []string{"补贴", "补助", "奖励", "资助"}},
	{"税收优惠", []string{"税收", "税务", "减税", "免税", "优惠"}},
	{"建设规划", []string{"建设", "规划", "布局", "发展"}},
	{"技术标准", []string{"技术", "标准", "规范", "要求"}},
	{"环保要求", []string{"环保", "环境", "生态", "绿色"}},
	{"土地政策", []string{"土地", "用地", "征地", "租赁"}},
}

var stationModes = []keywordCategory{
	{"工商业", []string{"工商业", "商业", "工业", "企业"}},
	{"户用", []string{"户用", "家用", "住宅", "民用"}},
	{"屋顶", []string{"屋顶", "屋面", "楼顶"}},
	{"地面", []string{"地面", "地上", "集中式"}},
	{"分布式", []string{"分布式", "分散式"}},
}

var networkModes = []keywordCategory{
	{"全额上网", []string{"全额上网", "全部上网", "完全上网"}},
	{"自发自用", []string{"自发自用", "自用", "自发"}},
	{"余电上网", []string{"余电上网", "余量上网", "剩余上网"}},
	{"离网", []string{"离网", "独立", "孤网"}},
}

var capacityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:MW|兆瓦)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:KW|千瓦|kw)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:GW|吉瓦)`),
}

// Extract parses every search condition of query independently.
func Extract(query string) Params {
	countrywide := isCountrywide(query)
	p := Params{
		IsCountrywide:   countrywide,
		Topic:           firstCategory(query, topics),
		ElecStationMode: strings.Join(allCategories(query, stationModes), "/"),
		NetworkMode:     firstCategory(query, networkModes),
		Capacity:        extractCapacity(query),
	}
	if !countrywide {
		p.Region = extractRegion(query)
	}
	return p
}

func isCountrywide(query string) bool {
	for _, m := range nationwideMarkers {
		if strings.Contains(query, m) {
			return true
		}
	}
	return false
}

// extractRegion pools the matches of every pattern and takes the longest.
func extractRegion(query string) string {
	var candidates []string
	for _, re := range regionPatterns {
		candidates = append(candidates, region.FindAll(re, query)...)
	}
	candidates = append(candidates, region.FindAllMunicipalities(query, true, "市", "的", "范围")...)
	return region.Longest(candidates)
}

func firstCategory(query string, table []keywordCategory) string {
	for _, c := range table {
		if containsAny(query, c.keywords) {
			return c.name
		}
	}
	return ""
}

func allCategories(query string, table []keywordCategory) []string {
	var out []string
	for _, c := range table {
		if containsAny(query, c.keywords) {
			out = append(out, c.name)
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// extractCapacity returns the number of the first capacity figure; the unit
// is dropped.
func extractCapacity(query string) string {
	for _, re := range capacityPatterns {
		if m := re.FindStringSubmatch(query); m != nil {
			return m[1]
		}
	}
	return ""
}
