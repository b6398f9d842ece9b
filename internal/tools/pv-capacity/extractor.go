// internal/tools/pv-capacity/extractor.go
package pvcapacity

import (
	"regexp"
	"strings"

	"pv-query-router/internal/common/region"
)

var provincePatterns = []*regexp.Regexp{
	regexp.MustCompile(`([^的在查询\s]+省)`),
	regexp.MustCompile(`([^的在查询\s]+自治区)`),
	regexp.MustCompile(`([^的在查询\s]+特别行政区)`),
}

// abbreviatedProvinces are recognized when written without 省 and directly
// followed by a city name.
var abbreviatedProvinces = []string{"河南", "安徽", "广东", "江苏", "浙江", "山东", "湖北", "湖南", "四川", "福建"}

var abbreviatedPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(abbreviatedProvinces))
	for i, p := range abbreviatedProvinces {
		out[i] = regexp.MustCompile(`(` + p + `)([^的在查询\s]*)`)
	}
	return out
}()

var cityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([^的在查询\s]+市)`),
	regexp.MustCompile(`([^的在查询\s]+地区)`),
	regexp.MustCompile(`([^的在查询\s]+州)`),
	regexp.MustCompile(`([^的在查询\s]+盟)`),
}

var districtPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([^的在查询\s]+区)`),
	regexp.MustCompile(`([^的在查询\s]+县)`),
	regexp.MustCompile(`([^的在查询\s]+市辖区)`),
}

var countyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`([^的在查询\s]+乡)`),
	regexp.MustCompile(`([^的在查询\s]+镇)`),
	regexp.MustCompile(`([^的在查询\s]+街道)`),
	regexp.MustCompile(`([^的在查询\s]+办事处)`),
}

// Extract fills each location level independently. Each level takes the
// first pattern that matches; city and district skip a candidate equal to the
// level above.
func Extract(query string) Params {
	var p Params

	p.Province = extractProvince(query)
	if p.Province == "" {
		p.Province, p.City = extractAbbreviated(query)
	}

	if city := longestExcluding(query, cityPatterns, p.Province); city != "" {
		p.City = city
	}
	p.District = longestExcluding(query, districtPatterns, p.City)
	p.County = region.FirstPatternLongest(query, countyPatterns)
	return p
}

func extractProvince(query string) string {
	for _, re := range provincePatterns {
		if matches := region.FindAll(re, query); len(matches) > 0 {
			return matches[0]
		}
	}
	if m := region.FindMunicipality(query, true, "市"); m != "" {
		return m + "市"
	}
	return ""
}

// extractAbbreviated reads "河南开封" as province 河南省, city 开封市.
func extractAbbreviated(query string) (string, string) {
	for _, re := range abbreviatedPatterns {
		m := re.FindStringSubmatch(query)
		if m == nil || m[2] == "" {
			continue
		}
		city := m[2]
		if !strings.HasSuffix(city, "市") {
			city += "市"
		}
		return m[1] + "省", city
	}
	return "", ""
}

// longestExcluding applies the first pattern that matches at all and returns
// its longest match other than exclude. Later patterns are not tried even
// when every match equals exclude.
func longestExcluding(query string, patterns []*regexp.Regexp, exclude string) string {
	for _, re := range patterns {
		matches := region.FindAll(re, query)
		if len(matches) == 0 {
			continue
		}
		var candidates []string
		for _, m := range matches {
			if m != exclude {
				candidates = append(candidates, m)
			}
		}
		return region.Longest(candidates)
	}
	return ""
}
