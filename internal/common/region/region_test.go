package region

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCity(t *testing.T) {
	combined := regexp.MustCompile(`(安徽淮南|河南开封|广东深圳|江苏苏州)`)
	withCombined := append(append([]*regexp.Regexp{}, StandardPatterns...), combined)

	tests := []struct {
		name     string
		query    string
		patterns []*regexp.Regexp
		want     string
	}{
		{"city and district", "上海市杨浦区的上网电价", StandardPatterns, "上海市杨浦区"},
		{"hyphenated multi level stays whole", "查询安徽省-淮南市的工商业电价", StandardPatterns, "安徽省-淮南市"},
		{"bare city", "开封市有效发电小时数是多少", StandardPatterns, "开封市"},
		{"autonomous region", "查询宁夏回族自治区的发电小时数", StandardPatterns, "宁夏回族自治区"},
		{"combined abbreviation only with extra pattern", "安徽淮南的脱硫煤电价", withCombined, "安徽淮南"},
		{"combined abbreviation ignored by default", "安徽淮南的脱硫煤电价", StandardPatterns, ""},
		{"nothing", "今天天气怎么样", StandardPatterns, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCity(tt.query, tt.patterns))
		})
	}
}

func TestLongest(t *testing.T) {
	assert.Equal(t, "", Longest(nil))
	assert.Equal(t, "河南省开封市", Longest([]string{"开封市", "河南省开封市", "郑州市"}))
	assert.Equal(t, "开封市", Longest([]string{"开封市", "郑州市"}), "ties keep the earliest")
}

func TestFirstPatternLongest_FirstPatternWins(t *testing.T) {
	cityOnly := regexp.MustCompile(`([^的在查询\s]+市)`)
	district := regexp.MustCompile(`([^的在查询\s]+区)`)

	got := FirstPatternLongest("北京市朝阳区", []*regexp.Regexp{cityOnly, district})
	assert.Equal(t, "北京市", got)
}

func TestFindMunicipality(t *testing.T) {
	assert.Equal(t, "上海", FindMunicipality("上海市浦东新区光伏可开放容量", true, "市"))
	assert.Equal(t, "北京", FindMunicipality("查询北京的政策", true, "市", "的", "范围"))
	assert.Equal(t, "", FindMunicipality("北京大学附近", true, "市"))
	assert.Equal(t, "重庆", FindMunicipality("去重庆", true, "市"))
	assert.Equal(t, "", FindMunicipality("去重庆", false, "市"))

	assert.Equal(t, []string{"北京", "天津"}, FindAllMunicipalities("北京市和天津范围", false, "市", "范围"))
}

func TestRuneSlice(t *testing.T) {
	assert.Equal(t, "淮南", RuneSlice("安徽淮南", 2, -1))
	assert.Equal(t, "", RuneSlice("安徽", 5, -1))
	assert.Equal(t, "安徽", RuneSlice("安徽淮南", 0, 2))
}
