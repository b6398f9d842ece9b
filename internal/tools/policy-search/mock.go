// internal/tools/policy-search/mock.go
package policysearch

import (
	"fmt"
	"net/url"
)

func mockResponse(path string, _ url.Values) (interface{}, error) {
	if path != SearchPath {
		return nil, fmt.Errorf("no mock for %s", path)
	}
	return map[string]interface{}{
		"code":    0,
		"message": "查询成功",
		"data": map[string]interface{}{
			"topic_list": []string{"并网接入政策", "分布式光伏发展规划", "户用光伏补贴政策"},
			"categories": []string{"国家政策", "地方政策", "技术标准"},
			"content": []map[string]interface{}{
				{
					"title":        "关于进一步支持分布式光伏发展的通知",
					"region":       "全国",
					"topic":        "并网接入",
					"station_mode": "户用/屋顶",
					"network_mode": "全额上网",
					"summary":      "支持户用屋顶光伏项目全额上网模式，简化并网流程。",
				},
				{
					"title":        "分布式光伏发电项目管理办法",
					"region":       "全国",
					"topic":        "建设规划",
					"station_mode": "工商业/屋顶",
					"network_mode": "自发自用",
					"summary":      "规范工商业屋顶光伏项目建设和运营管理。",
				},
			},
			"total_count": 2,
			"page":        1,
			"page_size":   10,
		},
	}, nil
}
