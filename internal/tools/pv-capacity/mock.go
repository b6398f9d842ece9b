// internal/tools/pv-capacity/mock.go
package pvcapacity

import (
	"fmt"
	"net/url"
)

func mockResponse(path string, _ url.Values) (interface{}, error) {
	if path != CapacityPath {
		return nil, fmt.Errorf("no mock for %s", path)
	}
	return map[string]interface{}{
		"code":    0,
		"message": "查询成功",
		"data": map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"province":         "河南省",
					"city":             "开封市",
					"district":         "禹王台区",
					"county":           "官坊街道",
					"color":            "红",
					"jdkkf":            "1.5",
					"transformer_name": "10kv王13板芦花岗6号台变",
				},
			},
			"pv_summary": map[string]interface{}{
				"province": "河南省",
				"city":     "开封市",
				"district": "禹王台区",
				"county":   "官坊街道",
				"color":    "绿",
				"jdkkf":    "3.2",
			},
			"total_count": 1,
			"page":        1,
			"page_size":   10,
		},
	}, nil
}
