// internal/tools/business-knowledge/mock.go
package businessknowledge

import (
	"fmt"
	"net/url"
)

var mockEntries = []map[string]interface{}{
	{
		"id":          1,
		"question":    "你们全额上网项目投资吗？",
		"answer":      "全额上网项目暂时不投资。我们主要是做分布式电站投资的，自发自用可以做，我们核心看一个项目主要是看收益率能不能过，需要你提供下具体的资料，然后我们这边做一个初步的评估。",
		"create_time": "2025-07-29 14:10:45",
		"update_time": "2025-07-29 14:10:45",
	},
	{
		"id":          2,
		"question":    "你们地面项目投资吗？",
		"answer":      "我们主要做分布式光伏电站投资,无论是工商业屋顶还是地面,核心取决于收益率的问题。如果地面项目收益率能达到我们的要求,我们也会考虑投资。需要您提供具体的项目资料,我们会进行专业的收益率评估。",
		"create_time": "2025-07-29 14:15:30",
		"update_time": "2025-07-29 14:15:30",
	},
	{
		"id":          3,
		"question":    "投资门槛是多少？",
		"answer":      "我们的投资门槛主要看项目规模和收益率。一般来说，项目装机容量在100kW以上，预期年化收益率在8%以上的项目我们会重点考虑。具体还需要综合评估项目的技术方案、用电负荷、屋顶条件等因素。",
		"create_time": "2025-07-29 14:20:15",
		"update_time": "2025-07-29 14:20:15",
	},
	{
		"id":          4,
		"question":    "合作模式是什么？",
		"answer":      "我们主要采用三种合作模式：1）全额投资模式：我们承担全部投资，客户提供屋顶，按约定比例分享收益；2）合作投资模式：双方共同投资，按投资比例分享收益；3）EPC+投资模式：我们提供设计施工和部分投资。具体模式可根据项目情况灵活调整。",
		"create_time": "2025-07-29 14:25:00",
		"update_time": "2025-07-29 14:25:00",
	},
	{
		"id":          5,
		"question":    "项目建设周期多长？",
		"answer":      "一般的分布式光伏项目建设周期在1-3个月，具体取决于项目规模和复杂程度。100kW以下的小型项目通常1个月内完成，100kW-1MW的中型项目需要1-2个月，1MW以上的大型项目可能需要2-3个月。我们会根据项目实际情况制定详细的建设计划。",
		"create_time": "2025-07-29 14:30:45",
		"update_time": "2025-07-29 14:30:45",
	},
}

// mockResponse serves the sample corpus on page 1 and empty pages after it.
func mockResponse(path string, params url.Values) (interface{}, error) {
	if path != KnowledgePath {
		return nil, fmt.Errorf("no mock for %s", path)
	}
	results := []map[string]interface{}{}
	if params.Get("page") == "1" {
		results = mockEntries
	}
	return map[string]interface{}{
		"code": 200,
		"data": map[string]interface{}{
			"page":      params.Get("page"),
			"page_size": params.Get("page_size"),
			"count":     len(mockEntries),
			"next":      true,
			"previous":  nil,
			"results":   results,
		},
	}, nil
}
