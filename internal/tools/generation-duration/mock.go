// internal/tools/generation-duration/mock.go
package generationduration

import (
	"fmt"
	"net/url"
)

func mockResponse(path string, _ url.Values) (interface{}, error) {
	if path != DurationPath {
		return nil, fmt.Errorf("no mock for %s", path)
	}
	return map[string]interface{}{
		"code":    0,
		"message": "",
		"res":     1065.08,
	}, nil
}
