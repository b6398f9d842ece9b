// internal/tools/business-knowledge/source.go
package businessknowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	apperrors "pv-query-router/internal/common/errors"
	"pv-query-router/internal/common/database"
	httpc "pv-query-router/internal/common/http"
	"pv-query-router/internal/models"
)

// Source yields the FAQ corpus a page at a time, reading at most maxPages.
// Entries fetched before a failing page are returned along with the error.
type Source interface {
	Fetch(ctx context.Context, maxPages int) ([]models.FAQEntry, error)
}

// APISource pages through the knowledge endpoint of the domain API. It stops
// at the first empty page or when the service reports no next page.
type APISource struct {
	backend  httpc.Backend
	path     string
	pageSize int
}

func NewAPISource(backend httpc.Backend, path string, pageSize int) *APISource {
	return &APISource{backend: backend, path: path, pageSize: pageSize}
}

func (s *APISource) Fetch(ctx context.Context, maxPages int) ([]models.FAQEntry, error) {
	var entries []models.FAQEntry
	for page := 1; page <= maxPages; page++ {
		env, err := s.backend.Get(ctx, s.path, url.Values{
			"page":      {strconv.Itoa(page)},
			"page_size": {strconv.Itoa(s.pageSize)},
		})
		if err != nil {
			return entries, err
		}
		if err := env.Err(s.path); err != nil {
			return entries, err
		}

		var data knowledgePage
		if !env.Decode("data", &data) {
			return entries, apperrors.NewFormatFailedError("返回数据格式错误")
		}
		if len(data.Results) == 0 {
			break
		}
		entries = append(entries, data.Results...)
		if !data.hasNext() {
			break
		}
	}
	return entries, nil
}

// Searcher is the part of the Elasticsearch client a corpus source needs.
type Searcher interface {
	Search(ctx context.Context, index string, query map[string]interface{}, from, size int) (*database.SearchResult, error)
}

// ElasticsearchSource reads the corpus from an index holding one document per
// FAQ entry, ordered by id.
type ElasticsearchSource struct {
	client   Searcher
	index    string
	pageSize int
}

func NewElasticsearchSource(client Searcher, index string, pageSize int) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, index: index, pageSize: pageSize}
}

func (s *ElasticsearchSource) Fetch(ctx context.Context, maxPages int) ([]models.FAQEntry, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []interface{}{map[string]interface{}{"id": "asc"}},
	}

	var entries []models.FAQEntry
	for page := 0; page < maxPages; page++ {
		res, err := s.client.Search(ctx, s.index, query, page*s.pageSize, s.pageSize)
		if err != nil {
			return entries, apperrors.NewRemoteCallFailedError(s.index, fmt.Sprintf("知识库索引查询失败: %v", err))
		}
		for _, src := range res.Sources {
			var entry models.FAQEntry
			if err := json.Unmarshal(src, &entry); err != nil {
				return entries, apperrors.NewFormatFailedError("知识库文档格式错误")
			}
			entries = append(entries, entry)
		}
		if len(res.Sources) < s.pageSize || len(entries) >= res.Total {
			break
		}
	}
	return entries, nil
}
