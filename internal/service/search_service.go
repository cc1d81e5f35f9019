package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"qa-board-go/internal/model"
	"qa-board-go/pkg/log"
	"regexp"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchService 接口定义了问题全文搜索。
type SearchService interface {
	Search(ctx context.Context, id Identity, query, category string, limit int) ([]model.QuestionHit, error)
}

type searchService struct {
	esClient  *elasticsearch.Client
	indexName string
}

// NewSearchService 创建一个新的 SearchService 实例。esClient 为 nil 时搜索返回 ErrSearchUnavailable。
func NewSearchService(esClient *elasticsearch.Client, indexName string) SearchService {
	return &searchService{esClient: esClient, indexName: indexName}
}

var (
	reKeep  = regexp.MustCompile(`[^\p{Han}\p{Hiragana}\p{Katakana}ーa-z0-9\s]+`)
	reSpace = regexp.MustCompile(`\s+`)
)

// Search 在问题内容上执行全文搜索，category 非空时只在该分类中搜索。
func (s *searchService) Search(ctx context.Context, id Identity, query, category string, limit int) ([]model.QuestionHit, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if s.esClient == nil {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrValidation)
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	normalized, phrase := normalizeQuery(query)
	if normalized != query {
		log.Infof("[SearchService] 规范化查询: '%s' -> '%s'", query, normalized)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildSearchQuery(normalized, phrase, category, limit)); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.indexName),
		s.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		log.Errorf("[SearchService] 向 Elasticsearch 发送搜索请求失败: %v", err)
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[SearchService] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.QuestionDocument `json:"_source"`
				Score  float64                `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.QuestionHit, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, model.QuestionHit{
			ID:            hit.Source.QuestionID,
			Content:       hit.Source.Content,
			Category:      hit.Source.Category,
			StudentNumber: hit.Source.StudentNumber,
			CreatedAt:     model.LocalTime(hit.Source.CreatedAt),
			Score:         hit.Score,
		})
	}
	log.Infof("[SearchService] 搜索完成, query: '%s', 命中 %d 条", query, len(results))
	return results, nil
}

func buildSearchQuery(normalized, phrase, category string, limit int) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"must": map[string]interface{}{
			"match": map[string]interface{}{
				"content": normalized,
			},
		},
	}
	if phrase != "" {
		boolQuery["should"] = []map[string]interface{}{
			{
				"match_phrase": map[string]interface{}{
					"content": map[string]interface{}{
						"query": phrase,
						"boost": 3.0,
					},
				},
			},
		}
	}
	if category != "" {
		boolQuery["filter"] = map[string]interface{}{
			"term": map[string]interface{}{"category": category},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
		"size":    limit,
		"timeout": (5 * time.Second).String(),
	}
}

// normalizeQuery 去掉常见的疑问语气词并返回规范化查询与核心短语。
func normalizeQuery(q string) (string, string) {
	lower := strings.ToLower(q)
	stopPhrases := []string{"とは何ですか", "とは", "って何", "ですか", "教えてください", "教えて", "について", "？", "?"}
	for _, sp := range stopPhrases {
		lower = strings.ReplaceAll(lower, sp, " ")
	}
	kept := reKeep.ReplaceAllString(lower, " ")
	kept = strings.TrimSpace(reSpace.ReplaceAllString(kept, " "))
	if kept == "" {
		return q, ""
	}
	return kept, kept
}
