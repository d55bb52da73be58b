// Package service 提供了搜索相关的业务逻辑。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"contract-risk-go/internal/config"
	"contract-risk-go/internal/model"
	"contract-risk-go/internal/repository"
	"contract-risk-go/pkg/embedding"
	"contract-risk-go/pkg/log"
)

// SearchService 接口定义了条款检索操作。
type SearchService interface {
	// SearchClauses 在历史条款上执行向量 + BM25 混合检索，
	// clauseType 为空时不按类别过滤。
	SearchClauses(ctx context.Context, query string, clauseType model.ClauseType, topK int, userID uint) ([]model.ClauseSearchDTO, error)
}

type searchService struct {
	embeddingClient embedding.Client
	esClient        *elasticsearch.Client
	esCfg           config.ElasticsearchConfig
	docRepo         repository.DocumentRepository
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(embeddingClient embedding.Client, esClient *elasticsearch.Client, esCfg config.ElasticsearchConfig, docRepo repository.DocumentRepository) SearchService {
	return &searchService{
		embeddingClient: embeddingClient,
		esClient:        esClient,
		esCfg:           esCfg,
		docRepo:         docRepo,
	}
}

// SearchClauses 执行两阶段混合检索：kNN 召回 + BM25 rescore。
func (s *searchService) SearchClauses(ctx context.Context, query string, clauseType model.ClauseType, topK int, userID uint) ([]model.ClauseSearchDTO, error) {
	log.Infof("[SearchService] 开始条款检索, query: '%s', clauseType: '%s', topK: %d", query, clauseType, topK)
	if topK <= 0 {
		topK = 10
	}

	// 1. 向量化查询
	queryVector, err := s.embeddingClient.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}

	// 2. 构建混合检索查询
	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"user_id": userID}},
	}
	if clauseType != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"clause_type": string(clauseType)},
		})
	}

	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   queryVector,
			"k":              topK * 30,
			"num_candidates": topK * 30,
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"match": map[string]interface{}{
						"text_content": query,
					},
				},
				"filter": filters,
			},
		},
		"rescore": map[string]interface{}{
			"window_size": topK * 30,
			"query": map[string]interface{}{
				"rescore_query": map[string]interface{}{
					"match": map[string]interface{}{
						"text_content": map[string]interface{}{
							"query":    query,
							"operator": "and",
						},
					},
				},
				"query_weight":         0.2, // 保留部分 k-NN 分数
				"rescore_query_weight": 1.0, // BM25 分数权重
			},
		},
		"size": topK,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	// 3. 执行检索
	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.esCfg.IndexName),
		s.esClient.Search.WithBody(&buf),
		s.esClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[SearchService] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	// 4. 解析结果
	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.EsClause `json:"_source"`
				Score  float64        `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	if len(esResponse.Hits.Hits) == 0 {
		return []model.ClauseSearchDTO{}, nil
	}

	// 5. 批量补全文件名
	uniqueIDs := make(map[uint]struct{})
	for _, hit := range esResponse.Hits.Hits {
		uniqueIDs[hit.Source.DocumentID] = struct{}{}
	}
	idList := make([]uint, 0, len(uniqueIDs))
	for id := range uniqueIDs {
		idList = append(idList, id)
	}

	docs, err := s.docRepo.FindBatchByIDs(idList)
	if err != nil {
		return nil, fmt.Errorf("批量查询文档信息失败: %w", err)
	}
	filenameByID := make(map[uint]string, len(docs))
	for _, doc := range docs {
		filenameByID[doc.ID] = doc.Filename
	}

	// 6. 组装响应
	results := make([]model.ClauseSearchDTO, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		filename := filenameByID[hit.Source.DocumentID]
		if filename == "" {
			log.Warnf("[SearchService] 未找到 DocumentID %d 对应的文件名", hit.Source.DocumentID)
			filename = "unknown"
		}
		results = append(results, model.ClauseSearchDTO{
			DocumentID:  hit.Source.DocumentID,
			Filename:    filename,
			ChunkIndex:  hit.Source.ChunkIndex,
			TextContent: hit.Source.TextContent,
			ClauseType:  hit.Source.ClauseType,
			RiskScore:   hit.Source.RiskScore,
			Score:       hit.Score,
		})
	}

	log.Infof("[SearchService] 条款检索完成, 返回 %d 条结果", len(results))
	return results, nil
}
