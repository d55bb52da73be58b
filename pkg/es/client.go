// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"contract-risk-go/internal/config"
	"contract-risk-go/internal/model"
	"contract-risk-go/pkg/log"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端
func InitES(esCfg config.ElasticsearchConfig, vectorDims int) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName, vectorDims)
}

// createIndexIfNotExists 检查条款索引是否存在，如果不存在则创建它
func createIndexIfNotExists(indexName string, vectorDims int) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	// 合同条款索引：英文分词 + 向量维度取自 embedding 配置，cosine 相似度
	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"clause_id": { "type": "keyword" },
				"document_id": { "type": "long" },
				"chunk_index": { "type": "integer" },
				"text_content": {
					"type": "text",
					"analyzer": "english"
				},
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"clause_type": { "type": "keyword" },
				"risk_score": { "type": "float" },
				"model_version": { "type": "keyword" },
				"user_id": { "type": "long" }
			}
		}
	}`, vectorDims)

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)

	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// Indexer 包装一个 Elasticsearch 客户端与目标索引名，供上层以依赖注入方式使用。
type Indexer struct {
	client    *elasticsearch.Client
	indexName string
}

// NewIndexer 创建一个新的 Indexer 实例。
func NewIndexer(client *elasticsearch.Client, indexName string) *Indexer {
	return &Indexer{client: client, indexName: indexName}
}

// IndexClause 将单个条款分块索引到 Elasticsearch。
func (i *Indexer) IndexClause(ctx context.Context, clause model.EsClause) error {
	docBytes, err := json.Marshal(clause)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: clause.ClauseID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引条款到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index clause")
	}

	return nil
}
