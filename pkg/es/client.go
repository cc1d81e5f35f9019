// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"qa-board-go/internal/config"
	"qa-board-go/internal/model"
	"qa-board-go/pkg/log"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// questionMapping 使用内置的 cjk 分词器，日文内容不需要额外插件。
const questionMapping = `{
	"mappings": {
		"properties": {
			"question_id": { "type": "long" },
			"user_id": { "type": "long" },
			"student_number": { "type": "keyword" },
			"category": { "type": "keyword" },
			"content": { "type": "text", "analyzer": "cjk" },
			"created_at": { "type": "date" }
		}
	}
}`

// InitES 初始化 Elasticsearch 客户端并确保问题索引存在。
// 未配置地址时返回 nil 客户端，搜索功能随之关闭。
func InitES(esCfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	if esCfg.Addresses == "" {
		log.Info("未配置 Elasticsearch, 搜索功能已关闭")
		return nil, nil
	}
	client, err := NewClient(esCfg)
	if err != nil {
		return nil, err
	}
	if err := CreateIndexIfNotExists(context.Background(), client, esCfg.IndexName); err != nil {
		return nil, err
	}
	ESClient = client
	return client, nil
}

// NewClient 创建客户端但不访问集群。Addresses 以逗号分隔。
func NewClient(esCfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	var addrs []string
	for _, a := range strings.Split(esCfg.Addresses, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addrs,
		Username:  esCfg.Username,
		Password:  esCfg.Password,
	})
}

// CreateIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func CreateIndexIfNotExists(ctx context.Context, client *elasticsearch.Client, indexName string) error {
	res, err := client.Indices.Exists([]string{indexName}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = client.Indices.Create(
		indexName,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(questionMapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// IndexQuestion 以问题 ID 作为文档 ID 写入索引，重复写入会覆盖。
func IndexQuestion(ctx context.Context, client *elasticsearch.Client, indexName string, doc model.QuestionDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: strconv.FormatUint(uint64(doc.QuestionID), 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引问题到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index question")
	}
	return nil
}
