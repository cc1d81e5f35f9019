package main

import (
	"context"
	"qa-board-go/internal/config"
	"qa-board-go/internal/pipeline"
	"qa-board-go/internal/repository"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/kafka"
	"qa-board-go/pkg/log"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redis/v8"
)

// newIndexPublisher 组装问题索引管道，返回的 cleanup 在退出时调用。
//   - 没有 ES：不索引，Kafka 配置被忽略（本进程没有消费者处理这些任务）
//   - 只有 ES：同步写入
//   - ES + Kafka：投递到 Kafka，由本进程的消费者写入 ES
func newIndexPublisher(ctx context.Context, cfg config.Config, esClient *elasticsearch.Client, questionRepo repository.QuestionRepository, rdb *redis.Client) (service.IndexPublisher, func()) {
	noop := func() {}
	if esClient == nil {
		if strings.TrimSpace(cfg.Kafka.Brokers) != "" {
			log.Warnf("未启用 Elasticsearch, 忽略 Kafka 配置, 新问题不会被索引")
		}
		return nil, noop
	}

	processor := pipeline.NewProcessor(esClient, cfg.Elasticsearch.IndexName, questionRepo)
	producer := kafka.NewProducer(cfg.Kafka)
	if producer == nil {
		return processor, noop
	}
	if consumer := kafka.NewConsumer(cfg.Kafka, processor, rdb); consumer != nil {
		go consumer.Run(ctx)
	}
	return producer, func() {
		if err := producer.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}
}
