// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"qa-board-go/internal/config"
	"qa-board-go/pkg/log"
	"qa-board-go/pkg/tasks"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

// maxAttempts 是同一个任务失败后重试的上限。
const maxAttempts = 3

// defaultRetryBackoff 是第一次重试前的等待时间，之后按次数线性增加。
const defaultRetryBackoff = 2 * time.Second

// TaskProcessor defines the interface for any service that can process a task.
// This decouples the Kafka consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.QuestionIndexTask) error
}

// Producer 把问题索引任务写入 Kafka。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。Brokers 为空时返回 nil。
func NewProducer(cfg config.KafkaConfig) *Producer {
	brokers := splitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil
	}
	p := &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 5 * time.Second,
	}}
	log.Info("Kafka 生产者初始化成功")
	return p
}

// PublishQuestion 发送一个问题索引任务，以问题 ID 作为消息 key。
func (p *Producer) PublishQuestion(ctx context.Context, task tasks.QuestionIndexTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(task.QuestionID), 10)),
		Value: taskBytes,
	})
}

// Close 关闭底层 writer。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer 消费问题索引任务。失败次数记录在 Redis 中，达到上限后提交 offset 放弃该任务。
type Consumer struct {
	reader    *kafka.Reader
	processor TaskProcessor
	rdb       *redis.Client
	backoff   time.Duration
}

// NewConsumer 创建一个消费者。Brokers 为空时返回 nil。
func NewConsumer(cfg config.KafkaConfig, processor TaskProcessor, rdb *redis.Client) *Consumer {
	brokers := splitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MinBytes: 1,
			MaxBytes: 10e6, // 10MB
		}),
		processor: processor,
		rdb:       rdb,
		backoff:   defaultRetryBackoff,
	}
}

// Run 循环拉取消息直到 ctx 结束。
func (c *Consumer) Run(ctx context.Context) {
	rc := c.reader.Config()
	logger := log.With("topic", rc.Topic, "group", rc.GroupID)
	logger.Info("Kafka 消费者已启动")
	defer func() {
		if err := c.reader.Close(); err != nil {
			logger.Errorw("关闭 Kafka 消费者失败", "error", err)
		}
	}()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Kafka 消费者已停止")
				return
			}
			logger.Errorw("从 Kafka 读取消息失败", "error", err)
			return
		}

		// 未提交的消息不会被 reader 重新投递，所以重试在这里完成
		if !c.processWithRetry(ctx, m.Value) {
			logger.Info("Kafka 消费者已停止")
			return
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			logger.Errorw("提交 Kafka 消息 offset 失败", "partition", m.Partition, "offset", m.Offset, "error", err)
		}
	}
}

// processWithRetry 在本进程内重试一条消息，直到成功或达到 maxAttempts。
// 返回 false 只表示 ctx 已结束，此时不提交 offset，重启后会从这条消息继续。
func (c *Consumer) processWithRetry(ctx context.Context, value []byte) bool {
	for attempt := 1; ; attempt++ {
		if c.handle(ctx, value) {
			return true
		}
		if attempt >= maxAttempts {
			log.Errorf("索引任务在本进程内重试 %d 次仍失败，放弃该消息", attempt)
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
}

// handle 处理一条消息并返回是否应该提交 offset。
func (c *Consumer) handle(ctx context.Context, value []byte) bool {
	var task tasks.QuestionIndexTask
	if err := json.Unmarshal(value, &task); err != nil {
		// 消息格式错误，直接提交，避免阻塞队列
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(value))
		return true
	}

	attemptsKey := fmt.Sprintf("kafka:attempts:question:%d", task.QuestionID)
	if err := c.processor.Process(ctx, task); err != nil {
		log.Errorf("处理索引任务失败: QuestionID=%d, Error: %v", task.QuestionID, err)
		attempts, incErr := c.rdb.Incr(ctx, attemptsKey).Result()
		if incErr != nil {
			// Redis 异常时保守处理：不提交 offset，让 Kafka 重试
			return false
		}
		_ = c.rdb.Expire(ctx, attemptsKey, 24*time.Hour).Err()
		if attempts >= maxAttempts {
			log.Errorf("索引任务多次失败(>=%d)，提交 offset 终止重试: QuestionID=%d", maxAttempts, task.QuestionID)
			return true
		}
		return false
	}

	log.Infof("索引任务处理成功: QuestionID=%d", task.QuestionID)
	_ = c.rdb.Del(ctx, attemptsKey).Err()
	return true
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
