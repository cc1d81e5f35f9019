// Package pipeline 定义了问题索引的处理流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"qa-board-go/internal/model"
	"qa-board-go/internal/repository"
	"qa-board-go/pkg/es"
	"qa-board-go/pkg/log"
	"qa-board-go/pkg/tasks"

	"github.com/elastic/go-elasticsearch/v8"
	"gorm.io/gorm"
)

// Processor 把 Kafka 中的问题索引任务写入 Elasticsearch。
type Processor struct {
	esClient     *elasticsearch.Client
	indexName    string
	questionRepo repository.QuestionRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(esClient *elasticsearch.Client, indexName string, questionRepo repository.QuestionRepository) *Processor {
	return &Processor{
		esClient:     esClient,
		indexName:    indexName,
		questionRepo: questionRepo,
	}
}

// Process 以数据库中的问题为准写入索引，问题已不存在时跳过。
func (p *Processor) Process(ctx context.Context, task tasks.QuestionIndexTask) error {
	log.Infof("[Processor] 开始索引问题, QuestionID: %d", task.QuestionID)

	question, err := p.questionRepo.FindByID(task.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Processor] 问题 %d 不存在, 跳过索引", task.QuestionID)
			return nil
		}
		return fmt.Errorf("读取问题失败: %w", err)
	}

	doc := model.QuestionDocument{
		QuestionID:    question.ID,
		UserID:        question.UserID,
		StudentNumber: question.StudentNumber,
		Category:      question.Category,
		Content:       question.Content,
		CreatedAt:     question.CreatedAt.UTC(),
	}
	if err := es.IndexQuestion(ctx, p.esClient, p.indexName, doc); err != nil {
		return fmt.Errorf("索引问题 %d 到 Elasticsearch 失败: %w", question.ID, err)
	}

	log.Infof("[Processor] 问题索引成功, QuestionID: %d", question.ID)
	return nil
}

// PublishQuestion 在未启用 Kafka 时让 Processor 直接充当 IndexPublisher，同步写入索引。
func (p *Processor) PublishQuestion(ctx context.Context, task tasks.QuestionIndexTask) error {
	return p.Process(ctx, task)
}
