package service

import (
	"context"
	"errors"
	"fmt"
	"qa-board-go/internal/config"
	"qa-board-go/internal/model"
	"qa-board-go/pkg/llm"
	"qa-board-go/pkg/log"
	"qa-board-go/pkg/metrics"
	"strings"
	"time"
)

// CommentaryService 负责按分类人设调用 LLM 生成 AI 回答。
type CommentaryService interface {
	// HasPersona 判断分类是否启用了 AI 自动回答。
	HasPersona(category string) bool
	// CommentOnQuestion 针对一个新问题生成回答。
	CommentOnQuestion(ctx context.Context, category, question string) (string, error)
	// CommentOnAnswer 结合已有回答（倒序）和新回答生成点评。
	CommentOnAnswer(ctx context.Context, category, question string, history []model.Answer, sentinelID uint, newAnswer string) (string, error)
	// Preview 生成不落库的预览，没有专属人设时使用默认人设。
	Preview(ctx context.Context, category, question string) (string, error)
	// StreamPreview 与 Preview 相同，但把分块写入 writer。
	StreamPreview(ctx context.Context, category, question string, writer llm.MessageWriter) error
}

type commentaryService struct {
	llmClient      llm.Client
	personas       map[string]string
	defaultPersona string
	timeout        time.Duration
	gen            *llm.GenerationParams
}

// NewCommentaryService 创建一个新的 CommentaryService。
func NewCommentaryService(llmClient llm.Client, cfg config.LLMConfig) CommentaryService {
	personas := make(map[string]string, len(cfg.Personas))
	for _, p := range cfg.Personas {
		if p.Category != "" && p.Template != "" {
			personas[p.Category] = p.Template
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &commentaryService{
		llmClient:      llmClient,
		personas:       personas,
		defaultPersona: cfg.DefaultPersona,
		timeout:        timeout,
		gen:            llm.GenerationFromConfig(cfg.Generation),
	}
}

func (s *commentaryService) HasPersona(category string) bool {
	_, ok := s.personas[category]
	return ok
}

func (s *commentaryService) CommentOnQuestion(ctx context.Context, category, question string) (string, error) {
	persona, ok := s.personas[category]
	if !ok {
		return "", fmt.Errorf("%w: no persona for category %q", ErrGeneration, category)
	}
	return s.generate(ctx, composeQuestionMessages(persona, category, question))
}

func (s *commentaryService) CommentOnAnswer(ctx context.Context, category, question string, history []model.Answer, sentinelID uint, newAnswer string) (string, error) {
	persona, ok := s.personas[category]
	if !ok {
		return "", fmt.Errorf("%w: no persona for category %q", ErrGeneration, category)
	}
	msgs := composeQuestionMessages(persona, category, question)
	// history 为倒序，按时间正序放入上下文
	for i := len(history) - 1; i >= 0; i-- {
		a := history[i]
		if sentinelID != 0 && a.UserID == sentinelID {
			msgs = append(msgs, llm.Message{Role: "assistant", Content: a.Content})
			continue
		}
		msgs = append(msgs, llm.Message{Role: "user", Content: fmt.Sprintf("回答（%s）: %s", a.StudentNumber, a.Content)})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: "新しい回答: " + newAnswer})
	return s.generate(ctx, msgs)
}

func (s *commentaryService) Preview(ctx context.Context, category, question string) (string, error) {
	msgs, err := s.previewMessages(category, question)
	if err != nil {
		return "", err
	}
	return s.generate(ctx, msgs)
}

func (s *commentaryService) StreamPreview(ctx context.Context, category, question string, writer llm.MessageWriter) error {
	msgs, err := s.previewMessages(category, question)
	if err != nil {
		return err
	}
	if s.llmClient == nil {
		return fmt.Errorf("%w: llm client is not configured", ErrGeneration)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.llmClient.StreamChatMessages(ctx, msgs, s.gen, writer); err != nil {
		return fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return nil
}

func (s *commentaryService) previewMessages(category, question string) ([]llm.Message, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrValidation)
	}
	persona, ok := s.personas[category]
	if !ok {
		persona = s.defaultPersona
	}
	if persona == "" {
		return nil, fmt.Errorf("%w: no persona for category %q", ErrValidation, category)
	}
	return composeQuestionMessages(persona, category, question), nil
}

// generate 在限定时间内调用 LLM，所有失败都包装为 ErrGeneration。
func (s *commentaryService) generate(ctx context.Context, msgs []llm.Message) (string, error) {
	if s.llmClient == nil {
		return "", fmt.Errorf("%w: llm client is not configured", ErrGeneration)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.llmClient.Generate(ctx, msgs, s.gen)
	metrics.RecordGeneration(err, time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warnf("[CommentaryService] LLM 调用超时, timeout: %s", s.timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	log.Infow("[CommentaryService] LLM 调用完成", "latency", time.Since(start).String(), "length", len(text))
	return text, nil
}

// composeQuestionMessages 构建 system 人设 + 问题 的消息序列。
func composeQuestionMessages(persona, category, question string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: persona},
		{Role: "user", Content: fmt.Sprintf("カテゴリー: %s\n質問: %s", category, question)},
	}
}
