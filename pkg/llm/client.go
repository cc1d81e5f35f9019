// Package llm provides clients for interacting with Large Language Models.
package llm

import (
	"context"
	"errors"
	"fmt"
	"qa-board-go/internal/config"
	"strings"

	"github.com/gorilla/websocket"
)

// ErrEmptyResponse 表示模型返回了空内容。
var ErrEmptyResponse = errors.New("llm returned an empty response")

// MessageWriter defines an interface for writing streamed chunks.
// This allows both a standard websocket.Conn and an in-memory collector to be used.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// Client defines the interface for an LLM client.
type Client interface {
	// Generate 同步调用模型并返回完整文本。
	Generate(ctx context.Context, messages []Message, gen *GenerationParams) (string, error)
	// StreamChatMessages 以 role-based 消息调用模型，并将流式分块写入 writer。
	StreamChatMessages(ctx context.Context, messages []Message, gen *GenerationParams, writer MessageWriter) error
}

// Message 表示一条角色消息，Role 取值 system / user / assistant。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams 控制生成行为
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// NewClient creates a new LLM client based on the provider in the config.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "openai", "deepseek", "":
		return newOpenAIClient(cfg), nil
	case "gemini":
		return newGeminiClient(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}
}

// GenerationFromConfig 把配置中的非零生成参数转换为 GenerationParams，全部为零时返回 nil。
func GenerationFromConfig(cfg config.LLMGenerationConfig) *GenerationParams {
	var gp GenerationParams
	if cfg.Temperature != 0 {
		t := cfg.Temperature
		gp.Temperature = &t
	}
	if cfg.TopP != 0 {
		p := cfg.TopP
		gp.TopP = &p
	}
	if cfg.MaxTokens != 0 {
		m := cfg.MaxTokens
		gp.MaxTokens = &m
	}
	if gp.Temperature == nil && gp.TopP == nil && gp.MaxTokens == nil {
		return nil
	}
	return &gp
}

// collectWriter 把流式分块拼接成完整文本。
type collectWriter struct {
	builder strings.Builder
}

func (w *collectWriter) WriteMessage(_ int, data []byte) error {
	w.builder.Write(data)
	return nil
}

// generateByStream 基于流式接口实现同步调用。
func generateByStream(ctx context.Context, c Client, messages []Message, gen *GenerationParams) (string, error) {
	w := &collectWriter{}
	if err := c.StreamChatMessages(ctx, messages, gen, w); err != nil {
		return "", err
	}
	text := strings.TrimSpace(w.builder.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// textMessage 是写入 MessageWriter 时使用的消息类型。
const textMessage = websocket.TextMessage
