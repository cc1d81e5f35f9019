package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"qa-board-go/internal/config"
	"strings"
)

// openAIClient 调用 DeepSeek 等 OpenAI 兼容的 /chat/completions 接口。
type openAIClient struct {
	cfg    config.LLMConfig
	client *http.Client
}

func newOpenAIClient(cfg config.LLMConfig) *openAIClient {
	return &openAIClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Generate 通过流式接口收集完整回答。
func (c *openAIClient) Generate(ctx context.Context, messages []Message, gen *GenerationParams) (string, error) {
	return generateByStream(ctx, c, messages, gen)
}

// StreamChatMessages 调用 chat completions 接口并把 SSE 分块写入 writer。
func (c *openAIClient) StreamChatMessages(ctx context.Context, messages []Message, gen *GenerationParams, writer MessageWriter) error {
	reqBody := chatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Stream:   true,
	}
	if gen == nil {
		gen = GenerationFromConfig(c.cfg.Generation)
	}
	if gen != nil {
		reqBody.Temperature = gen.Temperature
		reqBody.TopP = gen.TopP
		reqBody.MaxTokens = gen.MaxTokens
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call chat api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chat api returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read from stream: %w", err)
		}

		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			if data == "[DONE]" {
				return nil
			}

			var chunk chatResponse
			if jsonErr := json.Unmarshal([]byte(data), &chunk); jsonErr == nil && len(chunk.Choices) > 0 {
				content := chunk.Choices[0].Delta.Content
				if content != "" {
					if wErr := writer.WriteMessage(textMessage, []byte(content)); wErr != nil {
						return fmt.Errorf("failed to write chunk: %w", wErr)
					}
				}
			}
		}

		if err == io.EOF {
			return nil
		}
	}
}
