package llm

import (
	"context"
	"fmt"
	"qa-board-go/internal/config"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiClient 通过 Google GenAI SDK 调用 Gemini。
type geminiClient struct {
	client *genai.Client
	model  string
	gen    config.LLMGenerationConfig
}

func newGeminiClient(ctx context.Context, cfg config.LLMConfig) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiClient{client: client, model: model, gen: cfg.Generation}, nil
}

// Generate 同步调用 GenerateContent。
func (c *geminiClient) Generate(ctx context.Context, messages []Message, gen *GenerationParams) (string, error) {
	contents, genCfg := c.buildRequest(messages, gen)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// StreamChatMessages 调用 GenerateContentStream 并逐块写入 writer。
func (c *geminiClient) StreamChatMessages(ctx context.Context, messages []Message, gen *GenerationParams, writer MessageWriter) error {
	contents, genCfg := c.buildRequest(messages, gen)
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, genCfg) {
		if err != nil {
			return fmt.Errorf("gemini stream failed: %w", err)
		}
		if chunk := resp.Text(); chunk != "" {
			if wErr := writer.WriteMessage(textMessage, []byte(chunk)); wErr != nil {
				return fmt.Errorf("failed to write chunk: %w", wErr)
			}
		}
	}
	return nil
}

func (c *geminiClient) buildRequest(messages []Message, gen *GenerationParams) ([]*genai.Content, *genai.GenerateContentConfig) {
	if gen == nil {
		gen = GenerationFromConfig(c.gen)
	}
	system, contents := toGeminiContents(messages)

	genCfg := &genai.GenerateContentConfig{}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if gen != nil {
		if gen.Temperature != nil {
			t := float32(*gen.Temperature)
			genCfg.Temperature = &t
		}
		if gen.TopP != nil {
			p := float32(*gen.TopP)
			genCfg.TopP = &p
		}
		if gen.MaxTokens != nil {
			genCfg.MaxOutputTokens = int32(*gen.MaxTokens)
		}
	}
	return contents, genCfg
}

// toGeminiContents 把 system 消息合并为系统指令，assistant 映射为 model 角色。
func toGeminiContents(messages []Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}
